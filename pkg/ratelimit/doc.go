// Package ratelimit paces outbound webhook posts.
//
// Chat webhooks reject bursts (typically 30 messages per minute per hook),
// and a first run against a fresh history can produce dozens of new grades
// at once. The SlidingWindow limiter delays posts so they stay under the
// sink's limit; it never drops them.
//
// Usage:
//
//	limiter := ratelimit.PerMinute(30)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
