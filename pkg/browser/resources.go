package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// applyResourceBlocking fails requests whose resource type is listed in
// types (Image, Font, Media, Stylesheet...) and lets the rest through.
func applyResourceBlocking(page *rod.Page, types []string) *rod.HijackRouter {
	blockSet := blockedTypes(types)

	router := page.HijackRequests()
	router.MustAdd("*", func(ctx *rod.Hijack) {
		if shouldBlock(blockSet, ctx.Request.Type()) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	go router.Run()
	return router
}

func blockedTypes(types []string) map[string]bool {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		t = strings.TrimSuffix(t, "s")
		if t != "" {
			set[t] = true
		}
	}
	return set
}

func shouldBlock(blockSet map[string]bool, resType proto.NetworkResourceType) bool {
	return blockSet[strings.TrimSuffix(strings.ToLower(string(resType)), "s")]
}
