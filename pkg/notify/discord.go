package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"gradewatch/pkg/config"
	gwerrors "gradewatch/pkg/errors"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/models"
	"gradewatch/pkg/ratelimit"
)

// Notifier reports new grades and cycle failures. Delivery is best
// effort: implementations log failures and never return them.
type Notifier interface {
	NotifyGrade(ctx context.Context, rec models.GradeRecord)
	NotifyError(ctx context.Context, message string)
}

// Discord posts embeds to a Discord-compatible webhook
type Discord struct {
	client   *resty.Client
	url      string
	branding Branding
	limiter  ratelimit.Limiter
	logger   logger.Logger
}

// NewDiscord creates a webhook notifier from configuration
func NewDiscord(cfg *config.WebhookConfig, log logger.Logger) *Discord {
	if log == nil {
		log = logger.NewNopLogger()
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("User-Agent", "gradewatch")

	return &Discord{
		client: client,
		url:    cfg.URL,
		branding: Branding{
			Username:      cfg.Username,
			ErrorUsername: cfg.ErrorUsername,
			Footer:        cfg.Footer,
			ErrorFooter:   cfg.ErrorFooter,
		},
		limiter: ratelimit.PerMinute(cfg.MaxPerMinute),
		logger:  log.WithField("component", "notify"),
	}
}

// NotifyGrade posts the new-grade message for rec
func (d *Discord) NotifyGrade(ctx context.Context, rec models.GradeRecord) {
	payload := GradePayload(rec, d.branding)
	if _, err := d.Send(ctx, "grade", payload); err != nil {
		return
	}
	d.logger.InfoWithFields("Notification sent", map[string]interface{}{
		"subject":  rec.Subject,
		"grade":    rec.Grade,
		"severity": ClassifyGrade(rec.Grade).String(),
	})
}

// NotifyError posts the critical-error message
func (d *Discord) NotifyError(ctx context.Context, message string) {
	_, _ = d.Send(ctx, "error", ErrorPayload(message, d.branding))
}

// Send posts one payload and returns the HTTP status. Failures are logged
// and also returned for callers that want to report them, such as the
// test command.
func (d *Discord) Send(ctx context.Context, kind string, payload Payload) (int, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		err = gwerrors.Wrap(gwerrors.ErrorTypeDelivery, "webhook pacing interrupted", err)
		logger.LogWebhook(d.logger, kind, 0, 0, err)
		return 0, err
	}

	start := time.Now()
	res, err := d.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(d.url)
	elapsed := time.Since(start)

	if err != nil {
		err = gwerrors.Wrap(gwerrors.ErrorTypeDelivery, "webhook request failed", err)
		logger.LogWebhook(d.logger, kind, 0, elapsed, err)
		return 0, err
	}

	logger.LogWebhook(d.logger, kind, res.StatusCode(), elapsed, nil)
	if !res.IsSuccess() {
		return res.StatusCode(), &gwerrors.Error{
			Type:    gwerrors.ErrorTypeDelivery,
			Message: fmt.Sprintf("webhook returned %s", res.Status()),
			Code:    res.StatusCode(),
		}
	}
	return res.StatusCode(), nil
}
