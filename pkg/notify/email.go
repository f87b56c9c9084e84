package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"gradewatch/pkg/config"
	gwerrors "gradewatch/pkg/errors"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/models"
)

// Email mirrors notifications to an SMTP mailbox. Delivery is best effort
// like the webhook.
type Email struct {
	cfg      config.EmailConfig
	branding Branding
	send     func(*email.Email) error
	logger   logger.Logger
}

var _ Notifier = (*Email)(nil)

// NewEmail returns nil when cfg is not enabled so the result can be passed
// straight to Multi.
func NewEmail(cfg *config.EmailConfig, webhook *config.WebhookConfig, log logger.Logger) Notifier {
	if cfg == nil || !cfg.Enabled() {
		return nil
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	e := &Email{
		cfg: *cfg,
		branding: Branding{
			Username:      webhook.Username,
			ErrorUsername: webhook.ErrorUsername,
			Footer:        webhook.Footer,
			ErrorFooter:   webhook.ErrorFooter,
		},
		logger: log.WithField("component", "email"),
	}
	e.send = e.smtpSend
	return e
}

func (e *Email) smtpSend(m *email.Email) error {
	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.SMTPServer)
	}
	err := m.Send(e.cfg.Addr(), auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = m.Send(e.cfg.Addr(), nil)
	}
	return err
}

// NotifyGrade mails the new-grade message for rec
func (e *Email) NotifyGrade(_ context.Context, rec models.GradeRecord) {
	e.deliver("grade", renderText(GradePayload(rec, e.branding)),
		fmt.Sprintf("%s : %s", rec.Subject, rec.Grade), e.branding.Username)
}

// NotifyError mails the critical-error message
func (e *Email) NotifyError(_ context.Context, message string) {
	e.deliver("error", renderText(ErrorPayload(message, e.branding)), errorTitle, e.branding.ErrorUsername)
}

func (e *Email) deliver(kind, body, subject, sender string) {
	m := email.NewEmail()
	m.From = e.cfg.From
	if sender != "" {
		m.From = fmt.Sprintf("%s <%s>", sender, e.cfg.From)
	}
	m.To = e.cfg.To
	m.Subject = subject
	m.Text = []byte(body)

	if err := e.send(m); err != nil {
		e.logger.WithError(gwerrors.Wrap(gwerrors.ErrorTypeDelivery, "e-mail delivery failed", err)).
			WarnWithFields("Notification not delivered", map[string]interface{}{"kind": kind})
		return
	}
	e.logger.DebugWithFields("E-mail sent", map[string]interface{}{"kind": kind, "recipients": len(m.To)})
}

// renderText flattens a webhook payload into a plain-text body
func renderText(p Payload) string {
	var b strings.Builder
	for _, embed := range p.Embeds {
		b.WriteString(embed.Title)
		b.WriteString("\n\n")
		if embed.Description != "" {
			b.WriteString(strings.ReplaceAll(embed.Description, "```", ""))
			b.WriteString("\n")
		}
		for _, f := range embed.Fields {
			fmt.Fprintf(&b, "%s : %s\n", f.Name, f.Value)
		}
		if embed.Footer != nil {
			b.WriteString("\n-- \n")
			b.WriteString(embed.Footer.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}
