package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gradewatch/pkg/config"
	gwerrors "gradewatch/pkg/errors"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/models"
)

type webhookRecorder struct {
	mu       sync.Mutex
	payloads []Payload
	status   int
}

func (w *webhookRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var p Payload
		require.NoError(t, json.Unmarshal(body, &p))

		w.mu.Lock()
		w.payloads = append(w.payloads, p)
		status := w.status
		w.mu.Unlock()

		if status == 0 {
			status = http.StatusNoContent
		}
		rw.WriteHeader(status)
	}
}

func (w *webhookRecorder) received() []Payload {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Payload(nil), w.payloads...)
}

func newTestDiscord(t *testing.T, rec *webhookRecorder) (*Discord, *logger.TestLogger) {
	t.Helper()
	server := httptest.NewServer(rec.handler(t))
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig().Webhook
	cfg.URL = server.URL
	log := logger.NewTestLogger()
	return NewDiscord(&cfg, log), log
}

func TestNotifyGradePayload(t *testing.T) {
	rec := &webhookRecorder{}
	d, _ := newTestDiscord(t, rec)

	d.NotifyGrade(context.Background(), models.GradeRecord{
		Subject:      "Thermodynamique",
		Date:         "le 04/04",
		Grade:        "9",
		ClassAverage: "10,2",
	})

	payloads := rec.received()
	require.Len(t, payloads, 1)
	p := payloads[0]
	assert.Equal(t, "HyperPlanning Bot", p.Username)
	require.Len(t, p.Embeds, 1)

	embed := p.Embeds[0]
	assert.Equal(t, "Nouvelle Note Détectée ! 🎓", embed.Title)
	assert.Equal(t, ColorBorderline, embed.Color)
	assert.Equal(t, []Field{
		{Name: "Matière", Value: "Thermodynamique", Inline: true},
		{Name: "Note", Value: "9", Inline: true},
		{Name: "Moyenne classe", Value: "10,2", Inline: true},
		{Name: "Date", Value: "le 04/04", Inline: true},
	}, embed.Fields)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Hyperplanning Bot - INSA", embed.Footer.Text)
}

func TestGradePayloadOmitsMissingAverage(t *testing.T) {
	p := GradePayload(models.GradeRecord{Subject: "S", Date: "D", Grade: "12", ClassAverage: models.NoClassAverage}, Branding{})
	names := make([]string, 0, len(p.Embeds[0].Fields))
	for _, f := range p.Embeds[0].Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Matière", "Note", "Date"}, names)
	assert.Nil(t, p.Embeds[0].Footer)
}

func TestNotifyErrorPayload(t *testing.T) {
	rec := &webhookRecorder{}
	d, _ := newTestDiscord(t, rec)

	d.NotifyError(context.Background(), "navigation error: portal unreachable")

	payloads := rec.received()
	require.Len(t, payloads, 1)
	p := payloads[0]
	assert.Equal(t, "HyperPlanning Bot (Erreur)", p.Username)
	embed := p.Embeds[0]
	assert.Equal(t, "Erreur Critique - Bot Hyperplanning ⚠️", embed.Title)
	assert.Equal(t, ColorUnfavorable, embed.Color)
	assert.Equal(t, "Une erreur est survenue lors de l'exécution :\n```navigation error: portal unreachable```", embed.Description)
	assert.Empty(t, embed.Fields)
}

func TestErrorPayloadTruncatesLongMessages(t *testing.T) {
	p := ErrorPayload(strings.Repeat("é", 5000)+"```", Branding{})
	assert.LessOrEqual(t, len(p.Embeds[0].Description), maxDescription)
	assert.True(t, strings.HasSuffix(p.Embeds[0].Description, "...```"))
}

func TestNon2xxIsLoggedNotRaised(t *testing.T) {
	rec := &webhookRecorder{status: http.StatusTooManyRequests}
	d, log := newTestDiscord(t, rec)

	d.NotifyGrade(context.Background(), models.GradeRecord{Subject: "S", Date: "D", Grade: "12"})

	assert.Len(t, rec.received(), 1)
	assert.True(t, log.HasMessage("Webhook rejected the payload"))
	assert.False(t, log.HasMessage("Notification sent"))

	status, err := d.Send(context.Background(), "test", Payload{})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, gwerrors.ErrorTypeDelivery, gwerrors.TypeOf(err))
}

func TestNetworkFailureIsLoggedNotRaised(t *testing.T) {
	cfg := config.DefaultConfig().Webhook
	cfg.URL = "http://127.0.0.1:1/unreachable"
	cfg.Timeout = time.Second
	log := logger.NewTestLogger()
	d := NewDiscord(&cfg, log)

	d.NotifyError(context.Background(), "boom")
	assert.True(t, log.HasMessage("Webhook delivery failed"))
}

func TestSendPacesBursts(t *testing.T) {
	rec := &webhookRecorder{}
	d, _ := newTestDiscord(t, rec)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Fill the window, then the next post must wait past the deadline
	for i := 0; i < config.DefaultConfig().Webhook.MaxPerMinute; i++ {
		require.True(t, d.limiter.Allow())
	}
	_, err := d.Send(ctx, "grade", Payload{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, rec.received())
}
