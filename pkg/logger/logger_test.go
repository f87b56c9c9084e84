package logger

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gradewatch/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level with timezone", &config.LoggingConfig{Level: "debug", Timezone: "Europe/Paris"}, false},
		{"invalid level", &config.LoggingConfig{Level: "invalid"}, true},
		{"invalid timezone", &config.LoggingConfig{Level: "info", Timezone: "Atlantis/Capital"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "bot.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &zerologLogger{logger: &zlog, fields: make(map[string]interface{})}
}

func TestFieldsAreCarried(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf)

	child := base.WithField("cycle_id", "abc").WithFields(map[string]interface{}{
		"records": 3,
		"ok":      true,
	})
	child.InfoWithFields("Cycle completed", map[string]interface{}{"elapsed": 2 * time.Second})

	out := buf.String()
	assert.Contains(t, out, `"message":"Cycle completed"`)
	assert.Contains(t, out, `"cycle_id":"abc"`)
	assert.Contains(t, out, `"records":3`)
	assert.Contains(t, out, `"ok":true`)

	// The parent logger is not modified by its children
	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "cycle_id")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf)

	assert.Same(t, base, base.WithError(nil))

	base.WithError(errors.New("portal unreachable")).Error("Cycle failed")
	assert.Contains(t, buf.String(), "portal unreachable")
}

func TestTimestampUsesConfiguredZone(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "info", Timezone: "Asia/Tokyo"})
	require.NoError(t, err)
	defer func() { zerolog.TimestampFunc = time.Now }()

	assert.Equal(t, "Asia/Tokyo", zerolog.TimestampFunc().Location().String())
}

func TestConsoleWriterFormatsLevels(t *testing.T) {
	var buf bytes.Buffer
	writer := newConsoleWriter(&buf, time.UTC)
	zlog := zerolog.New(writer).Level(zerolog.DebugLevel)

	zlog.Warn().Str("subject", "Physique").Msg("slow page")

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "| slow page")
	assert.True(t, strings.Contains(out, "subject"))
}

func TestLogWebhook(t *testing.T) {
	l := NewTestLogger()

	LogWebhook(l, "grade", 204, 10*time.Millisecond, nil)
	LogWebhook(l, "grade", 429, 10*time.Millisecond, nil)
	LogWebhook(l, "error", 0, 0, errors.New("dial tcp: refused"))

	assert.Len(t, l.GetMessagesByLevel("DEBUG"), 1)
	warnings := l.GetMessagesByLevel("WARN")
	require.Len(t, warnings, 2)
	assert.Equal(t, 429, warnings[0].Fields["status_code"])
	assert.EqualError(t, warnings[1].Error, "dial tcp: refused")
}

func TestTestLoggerSharesSink(t *testing.T) {
	l := NewTestLogger()
	child := ForCycle(l, "cycle-1").WithError(errors.New("boom"))
	child.WarnWithFields("degraded", map[string]interface{}{"period": 2})

	msgs := l.GetMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "cycle-1", msgs[0].Fields["cycle_id"])
	assert.Equal(t, 2, msgs[0].Fields["period"])
	assert.True(t, l.HasMessage("degraded"))
	assert.True(t, l.HasMessageContaining("degr"))

	l.Clear()
	assert.Empty(t, l.GetMessages())
}

func TestNewWithWriterEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&config.LoggingConfig{Level: "info"}, &buf)
	require.NoError(t, err)

	log.WithField("cycle_id", "abc").Info("Starting run cycle")

	out := buf.String()
	assert.Contains(t, out, `"message":"Starting run cycle"`)
	assert.Contains(t, out, `"cycle_id":"abc"`)
	assert.Contains(t, out, `"level":"info"`)
}
