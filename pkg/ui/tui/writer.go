package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// LogWriter turns zerolog JSON lines into log panel entries
type LogWriter struct {
	send func(level, message string)
}

// LogWriter returns an io.Writer for the logger's console output
func (t *TUI) LogWriter() *LogWriter {
	return &LogWriter{send: func(level, message string) {
		t.Send(LogMsg{Level: level, Message: message})
	}}
}

// Write implements io.Writer. Lines that are not JSON objects are shown
// verbatim at INFO level.
func (w *LogWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimSpace(string(p)), "\n") {
		if line == "" {
			continue
		}
		w.send(formatLine(line))
	}
	return len(p), nil
}

var hiddenFields = map[string]bool{"level": true, "message": true, "time": true, "app": true}

func formatLine(line string) (string, string) {
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return "INFO", line
	}

	level, _ := entry["level"].(string)
	msg, _ := entry["message"].(string)

	keys := make([]string, 0, len(entry))
	for k := range entry {
		if !hiddenFields[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry[k])
	}
	if level == "" {
		level = "info"
	}
	return strings.ToUpper(level), b.String()
}
