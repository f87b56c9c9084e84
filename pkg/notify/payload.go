package notify

import (
	"fmt"
	"strings"

	"gradewatch/pkg/models"
)

const (
	gradeTitle       = "Nouvelle Note Détectée ! 🎓"
	errorTitle       = "Erreur Critique - Bot Hyperplanning ⚠️"
	errorDescription = "Une erreur est survenue lors de l'exécution :\n```%s```"

	// Discord rejects longer descriptions and field values
	maxDescription = 4000
	maxFieldValue  = 1024
)

// Payload is the JSON body accepted by the webhook
type Payload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []Embed `json:"embeds"`
}

// Embed is one rich message block
type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
}

// Field is one named value of an embed
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Footer is the small text under an embed
type Footer struct {
	Text string `json:"text"`
}

// Branding holds the display strings of the payloads
type Branding struct {
	Username      string
	ErrorUsername string
	Footer        string
	ErrorFooter   string
}

// GradePayload builds the new-grade message. The class average field is
// only present when the portal showed one.
func GradePayload(rec models.GradeRecord, b Branding) Payload {
	fields := []Field{
		{Name: "Matière", Value: fieldValue(rec.Subject), Inline: true},
		{Name: "Note", Value: fieldValue(rec.Grade), Inline: true},
	}
	if rec.HasClassAverage() {
		fields = append(fields, Field{Name: "Moyenne classe", Value: fieldValue(rec.ClassAverage), Inline: true})
	}
	fields = append(fields, Field{Name: "Date", Value: fieldValue(rec.Date), Inline: true})

	return Payload{
		Username: b.Username,
		Embeds: []Embed{{
			Title:  gradeTitle,
			Color:  GradeColor(rec.Grade),
			Fields: fields,
			Footer: footer(b.Footer),
		}},
	}
}

// ErrorPayload builds the critical-error message
func ErrorPayload(message string, b Branding) Payload {
	message = strings.ReplaceAll(message, "```", "'''")
	if len(message) > maxDescription-len(errorDescription) {
		message = truncate(message, maxDescription-len(errorDescription))
	}

	return Payload{
		Username: b.ErrorUsername,
		Embeds: []Embed{{
			Title:       errorTitle,
			Description: fmt.Sprintf(errorDescription, message),
			Color:       ColorUnfavorable,
			Footer:      footer(b.ErrorFooter),
		}},
	}
}

func footer(text string) *Footer {
	if text == "" {
		return nil
	}
	return &Footer{Text: text}
}

func fieldValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	return truncate(s, maxFieldValue)
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("...")
	for cut > 0 && !utf8RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
