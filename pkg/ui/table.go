package ui

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gradewatch/pkg/models"
	"gradewatch/pkg/notify"
)

// NewTable returns a rounded table writing to w
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// RenderHistory prints records in discovery order, coloring each grade
// by severity.
func RenderHistory(w io.Writer, records []models.GradeRecord) {
	t := NewTable(w)
	t.AppendHeader(table.Row{"#", "Matière", "Date", "Note", "Moyenne classe"})
	for i, rec := range records {
		avg := rec.ClassAverage
		if !rec.HasClassAverage() {
			avg = models.NoClassAverage
		}
		t.AppendRow(table.Row{i + 1, rec.Subject, rec.Date, severityColor(rec.Grade).Sprint(rec.Grade), avg})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", fmt.Sprintf("%d", len(records))})
	t.Render()
}

func severityColor(grade string) text.Colors {
	if !colorEnabled {
		return nil
	}
	switch notify.ClassifyGrade(grade) {
	case notify.Unfavorable:
		return text.Colors{text.FgRed}
	case notify.Borderline:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgGreen}
	}
}
