package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"gradewatch/pkg/models"
)

func TestRenderHistory(t *testing.T) {
	SetColor(false)
	defer SetColor(true)

	var buf bytes.Buffer
	RenderHistory(&buf, []models.GradeRecord{
		{Subject: "Mathématiques", Date: "le 12/03", Grade: "15,00", ClassAverage: "12,40"},
		{Subject: "Physique", Date: "le 20/03", Grade: "7"},
	})

	out := buf.String()
	assert.Contains(t, out, "Mathématiques")
	assert.Contains(t, out, "12,40")
	assert.Contains(t, out, "Physique")
	assert.Contains(t, out, models.NoClassAverage)
	assert.Contains(t, out, "TOTAL")
}

func TestColorizeDisabled(t *testing.T) {
	SetColor(false)
	defer SetColor(true)
	assert.Equal(t, "plain", Red("plain"))
}
