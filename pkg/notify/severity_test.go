package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyGrade(t *testing.T) {
	tests := []struct {
		grade string
		want  Severity
	}{
		{"15/20", Favorable},
		{"8,5/10", Favorable},
		{"7", Unfavorable},
		{"9", Borderline},
		{"abc", Favorable},
		{"10", Favorable},
		{"8", Borderline},
		{"7,99", Unfavorable},
		{" 12.5 ", Favorable},
		{"4/10", Borderline},
		{"3/10", Unfavorable},
		{"5/0", Favorable},
		{"1/2/3", Favorable},
		{"", Favorable},
		{"Abs", Favorable},
	}

	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyGrade(tt.grade))
		})
	}
}

func TestScoreOn20(t *testing.T) {
	score, ok := ScoreOn20("8,5/10")
	assert.True(t, ok)
	assert.InDelta(t, 17.0, score, 1e-9)

	score, ok = ScoreOn20("13,25")
	assert.True(t, ok)
	assert.InDelta(t, 13.25, score, 1e-9)

	_, ok = ScoreOn20("n/a")
	assert.False(t, ok)
}

func TestGradeColor(t *testing.T) {
	assert.Equal(t, 3066993, GradeColor("15/20"))
	assert.Equal(t, 15105570, GradeColor("9"))
	assert.Equal(t, 15158332, GradeColor("7"))
	assert.Equal(t, 3066993, GradeColor("abc"))
	assert.Equal(t, "borderline", Borderline.String())
}
