package notify

import (
	"strconv"
	"strings"
)

// Severity is the cosmetic classification of a grade
type Severity int

const (
	Favorable Severity = iota
	Borderline
	Unfavorable
)

// Embed colors per severity
const (
	ColorFavorable   = 3066993
	ColorBorderline  = 15105570
	ColorUnfavorable = 15158332
)

func (s Severity) String() string {
	switch s {
	case Borderline:
		return "borderline"
	case Unfavorable:
		return "unfavorable"
	default:
		return "favorable"
	}
}

// Color returns the embed color for the severity
func (s Severity) Color() int {
	switch s {
	case Borderline:
		return ColorBorderline
	case Unfavorable:
		return ColorUnfavorable
	default:
		return ColorFavorable
	}
}

// ScoreOn20 converts a displayed grade to a 20-point score. Both comma
// and dot decimal separators are accepted and "x/y" is rescaled.
func ScoreOn20(grade string) (float64, bool) {
	normalized := strings.ReplaceAll(strings.TrimSpace(grade), ",", ".")
	if normalized == "" {
		return 0, false
	}

	if num, den, found := strings.Cut(normalized, "/"); found {
		numerator, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, false
		}
		denominator, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || denominator == 0 {
			return 0, false
		}
		return numerator / denominator * 20, true
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ClassifyGrade maps a displayed grade to a severity. Unparseable grades
// are favorable so a formatting surprise never colors a message red.
func ClassifyGrade(grade string) Severity {
	score, ok := ScoreOn20(grade)
	switch {
	case !ok:
		return Favorable
	case score >= 10:
		return Favorable
	case score >= 8:
		return Borderline
	default:
		return Unfavorable
	}
}

// GradeColor returns the embed color for a displayed grade
func GradeColor(grade string) int {
	return ClassifyGrade(grade).Color()
}
