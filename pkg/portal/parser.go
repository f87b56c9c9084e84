package portal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gradewatch/pkg/config"
	"gradewatch/pkg/models"
)

// SubjectCursor holds the subject introduced by the last level-1 row.
// It lives for a whole scan and is only replaced by the next level-1 row,
// so it carries over from one period to the next.
type SubjectCursor struct {
	subject string
	set     bool
}

// Set makes subject the current context
func (c *SubjectCursor) Set(subject string) {
	c.subject, c.set = subject, true
}

// Current returns the current subject, if any
func (c *SubjectCursor) Current() (string, bool) {
	return c.subject, c.set
}

// RowOutcome is the result of parsing one grade row: either a record or
// the reason it was skipped.
type RowOutcome struct {
	Row    int
	Record *models.GradeRecord
	Skip   string
}

// Skipped reports whether the row produced no record
func (o RowOutcome) Skipped() bool {
	return o.Record == nil
}

// ParseResultsTree extracts grade rows from the markup of a results tree.
// Level-1 rows update cursor and yield no outcome; every other row yields
// one outcome in document order.
func ParseResultsTree(markup string, sel config.SelectorsConfig, cursor *SubjectCursor) ([]RowOutcome, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results tree: %w", err)
	}

	var outcomes []RowOutcome
	doc.Find(sel.TreeRow).Each(func(i int, row *goquery.Selection) {
		level, err := strconv.Atoi(strings.TrimSpace(row.AttrOr(sel.LevelAttribute, "")))
		if err != nil {
			outcomes = append(outcomes, RowOutcome{Row: i, Skip: "row has no readable level"})
			return
		}

		switch level {
		case 1:
			if subject := firstText(row); subject != "" {
				cursor.Set(subject)
			}
		case 2:
			outcomes = append(outcomes, parseGradeRow(i, row, sel, cursor))
		default:
			outcomes = append(outcomes, RowOutcome{Row: i, Skip: fmt.Sprintf("unexpected row level %d", level)})
		}
	})
	return outcomes, nil
}

func parseGradeRow(i int, row *goquery.Selection, sel config.SelectorsConfig, cursor *SubjectCursor) RowOutcome {
	dateCell := row.Find(sel.DateCell).First()
	gradeCell := row.Find(sel.GradeCell).First()
	if dateCell.Length() == 0 || gradeCell.Length() == 0 {
		return RowOutcome{Row: i, Skip: "missing date or grade cell"}
	}

	subject, ok := cursor.Current()
	if !ok {
		return RowOutcome{Row: i, Skip: "grade row before any subject row"}
	}

	grade := labelledValue(gradeCell, sel.GradeLabelMarker)
	if grade == "" {
		grade = gradeText(gradeCell)
	}
	if grade == "" {
		return RowOutcome{Row: i, Skip: "empty grade cell"}
	}

	record := &models.GradeRecord{
		Subject:      subject,
		Date:         cellText(dateCell),
		Grade:        grade,
		ClassAverage: classAverage(row, gradeCell, sel),
	}
	return RowOutcome{Row: i, Record: record}
}

// labelledValue looks for an aria-label containing marker on the cell or
// its descendants and returns what follows the marker.
func labelledValue(cell *goquery.Selection, marker string) string {
	if marker == "" {
		return ""
	}
	var value string
	cell.Find("[aria-label]").AddBack().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label, ok := s.Attr("aria-label")
		if !ok {
			return true
		}
		if v, found := afterMarker(label, marker); found && v != "" {
			value = v
			return false
		}
		return true
	})
	return value
}

// classAverage reads the class average from an info row of the grade row
func classAverage(row, gradeCell *goquery.Selection, sel config.SelectorsConfig) string {
	if sel.InfoRow == "" || sel.AverageLabelMarker == "" {
		return models.NoClassAverage
	}
	average := models.NoClassAverage
	row.Find(sel.InfoRow).NotSelection(gradeCell).EachWithBreak(func(_ int, info *goquery.Selection) bool {
		if v := labelledValue(info, sel.AverageLabelMarker); v != "" {
			average = v
			return false
		}
		if v, found := afterMarker(cellText(info), sel.AverageLabelMarker); found && v != "" {
			average = v
			return false
		}
		return true
	})
	return average
}

func afterMarker(text, marker string) (string, bool) {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return "", false
	}
	rest := text[idx+len(marker):]
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(rest), ":")), true
}

// cellText returns the text of a cell as a browser renders it, on one line
func cellText(s *goquery.Selection) string {
	return strings.Join(renderedLines(s), " ")
}

// gradeText returns the visible text of a grade cell with its line
// breaks removed, so "17<br>/20" reads "17/20".
func gradeText(s *goquery.Selection) string {
	return strings.Join(renderedLines(s), "")
}

var blockElements = map[string]bool{
	"div": true, "p": true, "li": true, "ul": true, "ol": true, "tr": true,
	"table": true, "section": true, "h1": true, "h2": true, "h3": true, "h4": true,
}

// renderedLines splits the text under s the way innerText does: source
// whitespace collapses to a single space and only br and block elements
// break lines. Blank lines are dropped.
func renderedLines(s *goquery.Selection) []string {
	var b strings.Builder
	writeRendered(s, &b)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = collapseSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func writeRendered(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch name := goquery.NodeName(c); {
		case name == "#text":
			b.WriteString(strings.ReplaceAll(c.Text(), "\n", " "))
		case name == "br":
			b.WriteString("\n")
		case blockElements[name]:
			b.WriteString("\n")
			writeRendered(c, b)
			b.WriteString("\n")
		default:
			writeRendered(c, b)
		}
	})
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstText returns the first non-blank text node under s
func firstText(s *goquery.Selection) string {
	var out string
	s.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if goquery.NodeName(c) == "#text" {
			out = collapseSpace(c.Text())
		} else {
			out = firstText(c)
		}
		return out == ""
	})
	return out
}
