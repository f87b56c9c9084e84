package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"gradewatch/pkg/models"
)

type countingNotifier struct {
	grades []string
	errors []string
}

func (c *countingNotifier) NotifyGrade(_ context.Context, rec models.GradeRecord) {
	c.grades = append(c.grades, rec.Subject)
}

func (c *countingNotifier) NotifyError(_ context.Context, message string) {
	c.errors = append(c.errors, message)
}

func TestMultiFansOut(t *testing.T) {
	a, b := &countingNotifier{}, &countingNotifier{}
	n := Multi(a, nil, b)

	n.NotifyGrade(context.Background(), models.GradeRecord{Subject: "Maths"})
	n.NotifyError(context.Background(), "boom")

	assert.Equal(t, []string{"Maths"}, a.grades)
	assert.Equal(t, []string{"Maths"}, b.grades)
	assert.Equal(t, []string{"boom"}, a.errors)
	assert.Equal(t, []string{"boom"}, b.errors)
}

func TestMultiSingleIsUnwrapped(t *testing.T) {
	a := &countingNotifier{}
	assert.Same(t, a, Multi(nil, a))
}
