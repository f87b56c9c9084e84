package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"gradewatch/pkg/models"
)

var (
	recA = models.GradeRecord{Subject: "Mathématiques", Date: "12/03", Grade: "15/20", ClassAverage: "11"}
	recB = models.GradeRecord{Subject: "Physique", Date: "13/03", Grade: "8,5/10", ClassAverage: models.NoClassAverage}
	recC = models.GradeRecord{Subject: "Anglais", Date: "14/03", Grade: "9"}
)

func TestNotificationOrderIsReverseOfDiscovery(t *testing.T) {
	got := NotificationOrder([]models.GradeRecord{recA, recB, recC})
	if diff := cmp.Diff([]models.GradeRecord{recC, recB, recA}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, NotificationOrder(nil))
}

func TestReconcileAllNew(t *testing.T) {
	result := Reconcile([]models.GradeRecord{recA, recB, recC}, []models.GradeRecord{})

	if diff := cmp.Diff([]models.GradeRecord{recC, recB, recA}, result.New); diff != "" {
		t.Errorf("new records mismatch (-want +got):\n%s", diff)
	}
	assert.ElementsMatch(t, []models.GradeRecord{recA, recB, recC}, result.History)
	assert.True(t, result.Changed())
}

func TestReconcileSomeKnown(t *testing.T) {
	history := []models.GradeRecord{recB}
	result := Reconcile([]models.GradeRecord{recA, recB, recC}, history)

	if diff := cmp.Diff([]models.GradeRecord{recC, recA}, result.New); diff != "" {
		t.Errorf("new records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]models.GradeRecord{recB, recC, recA}, result.History); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, history, 1, "input history must not be modified")
}

func TestReconcileIgnoresClassAverage(t *testing.T) {
	history := []models.GradeRecord{recA}
	variant := recA
	variant.ClassAverage = "12,4"
	variant.Subject = "  " + recA.Subject + " "

	result := Reconcile([]models.GradeRecord{variant}, history)
	assert.Empty(t, result.New)
	assert.False(t, result.Changed())
	assert.Equal(t, history, result.History)
}

func TestReconcileIsIdempotent(t *testing.T) {
	fresh := []models.GradeRecord{recA, recB, recC}

	first := Reconcile(fresh, nil)
	assert.Len(t, first.New, 3)

	second := Reconcile(fresh, first.History)
	assert.Empty(t, second.New)
	assert.Equal(t, first.History, second.History)
}

func TestReconcileDeduplicatesWithinScan(t *testing.T) {
	dup := recA
	dup.ClassAverage = "other"
	result := Reconcile([]models.GradeRecord{recA, recB, dup}, nil)

	// dup is processed first (reverse order) and recA is then seen as known
	if diff := cmp.Diff([]models.GradeRecord{dup, recB}, result.New); diff != "" {
		t.Errorf("new records mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, result.History, 2)
}

func TestReconcileEmptyScan(t *testing.T) {
	result := Reconcile(nil, []models.GradeRecord{recA})
	assert.Empty(t, result.New)
	assert.False(t, result.Changed())
	assert.Equal(t, []models.GradeRecord{recA}, result.History)
}
