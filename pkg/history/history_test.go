package history

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gradewatch/pkg/logger"
	"gradewatch/pkg/models"
	"gradewatch/pkg/storage"
)

func newTestStore(t *testing.T) (*Store, *logger.TestLogger) {
	t.Helper()
	files, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)
	log := logger.NewTestLogger()
	return NewStore(files, "grades_history.json", log), log
}

func TestLoadMissingFile(t *testing.T) {
	store, log := newTestStore(t)

	records := store.Load()
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Empty(t, log.GetMessagesByLevel("WARN"))
}

func TestLoadCorruptFile(t *testing.T) {
	store, log := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte(`[{"subject": "Maths",`), 0644))

	records := store.Load()
	assert.Empty(t, records)
	assert.True(t, log.HasMessageContaining("corrupt"))
}

func TestLoadWrongShape(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"subject": "Maths"}`), 0644))

	assert.Empty(t, store.Load())
}

func TestLoadEmptyAndNull(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, os.WriteFile(store.Path(), []byte("  \n"), 0644))
	assert.Empty(t, store.Load())

	require.NoError(t, os.WriteFile(store.Path(), []byte("null"), 0644))
	assert.NotNil(t, store.Load())
}

func TestSaveAndReload(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("[]"), 0644))

	records := []models.GradeRecord{
		{Subject: "Électronique", Date: "le 12 mars", Grade: "15/20", ClassAverage: "11,5"},
		{Subject: "Mécanique <TP>", Date: "le 14 mars", Grade: "8,5", ClassAverage: models.NoClassAverage},
	}
	require.NoError(t, store.Save(records))

	if diff := cmp.Diff(records, store.Load()); diff != "" {
		t.Errorf("reloaded history mismatch (-want +got):\n%s", diff)
	}

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	text := string(raw)
	assert.True(t, strings.HasPrefix(text, "[\n    {\n        \"subject\""), "expected 4-space pretty print, got %q", text)
	assert.Contains(t, text, "Électronique", "non-ASCII must be written as UTF-8")
	assert.Contains(t, text, "<TP>", "HTML characters must not be escaped")
}

func TestSaveOmitsEmptyClassAverage(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Save([]models.GradeRecord{{Subject: "A", Date: "d", Grade: "10"}}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "class_average")
}

func TestSaveNil(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Save(nil))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}
