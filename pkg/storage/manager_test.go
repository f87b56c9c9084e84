package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	manager, err := NewManager(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, manager.DataDir())
}

func TestNewManagerRequiresDirectory(t *testing.T) {
	_, err := NewManager("")
	assert.Error(t, err)
}

func TestWriteAndReadFile(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	assert.False(t, manager.Exists("history.json"))

	require.NoError(t, manager.WriteFile("history.json", []byte("[]"), 0644))
	assert.True(t, manager.Exists("history.json"))

	data, err := manager.ReadFile("history.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	// Overwrite replaces the content entirely
	require.NoError(t, manager.WriteFile("history.json", []byte(`[{"subject":"x"}]`), 0644))
	data, err = manager.ReadFile("history.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"subject":"x"}]`, string(data))

	// No temporary files are left behind
	entries, err := os.ReadDir(manager.DataDir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFilePermissions(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.WriteFile("session.json", []byte("{}"), 0600))

	info, err := os.Stat(manager.Path("session.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestReadMissingFile(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = manager.ReadFile("missing.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRemove(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.WriteFile("a.json", []byte("{}"), 0644))
	require.NoError(t, manager.Remove("a.json"))
	assert.False(t, manager.Exists("a.json"))

	assert.NoError(t, manager.Remove("a.json"))
}

func TestPathKeepsAbsoluteNames(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	abs := filepath.Join(t.TempDir(), "elsewhere.json")
	assert.Equal(t, abs, manager.Path(abs))
	assert.Equal(t, filepath.Join(manager.DataDir(), "x.json"), manager.Path("x.json"))
}
