package scratch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodelet/nodelet/pkg/types"
)

func TestNewManagerCreatesBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "a", "b", "scratch")
	_, err := NewManager(base)
	require.NoError(t, err)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateAndRemove(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	id := types.NewWorkerID()
	dir, err := m.Create(id)
	require.NoError(t, err)
	assert.Equal(t, m.Path(id), dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp.bin"), []byte("x"), 0644))

	require.NoError(t, m.Remove(id))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine.
	assert.NoError(t, m.Remove(id))
}

func TestSweep(t *testing.T) {
	base := t.TempDir()
	m, err := NewManager(base)
	require.NoError(t, err)

	keepID := types.NewWorkerID()
	_, err = m.Create(keepID)
	require.NoError(t, err)
	staleA, err := m.Create(types.NewWorkerID())
	require.NoError(t, err)
	staleB, err := m.Create(types.NewWorkerID())
	require.NoError(t, err)

	// Plain files under the base are not scratch directories.
	require.NoError(t, os.WriteFile(filepath.Join(base, "notes.txt"), []byte("x"), 0644))

	removed, err := m.Sweep(map[types.WorkerID]bool{keepID: true})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = os.Stat(m.Path(keepID))
	assert.NoError(t, err)
	_, err = os.Stat(staleA)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(staleB)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "notes.txt"))
	assert.NoError(t, err)
}

func TestSweepEmptyKeep(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = m.Create(types.NewWorkerID())
	require.NoError(t, err)

	removed, err := m.Sweep(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
