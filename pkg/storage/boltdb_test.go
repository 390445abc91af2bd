package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodelet/nodelet/pkg/types"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSpawnRoundtrip(t *testing.T) {
	store := newTestStore(t)

	rec := &types.SpawnRecord{
		WorkerID:     types.NewWorkerID(),
		PID:          4312,
		StartupToken: types.StartupToken(9),
		Type:         types.WorkerTypeWorker,
		Language:     types.LanguagePython,
		StartedAt:    time.Now().Truncate(time.Millisecond),
	}
	require.NoError(t, store.PutSpawn(rec))

	got, err := store.GetSpawn(rec.WorkerID)
	require.NoError(t, err)
	assert.Equal(t, rec.WorkerID, got.WorkerID)
	assert.Equal(t, rec.PID, got.PID)
	assert.Equal(t, rec.StartupToken, got.StartupToken)
	assert.Equal(t, rec.Type, got.Type)
	assert.True(t, rec.StartedAt.Equal(got.StartedAt))
}

func TestGetSpawnNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSpawn(types.NewWorkerID())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListSpawns(t *testing.T) {
	store := newTestStore(t)

	recs, err := store.ListSpawns()
	require.NoError(t, err)
	assert.Empty(t, recs)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.PutSpawn(&types.SpawnRecord{
			WorkerID: types.NewWorkerID(),
			PID:      1000 + i,
		}))
	}

	recs, err = store.ListSpawns()
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestDeleteSpawn(t *testing.T) {
	store := newTestStore(t)

	rec := &types.SpawnRecord{WorkerID: types.NewWorkerID(), PID: 77}
	require.NoError(t, store.PutSpawn(rec))
	require.NoError(t, store.DeleteSpawn(rec.WorkerID))

	_, err := store.GetSpawn(rec.WorkerID)
	assert.Error(t, err)

	// Deleting a missing record is not an error.
	assert.NoError(t, store.DeleteSpawn(rec.WorkerID))
}

func TestPutSpawnUpserts(t *testing.T) {
	store := newTestStore(t)

	id := types.NewWorkerID()
	require.NoError(t, store.PutSpawn(&types.SpawnRecord{WorkerID: id, PID: 1}))
	require.NoError(t, store.PutSpawn(&types.SpawnRecord{WorkerID: id, PID: 2}))

	got, err := store.GetSpawn(id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PID)

	recs, err := store.ListSpawns()
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestStartupTokenCounter(t *testing.T) {
	store := newTestStore(t)

	token, err := store.LastStartupToken()
	require.NoError(t, err)
	assert.Equal(t, types.StartupToken(0), token)

	require.NoError(t, store.PutLastStartupToken(types.StartupToken(41)))

	token, err = store.LastStartupToken()
	require.NoError(t, err)
	assert.Equal(t, types.StartupToken(41), token)
}
