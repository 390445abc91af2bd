package daemon

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodelet/nodelet/pkg/log"
	"github.com/nodelet/nodelet/pkg/types"
	"github.com/nodelet/nodelet/pkg/worker"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: log.ErrorLevel, JSONOutput: true, Output: io.Discard})
	os.Exit(m.Run())
}

func tableWorker(token types.StartupToken) *worker.Worker {
	return worker.New(worker.Options{
		ID:           types.NewWorkerID(),
		Language:     types.LanguagePython,
		Type:         types.WorkerTypeWorker,
		IP:           "127.0.0.1",
		StartupToken: token,
	})
}

func TestTableAddAndLookup(t *testing.T) {
	tbl := NewTable()
	w := tableWorker(7)

	tbl.Add(w)

	assert.Equal(t, 1, tbl.Len())
	assert.Same(t, w, tbl.Get(w.ID()))
	assert.Same(t, w, tbl.GetByToken(7))
}

func TestTableUnknownLookups(t *testing.T) {
	tbl := NewTable()

	assert.Nil(t, tbl.Get(types.NewWorkerID()))
	assert.Nil(t, tbl.GetByToken(99))
}

func TestTableDuplicateIDPanics(t *testing.T) {
	tbl := NewTable()
	w := tableWorker(1)
	tbl.Add(w)

	require.Panics(t, func() { tbl.Add(w) })
}

func TestTableDuplicateTokenPanics(t *testing.T) {
	tbl := NewTable()
	tbl.Add(tableWorker(5))

	require.Panics(t, func() { tbl.Add(tableWorker(5)) })
}

func TestTableZeroTokenNotIndexed(t *testing.T) {
	// Drivers register without a startup token; two of them must coexist.
	tbl := NewTable()
	tbl.Add(tableWorker(0))
	tbl.Add(tableWorker(0))

	assert.Equal(t, 2, tbl.Len())
	assert.Nil(t, tbl.GetByToken(0))
}

func TestTableRemove(t *testing.T) {
	tbl := NewTable()
	w := tableWorker(3)
	tbl.Add(w)

	got := tbl.Remove(w.ID())

	assert.Same(t, w, got)
	assert.Equal(t, 0, tbl.Len())
	assert.Nil(t, tbl.Get(w.ID()))
	assert.Nil(t, tbl.GetByToken(3))

	// Token is free again after removal.
	tbl.Add(tableWorker(3))
}

func TestTableRemoveUnknown(t *testing.T) {
	tbl := NewTable()

	assert.Nil(t, tbl.Remove(types.NewWorkerID()))
}

func TestTableList(t *testing.T) {
	tbl := NewTable()
	seen := map[types.WorkerID]bool{}
	for i := 1; i <= 3; i++ {
		w := tableWorker(types.StartupToken(i))
		seen[w.ID()] = false
		tbl.Add(w)
	}

	ws := tbl.List()

	require.Len(t, ws, 3)
	for _, w := range ws {
		_, ok := seen[w.ID()]
		assert.True(t, ok)
	}
}
