package daemon

import (
	"sync"

	"github.com/nodelet/nodelet/pkg/contract"
	"github.com/nodelet/nodelet/pkg/types"
	"github.com/nodelet/nodelet/pkg/worker"
)

// Table is the daemon's in-memory registry of supervised workers. It is
// the authoritative view of what runs on this node; the spawn records in
// storage exist only so a restarted daemon can find leftovers.
//
// Workers are indexed by ID and, for records the daemon spawned itself, by
// startup token so the announce callback can be correlated.
type Table struct {
	mu      sync.RWMutex
	workers map[types.WorkerID]*worker.Worker
	byToken map[types.StartupToken]types.WorkerID
}

// NewTable creates an empty worker table.
func NewTable() *Table {
	return &Table{
		workers: make(map[types.WorkerID]*worker.Worker),
		byToken: make(map[types.StartupToken]types.WorkerID),
	}
}

// Add registers a worker. Registering the same ID or startup token twice
// is a daemon bug.
func (t *Table) Add(w *worker.Worker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := w.ID()
	_, dup := t.workers[id]
	contract.Checkf(!dup, "worker %s is already registered", id)

	if token := w.StartupToken(); token != 0 {
		holder, taken := t.byToken[token]
		contract.Checkf(!taken, "startup token %d is already held by worker %s", token, holder)
		t.byToken[token] = id
	}
	t.workers[id] = w
}

// Remove unregisters a worker and returns it, or nil if the ID is unknown.
func (t *Table) Remove(id types.WorkerID) *worker.Worker {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.workers[id]
	if !ok {
		return nil
	}
	delete(t.workers, id)
	if token := w.StartupToken(); token != 0 && t.byToken[token] == id {
		delete(t.byToken, token)
	}
	return w
}

// Get returns the worker with the given ID, or nil.
func (t *Table) Get(id types.WorkerID) *worker.Worker {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.workers[id]
}

// GetByToken returns the worker holding the given startup token, or nil.
func (t *Table) GetByToken(token types.StartupToken) *worker.Worker {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byToken[token]
	if !ok {
		return nil
	}
	return t.workers[id]
}

// List returns all registered workers in unspecified order.
func (t *Table) List() []*worker.Worker {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*worker.Worker, 0, len(t.workers))
	for _, w := range t.workers {
		out = append(out, w)
	}
	return out
}

// Len returns the number of registered workers.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.workers)
}
