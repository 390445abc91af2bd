package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nodelet/nodelet/pkg/types"
)

// Manager creates and removes per-worker scratch directories under one
// base path. Directories are named by worker ID so a sweep can match
// them against the live worker set.
type Manager struct {
	base string
}

// NewManager ensures the base directory exists and returns a manager
// rooted there.
func NewManager(base string) (*Manager, error) {
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch base directory: %w", err)
	}
	return &Manager{base: base}, nil
}

// Path returns the scratch directory path for a worker.
func (m *Manager) Path(id types.WorkerID) string {
	return filepath.Join(m.base, id.String())
}

// Create makes the scratch directory for a worker and returns its path.
func (m *Manager) Create(id types.WorkerID) (string, error) {
	dir := m.Path(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return dir, nil
}

// Remove deletes a worker's scratch directory and everything in it.
// Removing a directory that is already gone is not an error.
func (m *Manager) Remove(id types.WorkerID) error {
	dir := m.Path(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove scratch directory: %w", err)
	}
	return nil
}

// Sweep removes every scratch directory whose worker is not in keep and
// returns how many it removed. Files directly under the base are left
// alone.
func (m *Manager) Sweep(keep map[types.WorkerID]bool) (int, error) {
	entries, err := os.ReadDir(m.base)
	if err != nil {
		return 0, fmt.Errorf("failed to read scratch base directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if keep[types.WorkerID(e.Name())] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.base, e.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove scratch directory: %w", err)
		}
		removed++
	}
	return removed, nil
}
