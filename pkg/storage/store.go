package storage

import (
	"github.com/nodelet/nodelet/pkg/types"
)

// Store defines the interface for the daemon's persistent node state.
// Spawn records outlive the daemon process so that a restarted daemon can
// find and reap the workers its predecessor left running.
type Store interface {
	// Spawn records
	PutSpawn(rec *types.SpawnRecord) error
	GetSpawn(id types.WorkerID) (*types.SpawnRecord, error)
	ListSpawns() ([]*types.SpawnRecord, error)
	DeleteSpawn(id types.WorkerID) error

	// Startup token counter. Tokens must stay unique across daemon
	// restarts; LastStartupToken returns 0 on a fresh database.
	PutLastStartupToken(token types.StartupToken) error
	LastStartupToken() (types.StartupToken, error)

	// Utility
	Close() error
}
