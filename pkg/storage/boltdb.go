package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/nodelet/nodelet/pkg/types"
)

var (
	// Bucket names
	bucketSpawns = []byte("spawns")
	bucketMeta   = []byte("meta")

	keyLastStartupToken = []byte("last_startup_token")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "nodelet.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketSpawns,
			bucketMeta,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Spawn record operations
func (s *BoltStore) PutSpawn(rec *types.SpawnRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSpawns)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.WorkerID), data)
	})
}

func (s *BoltStore) GetSpawn(id types.WorkerID) (*types.SpawnRecord, error) {
	var rec types.SpawnRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSpawns)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("spawn record not found: %s", id)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *BoltStore) ListSpawns() ([]*types.SpawnRecord, error) {
	var recs []*types.SpawnRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSpawns)
		return b.ForEach(func(k, v []byte) error {
			var rec types.SpawnRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			recs = append(recs, &rec)
			return nil
		})
	})
	return recs, err
}

func (s *BoltStore) DeleteSpawn(id types.WorkerID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSpawns)
		return b.Delete([]byte(id))
	})
}

// Startup token counter operations
func (s *BoltStore) PutLastStartupToken(token types.StartupToken) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		data, err := json.Marshal(token)
		if err != nil {
			return err
		}
		return b.Put(keyLastStartupToken, data)
	})
}

func (s *BoltStore) LastStartupToken() (types.StartupToken, error) {
	var token types.StartupToken
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		data := b.Get(keyLastStartupToken)
		if data == nil {
			// Fresh database
			return nil
		}
		return json.Unmarshal(data, &token)
	})
	return token, err
}
