// Package store persists notifier state in an embedded bbolt database.
//
// The contract is a flat key-value surface shared with the hosting
// application: the downloaded catalog blob, the dismissed announcement ids,
// and the auto-update opt-out flag. When the database cannot be opened the
// caller falls back to the in-memory implementation for the session.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"updatewatch/internal/domain"
)

var ErrClosed = errors.New("state store is closed")

type Store struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
}

// Open opens (or creates) the state database at path.
func Open(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("state path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure state dir: %w", err)
	}
	options := &bolt.Options{Timeout: time.Second}
	base, err := bolt.Open(trimmed, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if err := ensureSchema(base); err != nil {
		_ = base.Close()
		return nil, err
	}
	return &Store{db: base, path: trimmed}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// LocalCatalog parses the cached catalog blob into the local state. An
// absent blob means the catalog was never downloaded.
func (s *Store) LocalCatalog() (domain.LocalCatalogState, error) {
	var state domain.LocalCatalogState
	err := s.view(func(tx *bolt.Tx) error {
		bucket, err := stateBucket(tx)
		if err != nil {
			return err
		}
		blob := bucket.Get([]byte(KeyAudioIDs))
		if len(blob) == 0 {
			return nil
		}
		var parsed struct {
			Version  string `json:"version"`
			TotalIDs int    `json:"total_ids"`
		}
		if err := json.Unmarshal(blob, &parsed); err != nil {
			return fmt.Errorf("decode cached catalog: %w", err)
		}
		state.Version = parsed.Version
		state.TotalEntries = parsed.TotalIDs
		if state.TotalEntries < 0 {
			state.TotalEntries = 0
		}
		return nil
	})
	return state, err
}

// SaveCatalog writes the catalog blob. The local state is always re-derived
// from the blob on read, so only the blob is stored.
func (s *Store) SaveCatalog(blob []byte, _ domain.LocalCatalogState) error {
	if len(blob) == 0 {
		return fmt.Errorf("catalog blob is empty")
	}
	return s.update(func(tx *bolt.Tx) error {
		bucket, err := stateBucket(tx)
		if err != nil {
			return err
		}
		if err := bucket.Put([]byte(KeyAudioIDs), blob); err != nil {
			return fmt.Errorf("write catalog blob: %w", err)
		}
		return nil
	})
}

// Dismissed reads the dismissed ids. Duplicate entries written by older
// clients are collapsed on read.
func (s *Store) Dismissed() (domain.DismissalSet, error) {
	var ids []string
	err := s.view(func(tx *bolt.Tx) error {
		bucket, err := stateBucket(tx)
		if err != nil {
			return err
		}
		raw := bucket.Get([]byte(KeyDismissed))
		if len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, &ids); err != nil {
			return fmt.Errorf("decode dismissed ids: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return domain.NewDismissalSet(ids...), nil
}

func (s *Store) RecordDismissal(id string) (domain.DismissalSet, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("announcement id is required")
	}
	var updated domain.DismissalSet
	err := s.update(func(tx *bolt.Tx) error {
		bucket, err := stateBucket(tx)
		if err != nil {
			return err
		}
		var ids []string
		if raw := bucket.Get([]byte(KeyDismissed)); len(raw) > 0 {
			if err := json.Unmarshal(raw, &ids); err != nil {
				return fmt.Errorf("decode dismissed ids: %w", err)
			}
		}
		updated = domain.NewDismissalSet(ids...).Record(id)
		encoded, err := json.Marshal(updated.IDs())
		if err != nil {
			return fmt.Errorf("encode dismissed ids: %w", err)
		}
		return bucket.Put([]byte(KeyDismissed), encoded)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) AutoUpdateDisabled() (bool, error) {
	var disabled bool
	err := s.view(func(tx *bolt.Tx) error {
		bucket, err := stateBucket(tx)
		if err != nil {
			return err
		}
		disabled = bucket.Get([]byte(KeyAutoUpdateDisabled)) != nil
		return nil
	})
	return disabled, err
}

func (s *Store) SetAutoUpdateDisabled(disabled bool) error {
	return s.update(func(tx *bolt.Tx) error {
		bucket, err := stateBucket(tx)
		if err != nil {
			return err
		}
		if !disabled {
			return bucket.Delete([]byte(KeyAutoUpdateDisabled))
		}
		return bucket.Put([]byte(KeyAutoUpdateDisabled), []byte("1"))
	})
}

func (s *Store) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.Update(fn)
}

var _ domain.StateStore = (*Store)(nil)
