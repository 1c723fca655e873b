package store

import (
	"fmt"
	"strings"
	"sync"

	"updatewatch/internal/domain"
)

// Memory is an in-process StateStore. It backs the session when the bbolt
// file cannot be opened (state then does not survive a restart) and serves
// as the store used in tests.
type Memory struct {
	mu        sync.RWMutex
	blob      []byte
	local     domain.LocalCatalogState
	dismissed domain.DismissalSet
	disabled  bool
}

func NewMemory() *Memory {
	return &Memory{dismissed: domain.NewDismissalSet()}
}

func (m *Memory) LocalCatalog() (domain.LocalCatalogState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.local, nil
}

func (m *Memory) SaveCatalog(blob []byte, state domain.LocalCatalogState) error {
	if len(blob) == 0 {
		return fmt.Errorf("catalog blob is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = append([]byte(nil), blob...)
	m.local = state
	return nil
}

func (m *Memory) Dismissed() (domain.DismissalSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dismissed, nil
}

func (m *Memory) RecordDismissal(id string) (domain.DismissalSet, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("announcement id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissed = m.dismissed.Record(id)
	return m.dismissed, nil
}

func (m *Memory) AutoUpdateDisabled() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.disabled, nil
}

func (m *Memory) SetAutoUpdateDisabled(disabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = disabled
	return nil
}

func (m *Memory) Close() error { return nil }

var _ domain.StateStore = (*Memory)(nil)
