// Package store persists the single session blob between runs.
// Corrupted or missing state always degrades to "no session"; loading
// never fails a startup.
package store

import (
	"sync"

	"github.com/mnemolabs/mnemo/internal/core/models"
)

// Store reads and writes the persisted session.
type Store interface {
	// Save replaces the persisted session snapshot.
	Save(session models.Session) error

	// Load returns the persisted session, or nil when there is none.
	// Malformed or schema-mismatched state is treated as absent.
	Load() (*models.Session, error)

	// Clear removes any persisted session.
	Clear() error
}

// Memory is an in-process Store used by tests and the MCP server's
// ephemeral mode.
type Memory struct {
	mu      sync.Mutex
	session *models.Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := session.Clone()
	m.session = &s
	return nil
}

func (m *Memory) Load() (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	s := m.session.Clone()
	return &s, nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
