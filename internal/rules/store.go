package rules

import (
	"errors"
	"sync"
)

var (
	errEmptyID      = errors.New("rule id is required")
	errEmptyName    = errors.New("rule name is required")
	errEmptyPattern = errors.New("rule pattern is required")

	// ErrNotFound is returned when a mutation names an unknown rule id.
	ErrNotFound = errors.New("rule not found")
	// ErrDuplicate is returned when adding a rule whose id already exists.
	ErrDuplicate = errors.New("rule id already exists")
)

// Store persists a full rule set as one snapshot, mirroring the key/value
// shape of the original backing store. Implementations must be safe for use
// from a single Registry; the Registry serializes access.
type Store interface {
	// Load returns the persisted rule set. An empty slice with a nil error
	// means the store has never been written.
	Load() ([]Rule, error)
	// Save replaces the persisted rule set.
	Save(rules []Rule) error
}

// MemoryStore is a Store kept entirely in memory, used when no database is
// configured and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	rules []Rule
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored rule set.
func (m *MemoryStore) Load() ([]Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Rule, len(m.rules))
	for i := range m.rules {
		out[i] = m.rules[i].Clone()
	}
	return out, nil
}

// Save replaces the stored rule set with a copy of rules.
func (m *MemoryStore) Save(rules []Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = make([]Rule, len(rules))
	for i := range rules {
		m.rules[i] = rules[i].Clone()
	}
	return nil
}
