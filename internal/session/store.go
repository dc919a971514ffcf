package session

import (
	"fmt"
	"sync"
)

// QueryKeySuffix is appended to the namespace to form the last-query key
const QueryKeySuffix = "_searchQuery"

// Store is a minimal string key-value store.
// Get returns "" without error for a missing key.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Namespaced scopes the single persisted query of one engine instance
type Namespaced struct {
	store     Store
	namespace string
}

// NewNamespaced wraps store so the query lives under namespace
func NewNamespaced(store Store, namespace string) *Namespaced {
	return &Namespaced{store: store, namespace: namespace}
}

// Key returns the underlying store key
func (n *Namespaced) Key() string {
	return n.namespace + QueryKeySuffix
}

// LoadQuery returns the last persisted query
func (n *Namespaced) LoadQuery() (string, error) {
	v, err := n.store.Get(n.Key())
	if err != nil {
		return "", fmt.Errorf("failed to load query for %s: %w", n.namespace, err)
	}
	return v, nil
}

// SaveQuery persists query
func (n *Namespaced) SaveQuery(query string) error {
	if err := n.store.Set(n.Key(), query); err != nil {
		return fmt.Errorf("failed to save query for %s: %w", n.namespace, err)
	}
	return nil
}

// MemoryStore is an in-memory implementation of Store
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates a new memory-based store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
