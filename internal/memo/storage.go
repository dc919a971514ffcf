package memo

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry is what a Storage holds for one key
type Entry[T any] struct {
	Future *Future[T]
	// Generation is the refresh signal generation the entry was computed under
	Generation uint64
}

// Storage is the key → handle collaborator the cache orchestrates.
// Implementations must be safe for concurrent use.
type Storage[T any] interface {
	Get(key string) (*Entry[T], bool)
	Add(key string, entry *Entry[T])
	Remove(key string)
	Len() int
	Purge()
}

// MapStorage is an unbounded in-memory implementation of Storage
type MapStorage[T any] struct {
	mu      sync.RWMutex
	entries map[string]*Entry[T]
}

// NewMapStorage creates a new map-based storage
func NewMapStorage[T any]() *MapStorage[T] {
	return &MapStorage[T]{
		entries: make(map[string]*Entry[T]),
	}
}

func (s *MapStorage[T]) Get(key string) (*Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

func (s *MapStorage[T]) Add(key string, entry *Entry[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
}

func (s *MapStorage[T]) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *MapStorage[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MapStorage[T]) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry[T])
}

// LRUStorage bounds the number of cached handles, evicting the least
// recently used key first
type LRUStorage[T any] struct {
	cache *lru.Cache[string, *Entry[T]]
}

// NewLRUStorage creates a storage holding at most size entries
func NewLRUStorage[T any](size int) (*LRUStorage[T], error) {
	c, err := lru.New[string, *Entry[T]](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru storage: %w", err)
	}
	return &LRUStorage[T]{cache: c}, nil
}

func (s *LRUStorage[T]) Get(key string) (*Entry[T], bool) {
	return s.cache.Get(key)
}

func (s *LRUStorage[T]) Add(key string, entry *Entry[T]) {
	s.cache.Add(key, entry)
}

func (s *LRUStorage[T]) Remove(key string) {
	s.cache.Remove(key)
}

func (s *LRUStorage[T]) Len() int {
	return s.cache.Len()
}

func (s *LRUStorage[T]) Purge() {
	s.cache.Purge()
}

// NewStorage returns an LRU storage for a positive size and an unbounded
// map otherwise
func NewStorage[T any](size int) (Storage[T], error) {
	if size <= 0 {
		return NewMapStorage[T](), nil
	}
	return NewLRUStorage[T](size)
}
