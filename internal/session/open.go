package session

import (
	"fmt"
	"io"
)

// Backend names accepted by Open
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindSQLite = "sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store named by kind. The returned closer releases any
// resources the store holds and is never nil.
func Open(kind, path string) (Store, io.Closer, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(), nopCloser{}, nil
	case KindFile:
		if path == "" {
			return nil, nil, fmt.Errorf("file session store needs a path")
		}
		return NewFileStore(path), nopCloser{}, nil
	case KindSQLite:
		if path == "" {
			return nil, nil, fmt.Errorf("sqlite session store needs a path")
		}
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", kind)
	}
}
