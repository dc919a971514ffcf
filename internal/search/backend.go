package search

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"typeahead/internal/memo"
)

// Backend kinds accepted by Open
const (
	KindStatic   = "static"
	KindWordList = "wordlist"
)

// Backend is the black-box search the pipeline dispatches to
type Backend interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// BackendFunc adapts a function to Backend
type BackendFunc func(ctx context.Context, query string) ([]string, error)

func (f BackendFunc) Search(ctx context.Context, query string) ([]string, error) {
	return f(ctx, query)
}

// sleep waits d or until ctx ends
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Static answers every query with the same list after a fixed latency
type Static struct {
	Results []string
	Latency time.Duration
}

// NewStatic returns the stub backend: one, two, three after 200ms
func NewStatic() *Static {
	return &Static{
		Results: []string{"one", "two", "three"},
		Latency: 200 * time.Millisecond,
	}
}

func (s *Static) Search(ctx context.Context, _ string) ([]string, error) {
	if err := sleep(ctx, s.Latency); err != nil {
		return nil, err
	}
	out := make([]string, len(s.Results))
	copy(out, s.Results)
	return out, nil
}

// WordList matches queries against an in-memory vocabulary. Prefix matches
// rank before substring matches; each group keeps alphabetical order.
type WordList struct {
	words      []string
	maxResults int
	latency    time.Duration
}

// NewWordList creates a matcher over words. maxResults <= 0 means no limit.
func NewWordList(words []string, maxResults int, latency time.Duration) *WordList {
	seen := make(map[string]struct{}, len(words))
	clean := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		clean = append(clean, w)
	}
	sort.Strings(clean)
	return &WordList{words: clean, maxResults: maxResults, latency: latency}
}

// LoadWordList reads one word per line from path
func LoadWordList(path string, maxResults int, latency time.Duration) (*WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer f.Close()

	words, err := readWords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", path, err)
	}
	return NewWordList(words, maxResults, latency), nil
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, sc.Err()
}

// Len returns the vocabulary size
func (w *WordList) Len() int { return len(w.words) }

func (w *WordList) Search(ctx context.Context, query string) ([]string, error) {
	if err := sleep(ctx, w.latency); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []string{}, nil
	}

	var prefix, contains []string
	for i, word := range w.words {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lw := strings.ToLower(word)
		switch {
		case strings.HasPrefix(lw, q):
			prefix = append(prefix, word)
		case strings.Contains(lw, q):
			contains = append(contains, word)
		}
	}

	out := append(prefix, contains...)
	if out == nil {
		out = []string{}
	}
	if w.maxResults > 0 && len(out) > w.maxResults {
		out = out[:w.maxResults]
	}
	return out, nil
}

// Cached routes searches through a memoizing cache so identical queries
// share one lookup until the cache's signal fires
type Cached struct {
	search func(context.Context, string) ([]string, error)
	cache  *memo.Cache[[]string]
}

// NewCached wraps backend. prefix namespaces the cache keys.
func NewCached(prefix string, backend Backend, cache *memo.Cache[[]string]) *Cached {
	return &Cached{
		search: memo.Wrap(prefix+"_Search", cache, backend.Search),
		cache:  cache,
	}
}

func (c *Cached) Search(ctx context.Context, query string) ([]string, error) {
	results, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	// entries are shared between waiters
	out := make([]string, len(results))
	copy(out, results)
	return out, nil
}

// Refresh makes the next lookup of every query recompute
func (c *Cached) Refresh() {
	c.cache.Signal().Fire()
}

// Options selects and tunes a backend
type Options struct {
	Kind       string
	WordsFile  string
	Latency    time.Duration
	MaxResults int
}

// Open builds the backend named by opts.Kind
func Open(opts Options, log logr.Logger) (Backend, error) {
	switch opts.Kind {
	case "", KindWordList:
		if opts.WordsFile == "" {
			log.V(1).Info("using built-in vocabulary", "words", len(DefaultWords))
			return NewWordList(DefaultWords, opts.MaxResults, opts.Latency), nil
		}
		wl, err := LoadWordList(opts.WordsFile, opts.MaxResults, opts.Latency)
		if err != nil {
			return nil, err
		}
		log.V(1).Info("loaded vocabulary", "file", opts.WordsFile, "words", wl.Len())
		return wl, nil
	case KindStatic:
		s := NewStatic()
		if opts.Latency > 0 {
			s.Latency = opts.Latency
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q", opts.Kind)
	}
}
