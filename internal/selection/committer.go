package selection

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/go-logr/logr"
)

// DefaultRedirectURL is the base the committed id is appended to
const DefaultRedirectURL = "https://stackoverflow.com/questions/"

// Sink receives the encoded key of a committed selection
type Sink interface {
	NavigateTo(id int64) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(id int64) error

func (f SinkFunc) NavigateTo(id int64) error { return f(id) }

// Committer resolves a chosen index against the current results and hands
// the encoded value to the sink
type Committer struct {
	sink Sink
	log  logr.Logger
}

// NewCommitter creates a committer
func NewCommitter(sink Sink, log logr.Logger) *Committer {
	return &Committer{sink: sink, log: log.WithName("selection")}
}

// Commit encodes results[index] and navigates to it. Every failure is
// logged; callers may treat a non-nil error as a no-op.
func (c *Committer) Commit(index int, results []string) (int64, error) {
	if index < 0 || index >= len(results) {
		c.log.Info("ignoring commit outside result list", "index", index, "length", len(results))
		return 0, fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, index, len(results))
	}
	value := results[index]
	if value == "" {
		c.log.Info("ignoring commit of empty value", "index", index)
		return 0, ErrEmptyValue
	}

	id, err := Encode(value)
	if err != nil {
		c.log.Error(err, "failed to encode selection", "value", value)
		return 0, fmt.Errorf("failed to encode %q: %w", value, err)
	}

	if err := c.sink.NavigateTo(id); err != nil {
		c.log.Error(err, "navigation failed", "value", value, "id", id)
		return id, fmt.Errorf("failed to navigate to %d: %w", id, err)
	}
	c.log.V(1).Info("selection committed", "value", value, "id", id)
	return id, nil
}

// URLSink turns ids into redirect URLs. Each URL is recorded and passed to
// the optional open callback.
type URLSink struct {
	base string
	open func(url string) error

	mu      sync.Mutex
	visited []string
}

// NewURLSink creates a sink appending ids to base. An empty base falls
// back to DefaultRedirectURL.
func NewURLSink(base string, open func(url string) error) *URLSink {
	if base == "" {
		base = DefaultRedirectURL
	}
	return &URLSink{base: base, open: open}
}

// URL formats the redirect target for id
func (s *URLSink) URL(id int64) string {
	return s.base + strconv.FormatInt(id, 10)
}

func (s *URLSink) NavigateTo(id int64) error {
	u := s.URL(id)
	s.mu.Lock()
	s.visited = append(s.visited, u)
	s.mu.Unlock()

	if s.open == nil {
		return nil
	}
	return s.open(u)
}

// Last returns the most recent redirect target
func (s *URLSink) Last() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.visited) == 0 {
		return "", false
	}
	return s.visited[len(s.visited)-1], true
}
