package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"typeahead/internal/domain"
)

// DefaultDebounce is the quiet window used when none is configured
const DefaultDebounce = 300 * time.Millisecond

// Lookup is the asynchronous search the pipeline dispatches to
type Lookup func(ctx context.Context, query string) ([]string, error)

// QuerySaver persists the last dispatched query
type QuerySaver interface {
	SaveQuery(query string) error
}

// State is the coarse lifecycle of the pipeline
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateInFlight
)

func (s State) String() string {
	switch s {
	case StateDebouncing:
		return "debouncing"
	case StateInFlight:
		return "in-flight"
	default:
		return "idle"
	}
}

// Config tunes the pipeline
type Config struct {
	Debounce time.Duration
}

// Update is published every time the visible output changes
type Update struct {
	Query      string
	Generation uint64
	Status     domain.Status[[]string]
	Results    []string
	// Reset is set when the list was emptied by a clear or a deletion
	Reset bool
	// Dispatched is set on the Loading update that starts a lookup
	Dispatched bool
}

// Pipeline debounces, deduplicates and dispatches queries. It is not safe
// for concurrent use: all methods must be called from the owning loop.
type Pipeline struct {
	cfg      Config
	lookup   Lookup
	sched    Scheduler
	saver    QuerySaver
	log      logr.Logger
	onUpdate func(Update)

	ctx    context.Context
	cancel context.CancelFunc

	seq         uint64
	pending     string
	cancelTimer func()

	last    string
	hasLast bool

	gen            uint64
	cancelInFlight context.CancelFunc

	query   string
	status  domain.Status[[]string]
	stopped bool
}

// New creates a pipeline. saver may be nil. onUpdate receives every
// output change synchronously on the owning loop.
func New(cfg Config, lookup Lookup, sched Scheduler, saver QuerySaver, log logr.Logger, onUpdate func(Update)) *Pipeline {
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		cfg:      cfg,
		lookup:   lookup,
		sched:    sched,
		saver:    saver,
		log:      log.WithName("pipeline"),
		onUpdate: onUpdate,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Push feeds one normalized query into the debounce window
func (p *Pipeline) Push(query string) {
	if p.stopped {
		return
	}
	p.seq++
	p.pending = query
	if p.cancelTimer != nil {
		p.cancelTimer()
		p.cancelTimer = nil
	}
	if p.cfg.Debounce == 0 {
		p.settle(p.seq)
		return
	}
	p.cancelTimer = p.sched.After(p.cfg.Debounce, DebounceElapsed{Seq: p.seq})
}

// Reset empties the result list immediately. The in-flight lookup is
// superseded and the dedupe memory forgotten; a pending debounce timer is
// left running.
func (p *Pipeline) Reset() {
	if p.stopped {
		return
	}
	p.supersede()
	p.hasLast = false
	p.last = ""
	p.query = ""
	p.status = domain.Status[[]string]{}
	p.log.V(1).Info("results reset")
	p.onUpdate(Update{
		Generation: p.gen,
		Status:     p.status,
		Results:    []string{},
		Reset:      true,
	})
}

// Refresh re-dispatches the current query, bypassing debounce and dedupe.
// It reports whether there was a query to refresh.
func (p *Pipeline) Refresh() bool {
	if p.stopped || p.query == "" || p.status.Kind == domain.StatusIdle {
		return false
	}
	p.dispatch(p.query)
	return true
}

// Handle consumes a continuation produced by the scheduler. It reports
// whether msg belonged to the pipeline.
func (p *Pipeline) Handle(msg Msg) bool {
	switch m := msg.(type) {
	case DebounceElapsed:
		if !p.stopped {
			p.settle(m.Seq)
		}
		return true
	case LookupCompleted:
		if !p.stopped {
			p.complete(m)
		}
		return true
	default:
		return false
	}
}

// Stop cancels timers and in-flight lookups. Completions that arrive
// afterwards are ignored.
func (p *Pipeline) Stop() {
	if p.stopped {
		return
	}
	p.stopped = true
	if p.cancelTimer != nil {
		p.cancelTimer()
		p.cancelTimer = nil
	}
	p.supersede()
	p.cancel()
}

// Query returns the query of the latest dispatch
func (p *Pipeline) Query() string { return p.query }

// Status returns the latest published status
func (p *Pipeline) Status() domain.Status[[]string] { return p.status }

// Results returns a copy of the visible result list
func (p *Pipeline) Results() []string { return domain.Project(p.status) }

// Generation returns the number of the latest dispatch or reset
func (p *Pipeline) Generation() uint64 { return p.gen }

// State reports what the pipeline is currently waiting for
func (p *Pipeline) State() State {
	switch {
	case p.cancelTimer != nil:
		return StateDebouncing
	case p.cancelInFlight != nil:
		return StateInFlight
	default:
		return StateIdle
	}
}

// NoResults is true when a non-empty query resolved to an empty list
func (p *Pipeline) NoResults() bool {
	return domain.NoResults(p.status, p.query)
}

func (p *Pipeline) settle(seq uint64) {
	if seq != p.seq {
		p.log.V(2).Info("dropping stale debounce fire", "seq", seq, "current", p.seq)
		return
	}
	p.cancelTimer = nil
	query := p.pending

	if p.hasLast && query == p.last {
		p.log.V(2).Info("query unchanged, skipping", "query", query)
		return
	}
	p.last, p.hasLast = query, true

	if query == "" {
		return
	}
	p.dispatch(query)
}

func (p *Pipeline) dispatch(query string) {
	if p.saver != nil {
		if err := p.saver.SaveQuery(query); err != nil {
			p.log.Error(err, "failed to persist query", "query", query)
		}
	}

	p.supersede()
	gen := p.gen
	ctx, cancel := context.WithCancel(p.ctx)
	p.cancelInFlight = cancel

	p.query = query
	p.status = domain.Loading[[]string]()
	p.log.V(1).Info("dispatching lookup", "query", query, "generation", gen)
	p.onUpdate(Update{
		Query:      query,
		Generation: gen,
		Status:     p.status,
		Results:    []string{},
		Dispatched: true,
	})

	lookup := p.lookup
	p.sched.Go(func() Msg {
		value, err := safeLookup(ctx, lookup, query)
		return LookupCompleted{Generation: gen, Query: query, Value: value, Err: err}
	})
}

func (p *Pipeline) complete(m LookupCompleted) {
	if m.Generation != p.gen {
		p.log.V(1).Info("dropping superseded result", "query", m.Query, "generation", m.Generation, "current", p.gen)
		return
	}
	if p.cancelInFlight != nil {
		p.cancelInFlight()
		p.cancelInFlight = nil
	}

	if m.Err != nil {
		p.log.Error(m.Err, "lookup failed", "query", m.Query)
		p.status = domain.Failed[[]string](m.Err)
	} else {
		value := make([]string, len(m.Value))
		copy(value, m.Value)
		p.status = domain.Resolved(value)
	}
	p.onUpdate(Update{
		Query:      m.Query,
		Generation: m.Generation,
		Status:     p.status,
		Results:    domain.Project(p.status),
	})
}

// supersede bumps the generation so any outstanding completion is dropped
func (p *Pipeline) supersede() {
	p.gen++
	if p.cancelInFlight != nil {
		p.cancelInFlight()
		p.cancelInFlight = nil
	}
}

func safeLookup(ctx context.Context, lookup Lookup, query string) (value []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("lookup for %q panicked: %v", query, r)
		}
	}()
	return lookup(ctx, query)
}
