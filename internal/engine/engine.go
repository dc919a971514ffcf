package engine

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"typeahead/internal/domain"
	"typeahead/internal/eventbus"
	"typeahead/internal/logger"
	"typeahead/internal/navigator"
	"typeahead/internal/normalize"
	"typeahead/internal/pipeline"
	"typeahead/internal/selection"
	"typeahead/internal/session"
)

// FocusProbe answers whether an item of the result list holds focus
type FocusProbe interface {
	ItemFocused() bool
}

// FocusProbeFunc adapts a function to FocusProbe
type FocusProbeFunc func() bool

func (f FocusProbeFunc) ItemFocused() bool { return f() }

// QueryStore persists the last query of one engine instance
type QueryStore interface {
	LoadQuery() (string, error)
	SaveQuery(query string) error
}

// Config tunes an engine
type Config struct {
	Debounce time.Duration
	WrapMode navigator.WrapMode
}

// Deps are the capabilities an engine is built from. Lookup, Scheduler and
// Sink are required.
type Deps struct {
	Lookup    pipeline.Lookup
	Scheduler pipeline.Scheduler
	Sink      selection.Sink
	// Store defaults to an in-memory store
	Store QueryStore
	// Probe defaults to the focus of the last snapshot
	Probe FocusProbe
	// Bus receives domain events when set
	Bus eventbus.EventBus
	// Refresh fires the cache invalidation signal when set
	Refresh func()
	Log     logr.Logger
}

// Engine routes device events through normalization, the query pipeline,
// navigation and commit. It is not safe for concurrent use; one loop owns it.
type Engine struct {
	id  string
	log logr.Logger

	normalizer *normalize.Normalizer
	pipeline   *pipeline.Pipeline
	navigator  *navigator.Navigator
	committer  *selection.Committer

	store   QueryStore
	probe   FocusProbe
	bus     eventbus.EventBus
	refresh func()

	results     []string
	typed       string
	focus       domain.Focus
	resetReason string
}

// New wires an engine from cfg and deps
func New(cfg Config, deps Deps) *Engine {
	id := uuid.New().String()
	log := deps.Log.WithName("engine").WithValues(logger.InstanceIDKey, id)

	store := deps.Store
	if store == nil {
		store = session.NewNamespaced(session.NewMemoryStore(), "typeahead")
	}

	e := &Engine{
		id:         id,
		log:        log,
		normalizer: normalize.New(store, log),
		navigator:  navigator.New(cfg.WrapMode),
		committer:  selection.NewCommitter(deps.Sink, log),
		store:      store,
		probe:      deps.Probe,
		bus:        deps.Bus,
		refresh:    deps.Refresh,
		results:    []string{},
	}
	e.pipeline = pipeline.New(pipeline.Config{Debounce: cfg.Debounce}, deps.Lookup, deps.Scheduler, store, log, e.onUpdate)
	return e
}

// InstanceID identifies this engine in logs and events
func (e *Engine) InstanceID() string {
	return e.id
}

// Handle routes one device event or scheduler continuation. It reports
// whether ev was recognised.
func (e *Engine) Handle(ev any) (domain.Snapshot, bool) {
	switch m := ev.(type) {
	case domain.QueryEvent:
		return e.HandleQuery(m), true
	case domain.KeyEvent:
		return e.HandleKey(m), true
	case domain.ClearEvent:
		return e.Clear(), true
	case domain.RefreshEvent:
		return e.Refresh(), true
	default:
		if e.pipeline.Handle(ev) {
			return e.Snapshot(), true
		}
		e.log.V(1).Info("ignoring unknown event", "event", ev)
		return e.Snapshot(), false
	}
}

// HandleQuery feeds a keyup or paste into the pipeline. Deletions also
// reset the result list without waiting for the debounce.
func (e *Engine) HandleQuery(ev domain.QueryEvent) domain.Snapshot {
	if ev.Kind == domain.KindKeystroke && isNavigationKey(ev.Key) {
		return e.Snapshot()
	}

	query := e.normalizer.Normalize(ev)
	if ev.Kind == domain.KindKeystroke && ev.RawValue != nil {
		e.typed = *ev.RawValue
	} else {
		e.typed = query
	}
	e.focus = domain.FocusInput

	e.pipeline.Push(query)
	if normalize.IsReset(ev) {
		e.reset("deletion")
	}
	return e.Snapshot()
}

// HandleKey applies a host-level keydown. Arrows move through the list
// whatever holds focus; Enter commits only from a focused item; any other
// key returns focus from an item to the input.
func (e *Engine) HandleKey(ev domain.KeyEvent) domain.Snapshot {
	switch ev.Key {
	case domain.KeyArrowUp:
		e.navigate(navigator.DirectionUp)
	case domain.KeyArrowDown:
		e.navigate(navigator.DirectionDown)
	case domain.KeyEnter:
		if e.itemFocused() {
			e.commit()
		}
	default:
		if e.itemFocused() {
			e.returnFocus()
		}
	}
	return e.Snapshot()
}

// Clear empties the input and the result list
func (e *Engine) Clear() domain.Snapshot {
	e.typed = ""
	e.focus = domain.FocusInput
	e.pipeline.Push("")
	e.reset("clear")
	return e.Snapshot()
}

// Refresh invalidates cached lookups and re-runs the current query
func (e *Engine) Refresh() domain.Snapshot {
	if e.refresh != nil {
		e.refresh()
	}
	e.publish(domain.RefreshRequestedEvent{})
	if !e.pipeline.Refresh() {
		e.log.V(1).Info("refresh requested with no active query")
	}
	return e.Snapshot()
}

// Restore reloads the persisted query by replaying a paste without
// clipboard payload, the same path a browser restore takes
func (e *Engine) Restore() domain.Snapshot {
	stored, err := e.store.LoadQuery()
	if err != nil {
		e.log.Error(err, "failed to restore last query")
		return e.Snapshot()
	}
	if stored == "" {
		return e.Snapshot()
	}
	e.log.V(1).Info("restoring last query", "query", stored)
	return e.HandleQuery(domain.Paste(nil))
}

// Stop cancels pending timers and lookups
func (e *Engine) Stop() {
	e.pipeline.Stop()
}

// Snapshot returns the current view state
func (e *Engine) Snapshot() domain.Snapshot {
	results := make([]string, len(e.results))
	copy(results, e.results)

	s := domain.Snapshot{
		Query:      e.pipeline.Query(),
		Status:     e.pipeline.Status(),
		Results:    results,
		Index:      e.navigator.Index(),
		Focus:      domain.FocusInput,
		InputValue: e.typed,
		NoResults:  e.pipeline.NoResults(),
	}
	if t := e.navigator.Target(); t.OnItem && e.focus == domain.FocusItem {
		s.Focus = domain.FocusItem
		s.InputValue = results[t.Item]
	}
	return s
}

func (e *Engine) onUpdate(u pipeline.Update) {
	e.results = u.Results
	if e.results == nil {
		e.results = []string{}
	}
	old := e.navigator.Index()
	e.navigator.Reset(len(e.results))
	e.focus = domain.FocusInput
	if old != e.navigator.Index() {
		e.publish(domain.IndexChangedEvent{OldIndex: old, NewIndex: e.navigator.Index()})
	}

	if u.Dispatched {
		e.publish(domain.QueryDispatchedEvent{Query: u.Query, Generation: u.Generation})
	}
	e.publish(domain.StatusChangedEvent{Query: u.Query, Status: u.Status})
	if u.Reset {
		e.publish(domain.ResultsResetEvent{Reason: e.resetReason})
	} else {
		e.publish(domain.ResultsReplacedEvent{Query: u.Query, Results: u.Results})
	}
	if u.Status.IsError() {
		e.publish(domain.ErrorEvent{Message: "lookup failed for " + u.Query, Err: u.Status.Err})
	}
}

func (e *Engine) reset(reason string) {
	e.resetReason = reason
	e.pipeline.Reset()
	e.resetReason = ""
}

func (e *Engine) navigate(direction navigator.Direction) {
	old, idx := e.navigator.Navigate(direction)
	if t := e.navigator.Target(); t.OnItem {
		e.focus = domain.FocusItem
	} else {
		e.focus = domain.FocusInput
	}
	if old != idx {
		e.log.V(2).Info("index moved", "from", old, "to", idx)
		e.publish(domain.IndexChangedEvent{OldIndex: old, NewIndex: idx})
	}
}

// returnFocus hands focus back to the input, keeping the highlighted text
// as the typed value
func (e *Engine) returnFocus() {
	if t := e.navigator.Target(); t.OnItem {
		e.typed = e.results[t.Item]
	}
	old := e.navigator.Index()
	e.navigator.Reset(len(e.results))
	e.focus = domain.FocusInput
	if old != e.navigator.Index() {
		e.publish(domain.IndexChangedEvent{OldIndex: old, NewIndex: e.navigator.Index()})
	}
}

func (e *Engine) commit() {
	idx := e.navigator.Index()
	id, err := e.committer.Commit(idx, e.results)
	if err != nil {
		e.publish(domain.ErrorEvent{Message: "commit failed", Err: err})
		return
	}
	e.publish(domain.SelectionCommittedEvent{Value: e.results[idx], ID: id})
}

func (e *Engine) itemFocused() bool {
	if e.probe != nil {
		return e.probe.ItemFocused()
	}
	return e.focus == domain.FocusItem && e.navigator.Target().OnItem
}

func (e *Engine) publish(ev domain.DomainEvent) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func isNavigationKey(key string) bool {
	return key == domain.KeyArrowUp || key == domain.KeyArrowDown || key == domain.KeyEnter
}
