package engine

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"typeahead/internal/domain"
	"typeahead/internal/eventbus"
	"typeahead/internal/pipeline"
)

const (
	defaultInboxSize    = 64
	defaultSnapshotSize = 16
	flushTimeout        = time.Second
)

// RunnerOptions sizes the runner's channels
type RunnerOptions struct {
	InboxSize    int
	SnapshotSize int
	// Restore replays the persisted query when the loop starts
	Restore bool
}

// Runner drives an Engine from its own goroutine. Device events go in
// through Send; a snapshot comes out after every handled event.
type Runner struct {
	engine *Engine
	bus    eventbus.EventBus
	log    logr.Logger
	opts   RunnerOptions

	inbox chan any
	out   chan domain.Snapshot
	done  chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewRunner builds the engine with a scheduler bound to the runner's loop.
// deps.Scheduler is replaced; a bus is created when deps.Bus is nil.
// The runner owns the bus and closes it on teardown.
func NewRunner(cfg Config, deps Deps, opts RunnerOptions) *Runner {
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}
	if opts.SnapshotSize <= 0 {
		opts.SnapshotSize = defaultSnapshotSize
	}
	if deps.Bus == nil {
		deps.Bus = eventbus.New(deps.Log)
	}

	r := &Runner{
		bus:   deps.Bus,
		log:   deps.Log.WithName("runner"),
		opts:  opts,
		inbox: make(chan any, opts.InboxSize),
		out:   make(chan domain.Snapshot, opts.SnapshotSize),
		done:  make(chan struct{}),
	}
	deps.Scheduler = &loopScheduler{runner: r}
	r.engine = New(cfg, deps)
	return r
}

// Bus returns the event bus the engine publishes to
func (r *Runner) Bus() eventbus.EventBus {
	return r.bus
}

// InstanceID returns the id of the driven engine
func (r *Runner) InstanceID() string {
	return r.engine.InstanceID()
}

// Snapshots delivers view state. Slow readers only miss intermediate
// snapshots, never the latest one. The channel closes on teardown.
func (r *Runner) Snapshots() <-chan domain.Snapshot {
	return r.out
}

// Send queues a device event. It reports false once the runner has stopped.
func (r *Runner) Send(ev any) bool {
	return r.post(ev)
}

// Run owns the engine until ctx ends, then tears everything down
func (r *Runner) Run(ctx context.Context) error {
	started := false
	r.startOnce.Do(func() { started = true })
	if !started {
		return nil
	}
	defer r.teardown()

	r.log.V(1).Info("runner started", "instance", r.engine.InstanceID())
	if r.opts.Restore {
		r.emit(r.engine.Restore())
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-r.inbox:
			snap, ok := r.engine.Handle(ev)
			if ok {
				r.emit(snap)
			}
		}
	}
}

func (r *Runner) teardown() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.engine.Stop()

		r.bus.Publish(domain.SessionEndedEvent{InstanceID: r.engine.InstanceID()})
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		if err := r.bus.Flush(ctx); err != nil {
			r.log.Error(err, "event bus did not drain before close")
		}
		cancel()
		r.bus.Close()

		close(r.out)
		r.log.V(1).Info("runner stopped", "instance", r.engine.InstanceID())
	})
}

// emit publishes snap, replacing the oldest undelivered snapshot when full
func (r *Runner) emit(snap domain.Snapshot) {
	for {
		select {
		case r.out <- snap:
			return
		default:
		}
		select {
		case <-r.out:
		default:
		}
	}
}

func (r *Runner) post(msg any) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.inbox <- msg:
		return true
	case <-r.done:
		return false
	}
}

// loopScheduler posts continuations back into the runner's inbox
type loopScheduler struct {
	runner *Runner
}

func (s *loopScheduler) After(d time.Duration, msg pipeline.Msg) func() {
	t := time.AfterFunc(d, func() { s.runner.post(msg) })
	return func() { t.Stop() }
}

func (s *loopScheduler) Go(fn func() pipeline.Msg) {
	go func() {
		s.runner.post(fn())
	}()
}
