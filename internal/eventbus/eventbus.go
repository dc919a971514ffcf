package eventbus

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/go-logr/logr"

	"typeahead/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventQueryDispatched    = domain.EventQueryDispatched
	EventStatusChanged      = domain.EventStatusChanged
	EventResultsReplaced    = domain.EventResultsReplaced
	EventResultsReset       = domain.EventResultsReset
	EventIndexChanged       = domain.EventIndexChanged
	EventSelectionCommitted = domain.EventSelectionCommitted
	EventRefreshRequested   = domain.EventRefreshRequested
	EventError              = domain.EventError
	EventConfigLoaded       = domain.EventConfigLoaded
	EventConfigSaved        = domain.EventConfigSaved
	EventSessionEnded       = domain.EventSessionEnded
)

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Flush(ctx context.Context) error
	Close()
	Done() <-chan struct{}
}

// flushEvent is a barrier; it is never handed to subscribers
type flushEvent struct {
	done chan struct{}
}

func (flushEvent) Type() EventType { return "flush" }

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus.
// Handlers run on a single dispatcher goroutine, in publish order.
type bus struct {
	log       logr.Logger
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	closed    bool
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus
func New(log logr.Logger) EventBus {
	b := &bus{
		log:       log.WithName("eventbus"),
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 1000),
		quit:      make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for all subscribers. Events published after
// Close are dropped.
func (b *bus) Publish(event DomainEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	// Status changes fire on every keystroke pause; keep them at debug level
	if event.Type() == EventStatusChanged || event.Type() == EventIndexChanged {
		b.log.V(2).Info("publishing event", "type", event.Type())
	} else {
		b.log.V(1).Info("publishing event", "type", event.Type())
	}

	select {
	case b.eventChan <- event:
	default:
		b.log.Info("event bus channel full, dropping event", "type", event.Type())
	}
}

// Subscribe subscribes to events of a specific type.
// Returns an unsubscribe function.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Flush blocks until every event published before it has been handled
func (b *bus) Flush(ctx context.Context) error {
	fe := flushEvent{done: make(chan struct{})}

	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return nil
	}

	select {
	case b.eventChan <- fe:
	case <-b.quit:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-fe.done:
		return nil
	case <-b.quit:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close severs every subscription at once. Queued events are discarded and
// no handler runs after Close returns.
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.handlers = make(map[EventType][]subscription)
		b.mu.Unlock()

		close(b.quit)
		b.wg.Wait()
	})
}

// Done is closed once the bus has been torn down
func (b *bus) Done() <-chan struct{} {
	return b.quit
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			if fe, ok := event.(flushEvent); ok {
				close(fe.done)
				continue
			}
			b.mu.RLock()
			if b.closed {
				b.mu.RUnlock()
				continue
			}
			subs := b.handlers[event.Type()]
			// Copy so handlers can (un)subscribe without deadlocking
			handlersCopy := make([]subscription, len(subs))
			copy(handlersCopy, subs)
			b.mu.RUnlock()

			for _, s := range handlersCopy {
				b.call(s.handler, event)
			}

		case <-b.quit:
			// Drain remaining events
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}

func (b *bus) call(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error(nil, "event handler panic", "type", event.Type(), "panic", r, "stack", string(debug.Stack()))
		}
	}()
	h(event)
}
