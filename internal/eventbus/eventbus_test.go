package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typeahead/internal/domain"
)

type recorder struct {
	mu     sync.Mutex
	events []DomainEvent
}

func (r *recorder) handle(e DomainEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) snapshot() []DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

func TestPublishDeliversInOrder(t *testing.T) {
	b := New(logr.Discard())
	defer b.Close()

	rec := &recorder{}
	b.Subscribe(EventQueryDispatched, rec.handle)

	for i := uint64(1); i <= 5; i++ {
		b.Publish(domain.QueryDispatchedEvent{Query: "q", Generation: i})
	}

	require.Eventually(t, func() bool { return rec.count() == 5 }, time.Second, 5*time.Millisecond)
	for i, e := range rec.snapshot() {
		assert.Equal(t, uint64(i+1), e.(domain.QueryDispatchedEvent).Generation)
	}
}

func TestSubscribeFiltersByType(t *testing.T) {
	b := New(logr.Discard())
	defer b.Close()

	rec := &recorder{}
	b.Subscribe(EventResultsReset, rec.handle)

	b.Publish(domain.QueryDispatchedEvent{Query: "ignored"})
	b.Publish(domain.ResultsResetEvent{Reason: "clear"})

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, EventResultsReset, rec.snapshot()[0].Type())
}

func TestUnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	b := New(logr.Discard())
	defer b.Close()

	first, second := &recorder{}, &recorder{}
	unsubscribe := b.Subscribe(EventRefreshRequested, first.handle)
	b.Subscribe(EventRefreshRequested, second.handle)

	unsubscribe()
	b.Publish(domain.RefreshRequestedEvent{})

	require.Eventually(t, func() bool { return second.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, first.count())
}

func TestCloseSeversAllSubscriptions(t *testing.T) {
	b := New(logr.Discard())

	rec := &recorder{}
	b.Subscribe(EventRefreshRequested, rec.handle)
	b.Close()

	select {
	case <-b.Done():
	default:
		t.Fatal("Done should be closed after Close")
	}

	b.Publish(domain.RefreshRequestedEvent{})
	late := b.Subscribe(EventRefreshRequested, rec.handle)
	late()
	b.Close()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestHandlerPanicDoesNotStopDispatch(t *testing.T) {
	b := New(logr.Discard())
	defer b.Close()

	rec := &recorder{}
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventError, rec.handle)

	b.Publish(domain.ErrorEvent{Message: "first"})
	b.Publish(domain.ErrorEvent{Message: "second"})

	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestFlushWaitsForQueuedEvents(t *testing.T) {
	b := New(logr.Discard())

	rec := &recorder{}
	b.Subscribe(EventSessionEnded, func(e DomainEvent) {
		time.Sleep(10 * time.Millisecond)
		rec.handle(e)
	})

	b.Publish(domain.SessionEndedEvent{InstanceID: "abc"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Flush(ctx))
	assert.Equal(t, 1, rec.count())

	b.Close()
	assert.NoError(t, b.Flush(ctx), "flush after close is a no-op")
}
