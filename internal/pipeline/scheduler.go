package pipeline

import "time"

// Msg is a continuation posted back to the owning loop
type Msg interface{}

// Scheduler lets a state machine defer work without owning goroutines.
// Every Msg produced by After or Go must be handed back to the machine on
// the loop that owns it.
type Scheduler interface {
	// After posts msg once d has elapsed. cancel is best effort; a fire that
	// races with cancel must still be tolerated by the receiver.
	After(d time.Duration, msg Msg) (cancel func())
	// Go runs fn off the loop and posts its result.
	Go(fn func() Msg)
}

// DebounceElapsed fires when the quiet window after a query has passed
type DebounceElapsed struct {
	Seq uint64
}

// LookupCompleted carries the outcome of one dispatched lookup
type LookupCompleted struct {
	Generation uint64
	Query      string
	Value      []string
	Err        error
}
