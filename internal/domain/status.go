package domain

// StatusKind is the tag of a Status
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusLoading
	StatusResolved
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusLoading:
		return "loading"
	case StatusResolved:
		return "resolved"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Status is the tri-state outcome of an asynchronous lookup.
// The zero value is Idle, the state before any query was dispatched.
type Status[T any] struct {
	Kind  StatusKind
	Value T
	Err   error
}

func Loading[T any]() Status[T] {
	return Status[T]{Kind: StatusLoading}
}

func Resolved[T any](value T) Status[T] {
	return Status[T]{Kind: StatusResolved, Value: value}
}

func Failed[T any](err error) Status[T] {
	return Status[T]{Kind: StatusError, Err: err}
}

func (s Status[T]) IsLoading() bool  { return s.Kind == StatusLoading }
func (s Status[T]) IsResolved() bool { return s.Kind == StatusResolved }
func (s Status[T]) IsError() bool    { return s.Kind == StatusError }

// IsTerminal reports whether the status ends a logical query
func (s Status[T]) IsTerminal() bool {
	return s.Kind == StatusResolved || s.Kind == StatusError
}

// Project maps a result-list status to the list shown to the user:
// the resolved value, or an empty list for every other state.
func Project(s Status[[]string]) []string {
	if s.Kind != StatusResolved || len(s.Value) == 0 {
		return []string{}
	}
	out := make([]string, len(s.Value))
	copy(out, s.Value)
	return out
}

// NoResults is true when a non-empty query resolved to an empty list.
func NoResults(s Status[[]string], query string) bool {
	return s.Kind == StatusResolved && query != "" && len(s.Value) == 0
}
