package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventQueryDispatched    EventType = "QueryDispatched"
	EventStatusChanged      EventType = "StatusChanged"
	EventResultsReplaced    EventType = "ResultsReplaced"
	EventResultsReset       EventType = "ResultsReset"
	EventIndexChanged       EventType = "IndexChanged"
	EventSelectionCommitted EventType = "SelectionCommitted"
	EventRefreshRequested   EventType = "RefreshRequested"
	EventError              EventType = "Error"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
	EventSessionEnded       EventType = "SessionEnded"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// QueryDispatchedEvent is emitted when a debounced, distinct query reaches the backend
type QueryDispatchedEvent struct {
	Query      string
	Generation uint64
}

func (e QueryDispatchedEvent) Type() EventType { return EventQueryDispatched }

// StatusChangedEvent is emitted for every status the pipeline publishes
type StatusChangedEvent struct {
	Query  string
	Status Status[[]string]
}

func (e StatusChangedEvent) Type() EventType { return EventStatusChanged }

// ResultsReplacedEvent is emitted when the visible result list is swapped
type ResultsReplacedEvent struct {
	Query   string
	Results []string
}

func (e ResultsReplacedEvent) Type() EventType { return EventResultsReplaced }

// ResultsResetEvent is emitted when a clear or deletion empties the list
type ResultsResetEvent struct {
	Reason string
}

func (e ResultsResetEvent) Type() EventType { return EventResultsReset }

// IndexChangedEvent is emitted when the highlighted index moves
type IndexChangedEvent struct {
	OldIndex int
	NewIndex int
}

func (e IndexChangedEvent) Type() EventType { return EventIndexChanged }

// SelectionCommittedEvent is emitted after the sink accepted a selection
type SelectionCommittedEvent struct {
	Value string
	ID    int64
}

func (e SelectionCommittedEvent) Type() EventType { return EventSelectionCommitted }

// RefreshRequestedEvent asks cache owners to fire their invalidation signal
type RefreshRequestedEvent struct{}

func (e RefreshRequestedEvent) Type() EventType { return EventRefreshRequested }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// SessionEndedEvent is the last event a bus delivers before it closes
type SessionEndedEvent struct {
	InstanceID string
}

func (e SessionEndedEvent) Type() EventType { return EventSessionEnded }
