package ui

import (
	"typeahead/internal/eventbus"
	"typeahead/internal/pipeline"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// scheduledMsg carries an engine continuation through the Bubble Tea loop
type scheduledMsg struct {
	msg pipeline.Msg
}

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}
