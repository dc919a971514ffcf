package ui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"typeahead/internal/pipeline"
)

// teaScheduler collects timers and jobs requested during one Update and
// hands them to Bubble Tea as commands
type teaScheduler struct {
	pending []tea.Cmd
}

func (s *teaScheduler) After(d time.Duration, msg pipeline.Msg) func() {
	var cancelled atomic.Bool
	s.pending = append(s.pending, tea.Tick(d, func(time.Time) tea.Msg {
		if cancelled.Load() {
			return nil
		}
		return scheduledMsg{msg: msg}
	}))
	return func() { cancelled.Store(true) }
}

func (s *teaScheduler) Go(fn func() pipeline.Msg) {
	s.pending = append(s.pending, func() tea.Msg {
		return scheduledMsg{msg: fn()}
	})
}

// take removes the queued commands
func (s *teaScheduler) take() []tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return cmds
}

// flush batches the queued commands
func (s *teaScheduler) flush() tea.Cmd {
	return tea.Batch(s.take()...)
}
