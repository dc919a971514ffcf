// Package pipelinetest provides a manual Scheduler for deterministic tests.
package pipelinetest

import (
	"sync"
	"time"

	"typeahead/internal/pipeline"
)

type timer struct {
	d         time.Duration
	msg       pipeline.Msg
	cancelled bool
}

// Scheduler records timers and jobs until the test releases them
type Scheduler struct {
	mu     sync.Mutex
	timers []*timer
	jobs   []func() pipeline.Msg
}

// New creates an empty scheduler
func New() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) After(d time.Duration, msg pipeline.Msg) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &timer{d: d, msg: msg}
	s.timers = append(s.timers, t)
	return func() {
		s.mu.Lock()
		t.cancelled = true
		s.mu.Unlock()
	}
}

func (s *Scheduler) Go(fn func() pipeline.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, fn)
}

// PendingTimers counts timers that were neither fired nor cancelled
func (s *Scheduler) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// PendingJobs counts jobs not yet run
func (s *Scheduler) PendingJobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// LastDelay returns the duration of the most recent timer
func (s *Scheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return 0
	}
	return s.timers[len(s.timers)-1].d
}

// FireTimers hands every live timer message to handle in scheduling order.
// When includeCancelled is set cancelled timers fire too, emulating a
// cancel that lost the race with the timer.
func (s *Scheduler) FireTimers(handle func(pipeline.Msg), includeCancelled bool) {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()

	for _, t := range timers {
		if t.cancelled && !includeCancelled {
			continue
		}
		handle(t.msg)
	}
}

// TakeJobs removes and returns queued jobs without running them
func (s *Scheduler) TakeJobs() []func() pipeline.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := s.jobs
	s.jobs = nil
	return jobs
}

// RunJobs runs queued jobs in order and hands their results to handle
func (s *Scheduler) RunJobs(handle func(pipeline.Msg)) {
	for _, job := range s.TakeJobs() {
		handle(job())
	}
}
