package duel

import (
	"sync"
	"time"
)

// Scheduler fires delayed callbacks for round timeouts and finished-game
// expiry. Timers are never cancelled individually: every callback is guarded
// by the ticket it was armed with, so a fire for a resolved round is a no-op.
type Scheduler struct {
	timeout       time.Duration
	rematchWindow time.Duration
	fire          func(gameID string, t Ticket)
	cleaner       Cleaner

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

// NewScheduler calls fire when a round armed with Arm runs out of time, and
// cleaner.Cleanup when a game armed with ArmExpiry saw no rematch.
func NewScheduler(timeout, rematchWindow time.Duration, fire func(gameID string, t Ticket), cleaner Cleaner) *Scheduler {
	return &Scheduler{
		timeout:       timeout,
		rematchWindow: rematchWindow,
		fire:          fire,
		cleaner:       cleaner,
		timers:        make(map[*time.Timer]struct{}),
	}
}

// Arm schedules the timeout of round t.
func (s *Scheduler) Arm(gameID string, t Ticket) {
	s.After(s.timeout, func() { s.fire(gameID, t) })
}

// ArmExpiry schedules removal of a finished game after the rematch window.
func (s *Scheduler) ArmExpiry(gameID string) {
	if s.rematchWindow <= 0 || s.cleaner == nil {
		return
	}
	s.After(s.rematchWindow, func() { s.cleaner.Cleanup(gameID) })
}

// After runs f once d has elapsed unless the scheduler was closed.
func (s *Scheduler) After(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[t]
		delete(s.timers, t)
		s.mu.Unlock()
		if live {
			f()
		}
	})
	s.timers[t] = struct{}{}
}

// Pending is the number of armed callbacks that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close stops every armed timer. Callbacks already running finish; later
// fires do nothing.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	clear(s.timers)
}
