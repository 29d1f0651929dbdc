package server

import (
	"time"
)

// scheduleNextRound arms the between-rounds delay. Only one timer exists per
// session; arming replaces any previous one.
func (s *Server) scheduleNextRound(code string, completed int) {
	delay := time.Duration(s.cfg.NextRoundDelaySeconds) * time.Second

	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[code]; ok {
		timer.Stop()
	}
	s.timers[code] = time.AfterFunc(delay, func() {
		s.clearTimer(code)
		s.advanceRound(code, completed)
	})
}

func (s *Server) clearTimer(code string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	delete(s.timers, code)
}

// cancelTimer stops a pending round advance, if any. Used when a session ends
// or is torn down before the timer fires.
func (s *Server) cancelTimer(code string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[code]; ok {
		timer.Stop()
		delete(s.timers, code)
	}
}

// removeGame tears a session down: the pending advance timer dies with it so a
// late fire cannot touch a code that no longer resolves.
func (s *Server) removeGame(code string) {
	s.cancelTimer(code)
	s.store.RemoveGame(code)
}
