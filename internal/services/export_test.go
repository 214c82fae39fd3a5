package services

import "time"

// SetClock replaces the clock used for idle tracking.
func SetClock(s *SessionService, now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
