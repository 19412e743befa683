package feed

import "sync"

// Sentinel stands in for the visibility observer attached to the last
// rendered feed item. It fires its callback at most once per arming;
// re-rendering arms a new sentinel and detaches the old one.
type Sentinel struct {
	mu        sync.Mutex
	fired     bool
	detached  bool
	onVisible func()
}

// NewSentinel creates an armed sentinel
func NewSentinel(onVisible func()) *Sentinel {
	return &Sentinel{onVisible: onVisible}
}

// Visible reports the watched element becoming visible. The callback runs
// at most once; later calls and calls after Detach do nothing.
func (s *Sentinel) Visible() {
	s.mu.Lock()
	if s.fired || s.detached || s.onVisible == nil {
		s.mu.Unlock()
		return
	}
	s.fired = true
	cb := s.onVisible
	s.mu.Unlock()

	cb()
}

// Detach disconnects the sentinel so it can never fire again
func (s *Sentinel) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detached = true
}
