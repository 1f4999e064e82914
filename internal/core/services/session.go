package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
)

// Ensure SearchSession implements the interface.
var _ driving.SearchSession = (*SearchSession)(nil)

// SearchSession tracks the latest interactive search request.
//
// Each Begin cancels the previous request and returns a new generation.
// A response whose generation is no longer current must be discarded,
// so the display always reflects the latest intent.
type SearchSession struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewSearchSession creates an idle session.
func NewSearchSession() *SearchSession {
	return &SearchSession{}
}

// Begin starts a new request derived from parent.
func (s *SearchSession) Begin(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.gen++
	s.cancel = cancel
	return ctx, s.gen
}

// IsCurrent reports whether gen is the latest generation.
func (s *SearchSession) IsCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// Generation returns the latest generation.
func (s *SearchSession) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Cancel cancels the in-flight request, if any.
func (s *SearchSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
