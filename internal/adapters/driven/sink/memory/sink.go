// Package memory provides an export sink that keeps files in memory
// for download over HTTP.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.ExportSink = (*Sink)(nil)

// DefaultCapacity is how many artifacts are kept by default.
const DefaultCapacity = 8

// LocateFunc returns the location reported for a delivered artifact.
type LocateFunc func(jobID, filename string) string

// Sink keeps the most recent artifacts by job ID.
type Sink struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	items    map[string]domain.ExportArtifact
	locate   LocateFunc
}

// NewSink creates a sink keeping up to capacity artifacts.
// A nil locate reports "mem://<job>/<filename>".
func NewSink(capacity int, locate LocateFunc) *Sink {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if locate == nil {
		locate = func(jobID, filename string) string {
			return "mem://" + jobID + "/" + filename
		}
	}
	return &Sink{
		capacity: capacity,
		items:    make(map[string]domain.ExportArtifact),
		locate:   locate,
	}
}

// Deliver stores the artifact, evicting the oldest beyond capacity.
func (s *Sink) Deliver(ctx context.Context, a domain.ExportArtifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	a.Data = append([]byte(nil), a.Data...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[a.JobID]; !exists {
		s.order = append(s.order, a.JobID)
	}
	s.items[a.JobID] = a
	for len(s.order) > s.capacity {
		delete(s.items, s.order[0])
		s.order = s.order[1:]
	}
	return s.locate(a.JobID, a.Filename), nil
}

// Get returns the artifact delivered for jobID.
func (s *Sink) Get(jobID string) (domain.ExportArtifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[jobID]
	return a, ok
}
