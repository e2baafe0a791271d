package memory

import (
	"context"
	"sync"

	"github.com/dewakar-s/procflow/pkg/domain"
)

// ActionSource implements ports.ActionSource over an in-memory map of action sets.
type ActionSource struct {
	mu   sync.RWMutex
	sets map[string][]domain.ActionDescriptor
}

// NewActionSource creates a source seeded with the given sets.
func NewActionSource(sets map[string][]domain.ActionDescriptor) *ActionSource {
	src := &ActionSource{sets: make(map[string][]domain.ActionDescriptor)}
	for id, descs := range sets {
		src.Put(id, descs...)
	}
	return src
}

// Put appends descriptors to an action set.
func (s *ActionSource) Put(actionSetID string, descs ...domain.ActionDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[actionSetID] = append(s.sets[actionSetID], descs...)
}

// ListActions returns a copy of the set's descriptors; unknown sets are empty.
func (s *ActionSource) ListActions(ctx context.Context, actionSetID string) ([]domain.ActionDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ActionDescriptor{}, s.sets[actionSetID]...), nil
}
