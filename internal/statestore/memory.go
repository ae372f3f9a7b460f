package statestore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/Eugenepoly/market-agent/pkg/types"
)

// MemoryStore is an in-memory Store for development and testing.
// Documents are deep-copied on the way in and out, so callers cannot
// mutate stored state through retained pointers.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*types.WorkflowContext
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*types.WorkflowContext)}
}

func cloneContext(wc *types.WorkflowContext) *types.WorkflowContext {
	data, err := json.Marshal(wc)
	if err != nil {
		return nil
	}
	var out types.WorkflowContext
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return &out
}

func (s *MemoryStore) Put(ctx context.Context, wc *types.WorkflowContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[wc.ID] = cloneContext(wc)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*types.WorkflowContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wc, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneContext(wc), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*types.WorkflowContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.WorkflowContext, 0, len(s.runs))
	for _, wc := range s.runs {
		out = append(out, cloneContext(wc))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return ErrNotFound
	}
	delete(s.runs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
