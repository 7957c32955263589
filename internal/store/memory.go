package store

import (
	"context"
	"sync"

	"github.com/vagabot/vagabot/internal/model"
)

// Ensure MemoryStore implements model.JobStore.
var _ model.JobStore = (*MemoryStore)(nil)

// MemoryStore keeps records in process memory. It backs dry runs, where
// nothing may outlive the process, and tests.
type MemoryStore struct {
	mu      sync.Mutex
	created bool
	records []model.Record
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Created(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created, nil
}

func (s *MemoryStore) MarkCreated(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = true
	return nil
}

func (s *MemoryStore) Search(_ context.Context, f model.Fragment) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Record
	for _, r := range s.records {
		if f.Matches(r) {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, r model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, clone(r))
	return nil
}

func (s *MemoryStore) Update(_ context.Context, f model.Fragment, r model.Record) (int, error) {
	if len(f) == 0 {
		return 0, ErrEmptyFragment
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i, cur := range s.records {
		if f.Matches(cur) {
			s.records[i] = clone(r)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Remove(_ context.Context, f model.Fragment) (int, error) {
	if len(f) == 0 {
		return 0, ErrEmptyFragment
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	n := 0
	for _, cur := range s.records {
		if f.Matches(cur) {
			n++
			continue
		}
		kept = append(kept, cur)
	}
	s.records = kept
	return n, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func clone(r model.Record) model.Record {
	c := make(model.Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}
