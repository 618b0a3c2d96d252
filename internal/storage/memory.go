package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"mamdani/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	evaluations []model.EvaluationRecord
	index       map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.evaluations = nil
	s.index = make(map[string]int)
	return nil
}

func (s *MemoryStore) SaveEvaluation(_ context.Context, record model.EvaluationRecord) error {
	if err := checkVersion(record.VersionedRecord); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	copied := record.Clone()
	if pos, ok := s.index[record.ID]; ok {
		s.evaluations[pos] = copied
		return nil
	}
	s.index[record.ID] = len(s.evaluations)
	s.evaluations = append(s.evaluations, copied)
	return nil
}

func (s *MemoryStore) GetEvaluation(_ context.Context, id string) (model.EvaluationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return model.EvaluationRecord{}, false, nil
	}
	return s.evaluations[pos].Clone(), true, nil
}

func (s *MemoryStore) ListEvaluations(_ context.Context, profile string, limit int) ([]model.EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	out := make([]model.EvaluationRecord, 0, len(s.evaluations))
	for i := len(s.evaluations) - 1; i >= 0; i-- {
		record := s.evaluations[i]
		if profile != "" && record.Profile != profile {
			continue
		}
		out = append(out, record.Clone())
	}
	// later inserts win ties on timestamp
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
