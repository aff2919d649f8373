package storage

import (
	"context"
	"fmt"
	"sync"

	"trustregistry/internal/domain"
)

// MemoryStore keeps records in a mutex-guarded map. It backs tests and
// local runs and intentionally favors clarity over performance.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.TrustRecordQuery]domain.TrustRecord
}

// NewMemoryStore returns an empty in-memory repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[domain.TrustRecordQuery]domain.TrustRecord)}
}

func (s *MemoryStore) Create(_ context.Context, record domain.TrustRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := record.Query()
	if _, ok := s.records[key]; ok {
		return fmt.Errorf("%w: %s", ErrRecordAlreadyExists, key)
	}
	s.records[key] = record
	return nil
}

func (s *MemoryStore) Update(_ context.Context, record domain.TrustRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := record.Query()
	if _, ok := s.records[key]; !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	s.records[key] = record
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, query domain.TrustRecordQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[query]; !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, query)
	}
	delete(s.records, query)
	return nil
}

func (s *MemoryStore) Read(_ context.Context, query domain.TrustRecordQuery) (domain.TrustRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[query]
	if !ok {
		return domain.TrustRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, query)
	}
	return record, nil
}

func (s *MemoryStore) List(_ context.Context) ([]domain.TrustRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.TrustRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	return records, nil
}

func (s *MemoryStore) FindByQuery(_ context.Context, query domain.TrustRecordQuery) (*domain.TrustRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[query]
	if !ok {
		return nil, nil
	}
	return &record, nil
}
