package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/trade_journal/internal/domain"
)

// MemoryStore keeps datasets in a map for the process lifetime. Entries are
// only ever inserted, never replaced or removed.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]*domain.Dataset
	order    []string

	timeNow func() time.Time
	newID   func() string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		datasets: make(map[string]*domain.Dataset),
		timeNow:  time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

func (s *MemoryStore) Create(ctx context.Context, content domain.DatasetContent) (*domain.Dataset, error) {
	ds := newDataset(s.newID(), s.timeNow(), content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[ds.ID] = ds
	s.order = append(s.order, ds.ID)
	return ds, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	if !ok {
		return nil, domain.ErrDatasetNotFound
	}
	return ds, nil
}

func (s *MemoryStore) ListIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids, nil
}

// newDataset copies the content slices so later changes by the caller cannot
// reach the stored snapshot.
func newDataset(id string, createdAt time.Time, content domain.DatasetContent) *domain.Dataset {
	return &domain.Dataset{
		ID:        id,
		CreatedAt: createdAt,
		Trades:    append(make([]domain.Trade, 0, len(content.Trades)), content.Trades...),
		Columns:   append(make([]string, 0, len(content.Columns)), content.Columns...),
		Warnings:  append(make([]string, 0, len(content.Warnings)), content.Warnings...),
	}
}
