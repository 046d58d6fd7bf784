package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mohamedkhairy/stocklens/internal/models"
)

// MemoryBarStore is an in-memory BarStore for tests and development
type MemoryBarStore struct {
	mu   sync.RWMutex
	bars map[string]map[int64]models.Bar // symbol -> unix ts -> bar

	// FailWith, when set, is returned from every operation
	FailWith error
}

// NewMemoryBarStore creates an empty in-memory store
func NewMemoryBarStore() *MemoryBarStore {
	return &MemoryBarStore{bars: make(map[string]map[int64]models.Bar)}
}

// SaveBars upserts bars for a symbol
func (s *MemoryBarStore) SaveBars(ctx context.Context, symbol string, bars []models.Bar) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bars[symbol] == nil {
		s.bars[symbol] = make(map[int64]models.Bar)
	}
	for _, bar := range bars {
		s.bars[symbol][bar.Timestamp.Unix()] = bar
	}
	return nil
}

// LoadBars returns bars within [start, end] ordered by timestamp
func (s *MemoryBarStore) LoadBars(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Bar
	for _, bar := range s.bars[symbol] {
		if bar.Timestamp.Before(start) || bar.Timestamp.After(end) {
			continue
		}
		out = append(out, bar)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Count returns the number of stored bars for a symbol
func (s *MemoryBarStore) Count(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bars[symbol])
}

// Close is a no-op
func (s *MemoryBarStore) Close() error { return nil }
