package data

import (
	"context"
	"fmt"
	"time"

	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/internal/storage"
)

// StoreProvider serves history from the bar archive instead of a live
// API, for offline or replayed analysis.
type StoreProvider struct {
	store storage.BarStore
}

// NewStoreProvider creates a provider backed by a BarStore
func NewStoreProvider(store storage.BarStore) *StoreProvider {
	return &StoreProvider{store: store}
}

// Name returns the provider type
func (p *StoreProvider) Name() string { return "postgres" }

// FetchBars loads archived bars for [start, end]
func (p *StoreProvider) FetchBars(ctx context.Context, symbol string, start, end time.Time) (*models.Series, error) {
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}
	bars, err := p.store.LoadBars(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProviderFailure, err)
	}
	return models.NewSeries(symbol, bars)
}
