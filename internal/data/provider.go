// Package data supplies OHLCV history to the engine. Providers are the
// fetch collaborators of the pipeline: they either return a valid,
// time-ordered series (possibly empty) or fail with an error wrapping
// models.ErrProviderFailure. The two conditions stay distinct so the
// caller can tell "provider broke" from "nothing in range".
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/mohamedkhairy/stocklens/internal/config"
	"github.com/mohamedkhairy/stocklens/internal/models"
)

// HistoryProvider fetches daily bars for a symbol and date range
type HistoryProvider interface {
	// FetchBars returns the series of daily bars with
	// start <= timestamp <= end, ordered by timestamp. An empty series
	// is a valid result; failures wrap models.ErrProviderFailure.
	FetchBars(ctx context.Context, symbol string, start, end time.Time) (*models.Series, error)

	// Name returns the provider type (e.g. "yahoo", "mock")
	Name() string
}

// Factory creates provider instances by type
type Factory struct {
	factories map[string]func(config.ProviderConfig) (HistoryProvider, error)
}

// NewFactory creates a factory with the built-in providers registered
func NewFactory() *Factory {
	f := &Factory{
		factories: make(map[string]func(config.ProviderConfig) (HistoryProvider, error)),
	}
	f.factories["yahoo"] = func(cfg config.ProviderConfig) (HistoryProvider, error) {
		return NewYahooProvider(cfg), nil
	}
	f.factories["mock"] = func(cfg config.ProviderConfig) (HistoryProvider, error) {
		return NewMockProvider(), nil
	}
	return f
}

// Register adds a custom provider constructor
func (f *Factory) Register(providerType string, fn func(config.ProviderConfig) (HistoryProvider, error)) error {
	if _, exists := f.factories[providerType]; exists {
		return fmt.Errorf("provider type already registered: %s", providerType)
	}
	f.factories[providerType] = fn
	return nil
}

// Create builds a provider of the given type
func (f *Factory) Create(providerType string, cfg config.ProviderConfig) (HistoryProvider, error) {
	fn, exists := f.factories[providerType]
	if !exists {
		return nil, fmt.Errorf("unknown provider type: %s", providerType)
	}
	return fn(cfg)
}
