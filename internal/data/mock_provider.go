package data

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/mohamedkhairy/stocklens/internal/models"
)

// MockProvider generates deterministic synthetic daily bars. The same
// symbol and window always produce the same series, which makes it
// usable both in tests and as an offline development provider.
type MockProvider struct {
	mu      sync.Mutex
	failErr error
	fetches int
}

// NewMockProvider creates a mock provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name returns the provider type
func (p *MockProvider) Name() string { return "mock" }

// FailWith makes every subsequent fetch fail with the given error,
// wrapped in ErrProviderFailure. Pass nil to restore normal operation.
func (p *MockProvider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failErr = err
}

// Fetches returns the number of FetchBars calls so far
func (p *MockProvider) Fetches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetches
}

// FetchBars generates one bar per weekday in [start, end]
func (p *MockProvider) FetchBars(ctx context.Context, symbol string, start, end time.Time) (*models.Series, error) {
	p.mu.Lock()
	p.fetches++
	failErr := p.failErr
	p.mu.Unlock()

	if failErr != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProviderFailure, failErr)
	}
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProviderFailure, err)
	}

	h := fnv.New32a()
	h.Write([]byte(symbol))
	base := 50 + float64(h.Sum32()%400)

	var bars []models.Bar
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; !day.After(end); i++ {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			// Smooth deterministic wave around the symbol's base price
			c := base + 5*math.Sin(float64(i)/7) + 2*math.Cos(float64(i)/3)
			o := c - 0.5
			bars = append(bars, models.Bar{
				Timestamp: day,
				Open:      o,
				High:      math.Max(o, c) + 1,
				Low:       math.Min(o, c) - 1,
				Close:     c,
				Volume:    1_000_000 + float64(h.Sum32()%100_000),
			})
		}
		day = day.AddDate(0, 0, 1)
	}

	return models.NewSeries(symbol, bars)
}
