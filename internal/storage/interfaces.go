package storage

import (
	"context"
	"time"

	"github.com/mohamedkhairy/stocklens/internal/models"
)

// BarStore archives raw daily bars and serves them back for offline
// analysis. Computed indicators are never persisted.
type BarStore interface {
	// SaveBars upserts bars for a symbol
	SaveBars(ctx context.Context, symbol string, bars []models.Bar) error

	// LoadBars returns bars with start <= timestamp <= end, ordered by
	// timestamp
	LoadBars(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error)

	// Close releases the underlying connections
	Close() error
}
