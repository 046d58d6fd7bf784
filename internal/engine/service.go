package engine

import (
	"context"
	"time"

	"github.com/mohamedkhairy/stocklens/internal/data"
	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/internal/storage"
	"github.com/mohamedkhairy/stocklens/pkg/logger"
)

// AnalysisService wires the fetch collaborator to the engine. It
// validates the request boundary before any fetch, fetches history,
// optionally archives the raw bars, and runs one analysis pass.
type AnalysisService struct {
	provider data.HistoryProvider
	engine   *Engine
	store    storage.BarStore // optional write-through archive
}

// NewAnalysisService creates an analysis service. store may be nil
// when bar archiving is disabled.
func NewAnalysisService(provider data.HistoryProvider, engine *Engine, store storage.BarStore) *AnalysisService {
	return &AnalysisService{
		provider: provider,
		engine:   engine,
		store:    store,
	}
}

// Analyze fetches history for the request window and computes the
// analysis. Validation failures surface before the provider is called;
// provider failures propagate wrapped in ErrProviderFailure and are
// distinct from an empty result.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.Analysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	series, err := s.provider.FetchBars(ctx, req.Symbol, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	logger.Debug("Fetched history",
		logger.String("symbol", req.Symbol),
		logger.String("provider", s.provider.Name()),
		logger.Int("bars", series.Len()),
		logger.Duration("duration", time.Since(fetchStart)),
	)

	if s.store != nil && series.Len() > 0 {
		// Archive failures are logged, never fatal: the analysis does
		// not depend on the store.
		if err := s.store.SaveBars(ctx, series.Symbol, series.Bars); err != nil {
			logger.Warn("Failed to archive bars",
				logger.String("symbol", req.Symbol),
				logger.ErrorField(err),
			)
		}
	}

	return s.engine.Analyze(ctx, series, req)
}
