// Package engine filters an OHLCV series to the requested window,
// decides which indicators have enough data, computes the survivors in
// parallel, and aggregates confluence levels and summary statistics
// into one Analysis record. The engine is pure and stateless between
// invocations; concurrent analyses need no coordination.
package engine

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/pkg/indicator"
	"github.com/mohamedkhairy/stocklens/pkg/logger"
)

var (
	analysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_analysis_duration_seconds",
			Help:    "Duration of one full analysis pass",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	indicatorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_indicator_duration_seconds",
			Help:    "Duration of a single indicator computation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"indicator"},
	)

	insufficientTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_insufficient_data_total",
			Help: "Indicators skipped because the series was below their warm-up threshold",
		},
		[]string{"indicator"},
	)

	minimalViewTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_minimal_view_total",
			Help: "Analyses that fell back to minimal point display",
		},
	)
)

// Engine computes analyses from bar series
type Engine struct {
	registry *indicator.Registry
}

// New creates an engine with the built-in indicator registry
func New() *Engine {
	return &Engine{registry: indicator.NewRegistry()}
}

// NewWithRegistry creates an engine with a custom registry
func NewWithRegistry(registry *indicator.Registry) *Engine {
	return &Engine{registry: registry}
}

// Analyze runs one computation pass: filter the series to the requested
// window, check per-indicator sufficiency, compute the eligible
// indicators in parallel, then aggregate confluence levels and summary
// statistics. The input series is never mutated.
func (e *Engine) Analyze(ctx context.Context, series *models.Series, req models.AnalysisRequest) (*models.Analysis, error) {
	start := time.Now()
	defer func() {
		analysisDuration.Observe(time.Since(start).Seconds())
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	filtered := series.Slice(req.Start, req.End)
	if filtered.Len() == 0 {
		return nil, models.ErrNoDataInRange
	}

	summary, err := Summarize(filtered)
	if err != nil {
		return nil, err
	}

	analysis := &models.Analysis{
		Symbol:     filtered.Symbol,
		Series:     filtered,
		Columns:    make(map[string][]float64),
		Summary:    summary,
		ComputedAt: time.Now().UTC(),
	}

	// Below the minimal-view threshold no indicator output is
	// meaningful; expose raw closes only and skip computation entirely.
	if filtered.Len() < req.Config.MinimalViewBars {
		minimalViewTotal.Inc()
		analysis.MinimalView = true
		analysis.Levels = []float64{}
		for _, kind := range req.Indicators {
			builder, err := e.registry.Get(kind)
			if err != nil {
				return nil, err
			}
			analysis.Insufficient = append(analysis.Insufficient, &models.InsufficientDataError{
				Indicator: string(kind),
				Required:  builder.MinBars(req.Config),
				Available: filtered.Len(),
			})
		}
		logger.Debug("Minimal view fallback",
			logger.String("symbol", filtered.Symbol),
			logger.Int("bars", filtered.Len()),
		)
		return analysis, nil
	}

	// Sufficiency gate: an indicator below its threshold is not
	// computed at all, its column is absent, and the caller is told why.
	var eligible []indicator.Builder
	for _, kind := range req.Indicators {
		builder, err := e.registry.Get(kind)
		if err != nil {
			return nil, err
		}
		if required := builder.MinBars(req.Config); filtered.Len() < required {
			insufficientTotal.WithLabelValues(string(kind)).Inc()
			analysis.Insufficient = append(analysis.Insufficient, &models.InsufficientDataError{
				Indicator: string(kind),
				Required:  required,
				Available: filtered.Len(),
			})
			continue
		}
		eligible = append(eligible, builder)
	}

	// Indicator computations are mutually independent given the
	// filtered series; fan out and join before aggregating confluence.
	results := make([][]indicator.Column, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	for i, builder := range eligible {
		i, builder := i, builder
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			computeStart := time.Now()
			results[i] = builder.Compute(filtered, req.Config)
			indicatorDuration.WithLabelValues(string(builder.Kind())).
				Observe(time.Since(computeStart).Seconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var columns []indicator.Column
	for _, cols := range results {
		for _, col := range cols {
			columns = append(columns, col)
			analysis.Columns[col.Name] = col.Values
		}
	}

	analysis.Levels = ConfluenceLevels(columns, filtered.Closes())
	return analysis, nil
}
