// Package refresh re-runs analyses on a cron schedule and pushes the
// results to WebSocket subscribers. The engine itself stays pull-based
// and stateless; this is the host-side polling collaborator.
package refresh

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mohamedkhairy/stocklens/internal/config"
	"github.com/mohamedkhairy/stocklens/internal/engine"
	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/internal/stream"
	"github.com/mohamedkhairy/stocklens/pkg/logger"
)

// Refresher schedules periodic re-analysis of tracked symbols
type Refresher struct {
	cron       *cron.Cron
	service    *engine.AnalysisService
	hub        *stream.Hub
	lookback   time.Duration
	defaultCfg models.IndicatorConfig

	mu      sync.RWMutex
	symbols map[string]struct{}
}

// New creates a refresher tracking the configured symbols
func New(service *engine.AnalysisService, hub *stream.Hub, cfg config.RefreshConfig, indicatorCfg models.IndicatorConfig) *Refresher {
	r := &Refresher{
		cron:       cron.New(cron.WithSeconds()),
		service:    service,
		hub:        hub,
		lookback:   cfg.Lookback,
		defaultCfg: indicatorCfg,
		symbols:    make(map[string]struct{}),
	}
	for _, s := range cfg.Symbols {
		r.symbols[s] = struct{}{}
	}
	return r
}

// Track adds a symbol to the refresh set
func (r *Refresher) Track(symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symbols[symbol] = struct{}{}
}

// Tracked returns the sorted refresh set, merged with the hub's live
// subscriptions
func (r *Refresher) Tracked() []string {
	set := make(map[string]struct{})
	r.mu.RLock()
	for s := range r.symbols {
		set[s] = struct{}{}
	}
	r.mu.RUnlock()

	if r.hub != nil {
		for _, s := range r.hub.SubscribedSymbols() {
			set[s] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Start registers the cron entry and starts the scheduler
func (r *Refresher) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.RefreshAll); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	r.cron.Start()
	logger.Info("Refresh scheduler started", logger.String("cron", spec))
	return nil
}

// Stop stops the scheduler and waits for a running pass to finish
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	logger.Info("Refresh scheduler stopped")
}

// RefreshAll analyzes every tracked symbol once and broadcasts the
// results. Per-symbol failures are logged and do not stop the pass.
func (r *Refresher) RefreshAll() {
	symbols := r.Tracked()
	if len(symbols) == 0 {
		return
	}

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.Add(-r.lookback)

	for _, symbol := range symbols {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		analysis, err := r.service.Analyze(ctx, models.AnalysisRequest{
			Symbol:     symbol,
			Start:      start,
			End:        end,
			Indicators: models.AllIndicators(),
			Config:     r.defaultCfg,
		})
		cancel()
		if err != nil {
			logger.Warn("Refresh failed",
				logger.String("symbol", symbol),
				logger.ErrorField(err),
			)
			continue
		}
		if r.hub != nil {
			r.hub.Broadcast(analysis)
		}
	}
}
