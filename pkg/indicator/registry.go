package indicator

import (
	"fmt"
	"sync"

	"github.com/mohamedkhairy/stocklens/internal/models"
)

// Builder produces the column set for one indicator kind
type Builder interface {
	// Kind returns the indicator kind this builder computes
	Kind() models.IndicatorKind

	// MinBars returns the warm-up threshold: the minimum number of bars
	// required before any column position is defined
	MinBars(cfg models.IndicatorConfig) int

	// Compute returns the indicator columns for the given series.
	// Callers must have checked MinBars first; columns are aligned 1:1
	// with the series bars.
	Compute(series *models.Series, cfg models.IndicatorConfig) []Column
}

// Registry maps indicator kinds to their builders
type Registry struct {
	mu       sync.RWMutex
	builders map[models.IndicatorKind]Builder
}

// NewRegistry creates a registry pre-populated with every built-in builder
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[models.IndicatorKind]Builder)}
	for _, b := range []Builder{
		shortMABuilder{}, longMABuilder{}, bollingerBuilder{},
		rsiBuilder{}, macdBuilder{}, atrBuilder{},
	} {
		// Built-ins have unique kinds; Register cannot fail here
		_ = r.Register(b)
	}
	return r
}

// Register adds a builder to the registry
func (r *Registry) Register(b Builder) error {
	if b == nil {
		return fmt.Errorf("builder cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[b.Kind()]; exists {
		return fmt.Errorf("builder for %q already registered", b.Kind())
	}
	r.builders[b.Kind()] = b
	return nil
}

// Get retrieves the builder for a kind
func (r *Registry) Get(kind models.IndicatorKind) (Builder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, exists := r.builders[kind]
	if !exists {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownIndicator, kind)
	}
	return b, nil
}

// Kinds returns the registered indicator kinds
func (r *Registry) Kinds() []models.IndicatorKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]models.IndicatorKind, 0, len(r.builders))
	for kind := range r.builders {
		kinds = append(kinds, kind)
	}
	return kinds
}

type shortMABuilder struct{}

func (shortMABuilder) Kind() models.IndicatorKind { return models.IndicatorMA20 }
func (shortMABuilder) MinBars(cfg models.IndicatorConfig) int {
	return cfg.ShortMAWindow
}
func (shortMABuilder) Compute(s *models.Series, cfg models.IndicatorConfig) []Column {
	return []Column{MovingAverage(s.Closes(), cfg.ShortMAWindow)}
}

type longMABuilder struct{}

func (longMABuilder) Kind() models.IndicatorKind { return models.IndicatorMA50 }
func (longMABuilder) MinBars(cfg models.IndicatorConfig) int {
	return cfg.LongMAWindow
}
func (longMABuilder) Compute(s *models.Series, cfg models.IndicatorConfig) []Column {
	return []Column{MovingAverage(s.Closes(), cfg.LongMAWindow)}
}

type bollingerBuilder struct{}

func (bollingerBuilder) Kind() models.IndicatorKind { return models.IndicatorBB }
func (bollingerBuilder) MinBars(cfg models.IndicatorConfig) int {
	return cfg.BBWindow
}
func (bollingerBuilder) Compute(s *models.Series, cfg models.IndicatorConfig) []Column {
	upper, middle, lower := BollingerBands(s.Closes(), cfg.BBWindow, cfg.BBStdMult)
	return []Column{upper, middle, lower}
}

type rsiBuilder struct{}

func (rsiBuilder) Kind() models.IndicatorKind { return models.IndicatorRSI }
func (rsiBuilder) MinBars(cfg models.IndicatorConfig) int {
	// One extra bar is consumed by the differencing step before the
	// rolling window can start
	return cfg.RSIWindow + 1
}
func (rsiBuilder) Compute(s *models.Series, cfg models.IndicatorConfig) []Column {
	return []Column{RSI(s.Closes(), cfg.RSIWindow)}
}

type macdBuilder struct{}

func (macdBuilder) Kind() models.IndicatorKind { return models.IndicatorMACD }
func (macdBuilder) MinBars(cfg models.IndicatorConfig) int {
	if cfg.MACDMinBars > 0 {
		return cfg.MACDMinBars
	}
	return cfg.MACDLong
}
func (macdBuilder) Compute(s *models.Series, cfg models.IndicatorConfig) []Column {
	macd, signal, hist := MACD(s.Closes(), cfg.MACDShort, cfg.MACDLong, cfg.MACDSignal)
	return []Column{macd, signal, hist}
}

type atrBuilder struct{}

func (atrBuilder) Kind() models.IndicatorKind { return models.IndicatorATR }
func (atrBuilder) MinBars(cfg models.IndicatorConfig) int {
	return cfg.ATRWindow
}
func (atrBuilder) Compute(s *models.Series, cfg models.IndicatorConfig) []Column {
	return []Column{ATR(s.Bars, cfg.ATRWindow)}
}
