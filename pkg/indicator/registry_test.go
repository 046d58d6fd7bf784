package indicator

import (
	"testing"
	"time"

	"github.com/mohamedkhairy/stocklens/internal/models"
)

func testSeries(t *testing.T, n int, close func(i int) float64) *models.Series {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := close(i)
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	s, err := models.NewSeries("TEST", bars)
	if err != nil {
		t.Fatalf("Failed to build series: %v", err)
	}
	return s
}

func TestRegistry_AllKindsRegistered(t *testing.T) {
	r := NewRegistry()
	for _, kind := range models.AllIndicators() {
		if _, err := r.Get(kind); err != nil {
			t.Errorf("Expected builder for %s, got error: %v", kind, err)
		}
	}
}

func TestRegistry_UnknownKind(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get(models.IndicatorKind("vwap")); err == nil {
		t.Error("Expected error for unregistered kind")
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(rsiBuilder{}); err == nil {
		t.Error("Expected error when re-registering a kind")
	}
}

func TestBuilders_MinBars(t *testing.T) {
	cfg := models.DefaultIndicatorConfig()
	r := NewRegistry()

	want := map[models.IndicatorKind]int{
		models.IndicatorMA20: 20,
		models.IndicatorMA50: 50,
		models.IndicatorBB:   20,
		models.IndicatorRSI:  15, // window + 1 for the differencing step
		models.IndicatorMACD: 26,
		models.IndicatorATR:  14,
	}
	for kind, expected := range want {
		b, err := r.Get(kind)
		if err != nil {
			t.Fatalf("Get(%s): %v", kind, err)
		}
		if got := b.MinBars(cfg); got != expected {
			t.Errorf("%s: expected MinBars %d, got %d", kind, expected, got)
		}
	}
}

func TestBuilders_MACDMinBarsConfigurable(t *testing.T) {
	cfg := models.DefaultIndicatorConfig()
	cfg.MACDMinBars = 35 // stricter cutoff: long EMA plus signal warm-up

	b, err := NewRegistry().Get(models.IndicatorMACD)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := b.MinBars(cfg); got != 35 {
		t.Errorf("Expected configurable MACD cutoff 35, got %d", got)
	}
}

func TestBuilders_ColumnAlignment(t *testing.T) {
	cfg := models.DefaultIndicatorConfig()
	series := testSeries(t, 60, func(i int) float64 { return 100 + float64(i%7) })
	r := NewRegistry()

	for _, kind := range models.AllIndicators() {
		b, err := r.Get(kind)
		if err != nil {
			t.Fatalf("Get(%s): %v", kind, err)
		}
		for _, col := range b.Compute(series, cfg) {
			if len(col.Values) != series.Len() {
				t.Errorf("%s column %s: expected length %d, got %d",
					kind, col.Name, series.Len(), len(col.Values))
			}
			if col.Name == "" {
				t.Errorf("%s: column has no name", kind)
			}
		}
	}
}

func TestATR_UndefinedPrefix(t *testing.T) {
	series := testSeries(t, 30, func(i int) float64 { return 100 + float64(i%4) })
	col := ATR(series.Bars, 14)

	for i := 0; i < 13; i++ {
		if IsDefined(col.Values[i]) {
			t.Errorf("Index %d: expected NaN before full window", i)
		}
	}
	if !IsDefined(col.Values[29]) {
		t.Error("Expected ATR defined once window filled")
	}
	if col.Values[29] < 0 {
		t.Errorf("ATR cannot be negative, got %f", col.Values[29])
	}
}

func TestColumn_LastDefined(t *testing.T) {
	col := MovingAverage([]float64{1, 2, 3, 4, 5, 6}, 3)
	v, ok := col.LastDefined()
	if !ok {
		t.Fatal("Expected a defined value")
	}
	if !almostEqual(v, 5) {
		t.Errorf("Expected 5, got %f", v)
	}

	empty := MovingAverage([]float64{1, 2}, 10)
	if _, ok := empty.LastDefined(); ok {
		t.Error("Expected no defined value for short series")
	}
}
