package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedkhairy/stocklens/internal/config"
	"github.com/mohamedkhairy/stocklens/internal/models"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

var (
	providerFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_fetch_total",
			Help: "Total history fetches by provider and status",
		},
		[]string{"provider", "status"},
	)

	providerFetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_fetch_latency_seconds",
			Help:    "History fetch latency by provider",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"provider"},
	)
)

// YahooProvider fetches daily bars from the Yahoo Finance v8 chart API
type YahooProvider struct {
	client  *http.Client
	baseURL string
}

// NewYahooProvider creates a Yahoo Finance provider
func NewYahooProvider(cfg config.ProviderConfig) *YahooProvider {
	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		if u, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	return &YahooProvider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL: baseURL,
	}
}

// Name returns the provider type
func (p *YahooProvider) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
// Quote columns arrive as interface{} because null marks holiday bars.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// dayOf truncates a timestamp to UTC midnight. Yahoo stamps daily bars
// at the session open; the series contract is date resolution.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// FetchBars fetches daily bars for [start, end]
func (p *YahooProvider) FetchBars(ctx context.Context, symbol string, start, end time.Time) (*models.Series, error) {
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}

	fetchStart := time.Now()
	series, err := p.fetchChart(ctx, symbol, start, end)
	providerFetchLatency.WithLabelValues(p.Name()).Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		providerFetchTotal.WithLabelValues(p.Name(), "error").Inc()
		return nil, err
	}
	providerFetchTotal.WithLabelValues(p.Name(), "success").Inc()
	return series, nil
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol string, start, end time.Time) (*models.Series, error) {
	// period2 is exclusive on the API side; pad one day so the end date
	// itself is included
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		p.baseURL, url.PathEscape(symbol), start.Unix(), end.AddDate(0, 0, 1).Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", models.ErrProviderFailure, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo fetch: %v", models.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo read body: %v", models.ErrProviderFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: yahoo status %d", models.ErrProviderFailure, resp.StatusCode)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: yahoo decode: %v", models.ErrProviderFailure, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo api error %s: %s",
			models.ErrProviderFailure, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}

	// No result rows is an empty fetch, not a provider failure
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return &models.Series{Symbol: symbol}, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return &models.Series{Symbol: symbol}, nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bar (holiday etc.)
		}
		bars = append(bars, models.Bar{
			Timestamp: dayOf(time.Unix(ts, 0)),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    toFloat(quote.Volume[i]),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })

	// Trim to the requested window client-side; the API pads by range
	startDay, endDay := dayOf(start), dayOf(end)
	trimmed := bars[:0]
	for _, bar := range bars {
		if bar.Timestamp.Before(startDay) || bar.Timestamp.After(endDay) {
			continue
		}
		trimmed = append(trimmed, bar)
	}

	series, err := models.NewSeries(symbol, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo returned invalid series: %v", models.ErrProviderFailure, err)
	}
	return series, nil
}
