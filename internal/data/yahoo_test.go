package data

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/stocklens/internal/config"
	"github.com/mohamedkhairy/stocklens/internal/models"
)

func yahooServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/")
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func yahooProviderFor(server *httptest.Server) *YahooProvider {
	return NewYahooProvider(config.ProviderConfig{
		BaseURL:      server.URL,
		FetchTimeout: 5 * time.Second,
	})
}

func TestYahooProvider_FetchBars(t *testing.T) {
	// Three trading days plus one null (holiday) row
	ts := []int64{1704153600, 1704240000, 1704326400, 1704412800}
	body := fmt.Sprintf(`{
		"chart": {
			"result": [{
				"timestamp": [%d, %d, %d, %d],
				"indicators": {
					"quote": [{
						"open":   [100.0, 102.0, null, 104.0],
						"high":   [101.0, 103.0, null, 105.0],
						"low":    [99.0, 101.0, null, 103.0],
						"close":  [100.5, 102.5, null, 104.5],
						"volume": [1000, 2000, null, 3000]
					}]
				}
			}],
			"error": null
		}
	}`, ts[0], ts[1], ts[2], ts[3])

	server := yahooServer(t, body, http.StatusOK)
	defer server.Close()

	provider := yahooProviderFor(server)
	start := time.Unix(ts[0], 0).UTC()
	end := time.Unix(ts[3], 0).UTC()

	series, err := provider.FetchBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	require.Equal(t, 3, series.Len(), "null bar is skipped")
	require.NoError(t, series.Validate())
	assert.Equal(t, 100.5, series.Bars[0].Close)
	assert.Equal(t, 104.5, series.Bars[2].Close)
	assert.Equal(t, time.Unix(ts[0], 0).UTC(), series.Bars[0].Timestamp)
}

func TestYahooProvider_MarketOpenTimestamps(t *testing.T) {
	// The live chart API stamps daily bars at the session open, not
	// midnight. Bars must come back normalized to the date so a
	// midnight-resolution range filter keeps the end day's bar.
	ts := []int64{1704205800, 1704292200, 1704378600} // 14:30 UTC, Jan 2-4 2024
	body := fmt.Sprintf(`{
		"chart": {
			"result": [{
				"timestamp": [%d, %d, %d],
				"indicators": {
					"quote": [{
						"open":   [100.0, 102.0, 104.0],
						"high":   [101.0, 103.0, 105.0],
						"low":    [99.0, 101.0, 103.0],
						"close":  [100.5, 102.5, 104.5],
						"volume": [1000, 2000, 3000]
					}]
				}
			}],
			"error": null
		}
	}`, ts[0], ts[1], ts[2])

	server := yahooServer(t, body, http.StatusOK)
	defer server.Close()

	provider := yahooProviderFor(server)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	series, err := provider.FetchBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	require.Equal(t, 3, series.Len(), "end day's bar survives the trim")
	for i, bar := range series.Bars {
		want := time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, want, bar.Timestamp, "bar %d normalized to UTC midnight", i)
		assert.True(t, !bar.Timestamp.Before(start) && !bar.Timestamp.After(end))
	}
	assert.Equal(t, 104.5, series.Bars[2].Close)
}

func TestYahooProvider_EmptyResult(t *testing.T) {
	server := yahooServer(t, `{"chart":{"result":[],"error":null}}`, http.StatusOK)
	defer server.Close()

	provider := yahooProviderFor(server)
	series, err := provider.FetchBars(context.Background(), "AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	// Nothing in range is an empty series, not a failure
	require.NoError(t, err)
	assert.Equal(t, 0, series.Len())
	assert.Equal(t, "AAPL", series.Symbol)
}

func TestYahooProvider_APIError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`
	server := yahooServer(t, body, http.StatusOK)
	defer server.Close()

	provider := yahooProviderFor(server)
	_, err := provider.FetchBars(context.Background(), "NOPE",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, models.ErrProviderFailure)
}

func TestYahooProvider_HTTPError(t *testing.T) {
	server := yahooServer(t, `{}`, http.StatusTooManyRequests)
	defer server.Close()

	provider := yahooProviderFor(server)
	_, err := provider.FetchBars(context.Background(), "AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, models.ErrProviderFailure)
}

func TestYahooProvider_BadJSON(t *testing.T) {
	server := yahooServer(t, `{not json`, http.StatusOK)
	defer server.Close()

	provider := yahooProviderFor(server)
	_, err := provider.FetchBars(context.Background(), "AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, models.ErrProviderFailure)
}

func TestYahooProvider_EmptySymbol(t *testing.T) {
	provider := NewYahooProvider(config.ProviderConfig{})
	_, err := provider.FetchBars(context.Background(), "",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, models.ErrInvalidSymbol)
}
