package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/stocklens/internal/data"
	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/internal/storage"
)

func serviceRequest(symbol string) models.AnalysisRequest {
	return models.AnalysisRequest{
		Symbol:     symbol,
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
		Indicators: models.AllIndicators(),
		Config:     models.DefaultIndicatorConfig(),
	}
}

func TestService_Analyze(t *testing.T) {
	provider := data.NewMockProvider()
	service := NewAnalysisService(provider, New(), nil)

	analysis, err := service.Analyze(context.Background(), serviceRequest("AAPL"))
	require.NoError(t, err)

	assert.Equal(t, "AAPL", analysis.Symbol)
	assert.Empty(t, analysis.Insufficient)
	assert.Contains(t, analysis.Columns, "ma_50")
	assert.Equal(t, 1, provider.Fetches())
}

func TestService_ValidationBeforeFetch(t *testing.T) {
	provider := data.NewMockProvider()
	service := NewAnalysisService(provider, New(), nil)

	req := serviceRequest("AAPL")
	req.Start, req.End = req.End, req.Start

	_, err := service.Analyze(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrInvalidRange)
	assert.Equal(t, 0, provider.Fetches(), "invalid requests must not reach the provider")
}

func TestService_ProviderFailure(t *testing.T) {
	provider := data.NewMockProvider()
	provider.FailWith(errors.New("connection refused"))
	service := NewAnalysisService(provider, New(), nil)

	_, err := service.Analyze(context.Background(), serviceRequest("AAPL"))
	assert.ErrorIs(t, err, models.ErrProviderFailure)
}

func TestService_EmptyFetchIsNoData(t *testing.T) {
	provider := data.NewMockProvider()
	service := NewAnalysisService(provider, New(), nil)

	// A single Saturday: the mock generates weekday bars only, so the
	// fetch succeeds with an empty series
	req := serviceRequest("AAPL")
	req.Start = time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	req.End = req.Start

	_, err := service.Analyze(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrNoDataInRange)
	assert.Equal(t, 1, provider.Fetches())
}

func TestService_ArchivesFetchedBars(t *testing.T) {
	provider := data.NewMockProvider()
	store := storage.NewMemoryBarStore()
	service := NewAnalysisService(provider, New(), store)

	analysis, err := service.Analyze(context.Background(), serviceRequest("MSFT"))
	require.NoError(t, err)

	assert.Equal(t, analysis.Series.Len(), store.Count("MSFT"))
}

func TestService_ArchiveFailureNotFatal(t *testing.T) {
	provider := data.NewMockProvider()
	store := storage.NewMemoryBarStore()
	store.FailWith = errors.New("db down")
	service := NewAnalysisService(provider, New(), store)

	analysis, err := service.Analyze(context.Background(), serviceRequest("MSFT"))
	require.NoError(t, err)
	assert.NotNil(t, analysis)
}
