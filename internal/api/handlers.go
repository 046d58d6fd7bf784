package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mohamedkhairy/stocklens/internal/engine"
	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/internal/universe"
	"github.com/mohamedkhairy/stocklens/pkg/logger"
)

const dateLayout = "2006-01-02"

// AnalysisHandler serves indicator analyses over HTTP
type AnalysisHandler struct {
	service    *engine.AnalysisService
	defaultCfg models.IndicatorConfig
}

// NewAnalysisHandler creates an analysis handler
func NewAnalysisHandler(service *engine.AnalysisService, defaultCfg models.IndicatorConfig) *AnalysisHandler {
	return &AnalysisHandler{service: service, defaultCfg: defaultCfg}
}

// analysisResponse mirrors models.Analysis with JSON-safe columns:
// undefined positions become null instead of NaN, which encoding/json
// cannot emit.
type analysisResponse struct {
	Symbol       string                          `json:"symbol"`
	Bars         []models.Bar                    `json:"bars"`
	Columns      map[string][]*float64           `json:"columns"`
	Levels       []float64                       `json:"levels"`
	Summary      models.SummaryMetrics           `json:"summary"`
	Insufficient []*models.InsufficientDataError `json:"insufficient,omitempty"`
	MinimalView  bool                            `json:"minimal_view"`
	ComputedAt   time.Time                       `json:"computed_at"`
}

func toResponse(a *models.Analysis) *analysisResponse {
	resp := &analysisResponse{
		Symbol:       a.Symbol,
		Bars:         a.Series.Bars,
		Columns:      make(map[string][]*float64, len(a.Columns)),
		Levels:       a.Levels,
		Summary:      a.Summary,
		Insufficient: a.Insufficient,
		MinimalView:  a.MinimalView,
		ComputedAt:   a.ComputedAt,
	}
	if resp.Levels == nil {
		resp.Levels = []float64{}
	}
	for name, values := range a.Columns {
		resp.Columns[name] = models.NaNToNull(values)
	}
	return resp
}

// GetAnalysis handles GET /api/v1/analysis/{symbol}
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		respondAnalysisError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toResponse(analysis))
}

func respondAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidRange),
		errors.Is(err, models.ErrInvalidSymbol),
		errors.Is(err, models.ErrInvalidWindow),
		errors.Is(err, models.ErrUnknownIndicator):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNoDataInRange):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrProviderFailure):
		logger.Error("Provider failure", logger.ErrorField(err))
		respondWithError(w, http.StatusBadGateway, "market data provider failure")
	default:
		logger.Error("Analysis failed", logger.ErrorField(err))
		respondWithError(w, http.StatusInternalServerError, "analysis failed")
	}
}

func (h *AnalysisHandler) parseRequest(r *http.Request) (models.AnalysisRequest, error) {
	vars := mux.Vars(r)
	query := r.URL.Query()

	req := models.AnalysisRequest{
		Symbol: strings.ToUpper(strings.TrimSpace(vars["symbol"])),
		Config: h.defaultCfg,
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	req.End = now
	req.Start = now.AddDate(-1, 0, 0)

	if v := query.Get("start"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return req, models.ErrInvalidRange
		}
		req.Start = t
	}
	if v := query.Get("end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return req, models.ErrInvalidRange
		}
		req.End = t
	}

	if v := query.Get("indicators"); v != "" {
		for _, token := range strings.Split(v, ",") {
			kind, err := models.ParseIndicatorKind(strings.TrimSpace(strings.ToLower(token)))
			if err != nil {
				return req, err
			}
			req.Indicators = append(req.Indicators, kind)
		}
	} else {
		req.Indicators = models.AllIndicators()
	}

	// Optional window overrides
	intOverrides := map[string]*int{
		"ma_short":      &req.Config.ShortMAWindow,
		"ma_long":       &req.Config.LongMAWindow,
		"bb_window":     &req.Config.BBWindow,
		"rsi_window":    &req.Config.RSIWindow,
		"macd_min_bars": &req.Config.MACDMinBars,
	}
	for param, target := range intOverrides {
		if v := query.Get(param); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return req, models.ErrInvalidWindow
			}
			*target = n
		}
	}
	if v := query.Get("bb_mult"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return req, models.ErrInvalidWindow
		}
		req.Config.BBStdMult = f
	}

	return req, req.Validate()
}

// TickerHandler serves the ticker universe
type TickerHandler struct {
	tickers []universe.Ticker
}

// NewTickerHandler creates a ticker handler over a loaded universe
func NewTickerHandler(tickers []universe.Ticker) *TickerHandler {
	return &TickerHandler{tickers: tickers}
}

// ListTickers handles GET /api/v1/tickers
func (h *TickerHandler) ListTickers(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"tickers": h.tickers,
		"count":   len(h.tickers),
	})
}
