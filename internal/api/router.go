package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouterConfig holds the handlers and middleware parameters for the
// REST surface
type RouterConfig struct {
	Analysis     *AnalysisHandler
	Tickers      *TickerHandler
	Auth         *AuthManager
	RateLimitRPS int

	// Stream, when set, is mounted at /ws
	Stream http.Handler
}

// NewRouter builds the mux router with the standard middleware chain
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()

	chain := ChainMiddleware(
		RecoveryMiddleware(),
		RequestIDMiddleware(),
		LoggingMiddleware(),
		CORSMiddleware(),
		RateLimitMiddleware(cfg.RateLimitRPS),
		AuthMiddleware(cfg.Auth),
	)
	router.Use(mux.MiddlewareFunc(chain))

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/analysis/{symbol}", cfg.Analysis.GetAnalysis).Methods(http.MethodGet)
	v1.HandleFunc("/analysis/{symbol}/export", cfg.Analysis.ExportAnalysis).Methods(http.MethodGet)
	v1.HandleFunc("/tickers", cfg.Tickers.ListTickers).Methods(http.MethodGet)

	if cfg.Stream != nil {
		router.Handle("/ws", cfg.Stream)
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return router
}
