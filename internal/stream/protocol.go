// Package stream pushes refreshed analyses to WebSocket subscribers.
// Clients subscribe per symbol; the refresh scheduler hands completed
// analyses to the hub, which fans them out.
package stream

import (
	"time"

	"github.com/mohamedkhairy/stocklens/internal/models"
)

// Client message actions
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionPing        = "ping"
)

// Server message types
const (
	TypeAnalysis     = "analysis"
	TypeSubscribed   = "subscribed"
	TypeUnsubscribed = "unsubscribed"
	TypeError        = "error"
	TypePong         = "pong"
)

// ClientMessage is a message from a client
type ClientMessage struct {
	Action string `json:"action"`
	Symbol string `json:"symbol,omitempty"`
}

// ServerMessage is a message to a client
type ServerMessage struct {
	Type    string           `json:"type"`
	Symbol  string           `json:"symbol,omitempty"`
	Message string           `json:"message,omitempty"`
	Payload *AnalysisPayload `json:"payload,omitempty"`
}

// AnalysisPayload is the JSON-safe projection of an analysis pushed to
// subscribers
type AnalysisPayload struct {
	Symbol       string                          `json:"symbol"`
	Bars         []models.Bar                    `json:"bars"`
	Columns      map[string][]*float64           `json:"columns"`
	Levels       []float64                       `json:"levels"`
	Summary      models.SummaryMetrics           `json:"summary"`
	Insufficient []*models.InsufficientDataError `json:"insufficient,omitempty"`
	MinimalView  bool                            `json:"minimal_view"`
	ComputedAt   time.Time                       `json:"computed_at"`
}

// NewAnalysisPayload converts an analysis for transport
func NewAnalysisPayload(a *models.Analysis) *AnalysisPayload {
	p := &AnalysisPayload{
		Symbol:       a.Symbol,
		Bars:         a.Series.Bars,
		Columns:      make(map[string][]*float64, len(a.Columns)),
		Levels:       a.Levels,
		Summary:      a.Summary,
		Insufficient: a.Insufficient,
		MinimalView:  a.MinimalView,
		ComputedAt:   a.ComputedAt,
	}
	if p.Levels == nil {
		p.Levels = []float64{}
	}
	for name, values := range a.Columns {
		p.Columns[name] = models.NaNToNull(values)
	}
	return p
}
