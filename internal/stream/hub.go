package stream

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mohamedkhairy/stocklens/internal/api"
	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/pkg/logger"
)

// Hub manages WebSocket connections and fans refreshed analyses out to
// their subscribers
type Hub struct {
	auth     *api.AuthManager
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	connections map[string]*Connection
}

// NewHub creates a hub
func NewHub(auth *api.AuthManager) *Hub {
	return &Hub{
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Same posture as the REST CORS middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		connections: make(map[string]*Connection),
	}
}

// ServeHTTP upgrades the request and runs the connection pumps
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if header := r.Header.Get("Authorization"); header != "" {
			if t, err := h.auth.ExtractTokenFromHeader(header); err == nil {
				token = t
			}
		}
	}
	userID, err := h.auth.ValidateToken(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", logger.ErrorField(err))
		return
	}

	conn := NewConnection(uuid.New().String(), userID, ws)
	h.register(conn)

	logger.Info("WebSocket connected",
		logger.String("connection_id", conn.ID),
		logger.String("user_id", userID),
	)

	go h.writePump(conn)
	go h.readPump(conn)
}

func (h *Hub) register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn.ID] = conn
}

func (h *Hub) unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.connections[conn.ID]; exists {
		delete(h.connections, conn.ID)
		conn.Close()
	}
}

// ConnectionCount returns the number of active connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// SubscribedSymbols returns the union of all client subscriptions,
// which the refresh scheduler merges into its tracked set
func (h *Hub) SubscribedSymbols() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := make(map[string]struct{})
	for _, conn := range h.connections {
		for _, s := range conn.Symbols() {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

// Broadcast delivers an analysis to every connection subscribed to its
// symbol. Frames to slow consumers are dropped, not queued unbounded.
func (h *Hub) Broadcast(analysis *models.Analysis) {
	msg := ServerMessage{
		Type:    TypeAnalysis,
		Symbol:  analysis.Symbol,
		Payload: NewAnalysisPayload(analysis),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to encode analysis frame", logger.ErrorField(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.connections {
		if !conn.IsSubscribed(analysis.Symbol) {
			continue
		}
		if !conn.Enqueue(data) {
			logger.Warn("Dropped analysis frame for slow consumer",
				logger.String("connection_id", conn.ID),
				logger.String("symbol", analysis.Symbol),
			)
		}
	}
}

// Stop closes every connection
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.connections {
		conn.Close()
		delete(h.connections, id)
	}
}

func (h *Hub) readPump(conn *Connection) {
	defer h.unregister(conn)

	conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.conn.SetPongHandler(func(string) error {
		conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read failed",
					logger.String("connection_id", conn.ID),
					logger.ErrorField(err),
				)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(conn, ServerMessage{Type: TypeError, Message: "invalid message"})
			continue
		}
		h.handleMessage(conn, msg)
	}
}

func (h *Hub) handleMessage(conn *Connection, msg ClientMessage) {
	symbol := strings.ToUpper(strings.TrimSpace(msg.Symbol))

	switch msg.Action {
	case ActionSubscribe:
		if symbol == "" {
			h.reply(conn, ServerMessage{Type: TypeError, Message: "symbol required"})
			return
		}
		conn.Subscribe(symbol)
		h.reply(conn, ServerMessage{Type: TypeSubscribed, Symbol: symbol})
	case ActionUnsubscribe:
		if symbol == "" {
			h.reply(conn, ServerMessage{Type: TypeError, Message: "symbol required"})
			return
		}
		conn.Unsubscribe(symbol)
		h.reply(conn, ServerMessage{Type: TypeUnsubscribed, Symbol: symbol})
	case ActionPing:
		h.reply(conn, ServerMessage{Type: TypePong})
	default:
		h.reply(conn, ServerMessage{Type: TypeError, Message: "unknown action"})
	}
}

func (h *Hub) reply(conn *Connection, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	conn.Enqueue(data)
}

func (h *Hub) writePump(conn *Connection) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		h.unregister(conn)
	}()

	for {
		select {
		case data, ok := <-conn.send:
			conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
