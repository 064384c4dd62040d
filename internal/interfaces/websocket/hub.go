package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/langaide/langaide/internal/application/usecase"
	"github.com/langaide/langaide/internal/infrastructure/auth"
	"github.com/langaide/langaide/pkg/safego"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // served behind the same origin as the frontend
	},
}

// TurnEvent is pushed to a connected client when a chat turn of
// theirs is persisted.
type TurnEvent struct {
	Type     string               `json:"type"` // "turn"
	Messages []usecase.MessageDTO `json:"messages"`
}

// client is one connected feed subscriber.
type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans persisted chat turns out to each caller's live feed
// connections. It replaces polling GET /chat for new messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	logger  *zap.Logger
}

// NewHub creates the feed hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		logger:  logger.With(zap.String("component", "ws-hub")),
	}
}

// BroadcastTurn pushes a persisted turn to the owning caller's
// connections.
func (h *Hub) BroadcastTurn(callerID string, messages []usecase.MessageDTO) {
	if len(messages) == 0 {
		return
	}

	payload, err := json.Marshal(TurnEvent{Type: "turn", Messages: messages})
	if err != nil {
		h.logger.Error("Failed to encode turn event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.userID != callerID {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop the event rather than block a turn.
			h.logger.Warn("Dropping feed event for slow client")
		}
	}
}

// Shutdown closes every connection.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// Handler upgrades GET /ws. Browsers cannot set headers on websocket
// dials, so the session token arrives as a query parameter.
func (h *Hub) Handler(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		userID, err := tokens.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn("Websocket upgrade failed", zap.Error(err))
			return
		}

		cl := &client{
			userID: userID,
			conn:   conn,
			send:   make(chan []byte, 16),
		}

		h.mu.Lock()
		h.clients[cl] = true
		h.mu.Unlock()

		safego.Go(h.logger, "ws-write", func() { h.writePump(cl) })
		safego.Go(h.logger, "ws-read", func() { h.readPump(cl) })
	}
}

// readPump discards inbound frames (the feed is one-directional) and
// keeps the pong deadline fresh.
func (h *Hub) readPump(cl *client) {
	defer h.drop(cl)

	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		close(cl.send)
		delete(h.clients, cl)
	}
	h.mu.Unlock()
	_ = cl.conn.Close()
}
