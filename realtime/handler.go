package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alum-connect/api-go/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

// Handler authenticates websocket handshakes and binds connections to the
// hub. The bearer token travels as a "token" query parameter since
// browsers cannot set headers on websocket upgrades.
type Handler struct {
	hub         *Hub
	secret      string
	idleTimeout time.Duration
	log         *zap.Logger
}

func NewHandler(hub *Hub, secret string, idleTimeout time.Duration, log *zap.Logger) *Handler {
	if idleTimeout <= 0 {
		idleTimeout = 5 * time.Minute
	}
	return &Handler{hub: hub, secret: secret, idleTimeout: idleTimeout, log: log}
}

// Serve is the gin handler for the connect endpoint.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}

	claims, err := utils.ParseToken(token, h.secret)
	if err != nil {
		h.log.Debug("websocket auth failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	ws := websocket.Handler(func(conn *websocket.Conn) {
		h.handleConn(claims.UserID, conn)
	})
	ws.ServeHTTP(c.Writer, c.Request)
}

// handleConn runs for the lifetime of one connection. The read loop
// doubles as the liveness watchdog: a connection producing no traffic
// within the idle window is closed, which unregisters it.
func (h *Handler) handleConn(accountID uint, conn *websocket.Conn) {
	session := h.hub.Register(accountID, conn)
	defer h.hub.Unregister(session)

	if !session.Enqueue(Frame{Type: "connected"}) {
		return
	}

	h.log.Info("realtime connected", zap.Uint("account_id", accountID))

	for {
		if err := conn.SetReadDeadline(time.Now().Add(h.idleTimeout)); err != nil {
			break
		}
		var msg json.RawMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			break
		}
		// Client traffic only resets the idle window; there is no
		// client-to-server protocol beyond keepalives.
	}

	h.log.Info("realtime disconnected", zap.Uint("account_id", accountID))
}
