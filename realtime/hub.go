// Package realtime maintains authenticated websocket connections keyed by
// account id and delivers dispatcher output to the right live client.
package realtime

import (
	"sync"

	"github.com/alum-connect/api-go/models"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

// Frame is the wire shape of every server-to-client message.
type Frame struct {
	Type string               `json:"type"`
	Data *models.Notification `json:"data,omitempty"`
}

// Session is one registered connection. It owns a buffered outbound queue
// drained by a single write loop, so pushes never block the dispatcher.
type Session struct {
	accountID uint
	seq       uint64
	ws        *websocket.Conn
	send      chan Frame
	closeOnce sync.Once
	closed    chan struct{}
}

// Enqueue offers a frame to the session without blocking. It reports
// whether the frame was queued.
func (s *Session) Enqueue(f Frame) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.send <- f:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.ws.Close()
	})
}

func (s *Session) writeLoop(log *zap.Logger) {
	for {
		select {
		case <-s.closed:
			return
		case frame := <-s.send:
			if err := websocket.JSON.Send(s.ws, frame); err != nil {
				log.Debug("realtime write failed",
					zap.Uint("account_id", s.accountID), zap.Error(err))
				s.close()
				return
			}
		}
	}
}

// Hub is the connection registry. At most one live session is kept per
// account id; a newer registration supersedes and closes the older one.
// Eviction is guarded by a monotonic sequence number so a stale session's
// teardown can never remove its successor.
type Hub struct {
	mu    sync.Mutex
	seq   uint64
	conns map[uint]*Session
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		conns: make(map[uint]*Session),
		log:   log,
	}
}

// Register records the connection as the account's single live session
// and starts its write loop. Any previous session is closed.
func (h *Hub) Register(accountID uint, ws *websocket.Conn) *Session {
	h.mu.Lock()
	h.seq++
	session := &Session{
		accountID: accountID,
		seq:       h.seq,
		ws:        ws,
		send:      make(chan Frame, 16),
		closed:    make(chan struct{}),
	}
	prev := h.conns[accountID]
	h.conns[accountID] = session
	h.mu.Unlock()

	if prev != nil {
		h.log.Debug("superseding stale connection", zap.Uint("account_id", accountID))
		prev.close()
	}

	go session.writeLoop(h.log)
	return session
}

// Unregister removes the session if it is still the account's current
// one, then closes it. Idempotent; safe to call for superseded sessions.
func (h *Hub) Unregister(session *Session) {
	if session == nil {
		return
	}
	h.mu.Lock()
	if current, ok := h.conns[session.accountID]; ok && current.seq == session.seq {
		delete(h.conns, session.accountID)
	}
	h.mu.Unlock()
	session.close()
}

// Push offers the notification to the account's live session. Returns
// false when the account is offline or the session's queue is full; the
// persisted notification is the durable fallback either way.
func (h *Hub) Push(accountID uint, n *models.Notification) bool {
	h.mu.Lock()
	session := h.conns[accountID]
	h.mu.Unlock()

	if session == nil {
		return false
	}
	return session.Enqueue(Frame{Type: n.Kind, Data: n})
}

// Connected reports whether the account currently has a live session.
func (h *Hub) Connected(accountID uint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.conns[accountID]
	return ok
}
