package realtime

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alum-connect/api-go/models"
	"github.com/alum-connect/api-go/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

const testSecret = "realtime-test-secret"

func newTestServer(t *testing.T, idleTimeout time.Duration) (*Hub, *httptest.Server) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	hub := NewHub(zap.NewNop())
	handler := NewHandler(hub, testSecret, idleTimeout, zap.NewNop())

	r := gin.New()
	r.GET("/ws", handler.Serve)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, accountID uint) *websocket.Conn {
	t.Helper()

	token, err := utils.GenerateToken(&models.User{ID: accountID}, testSecret, time.Minute)
	require.NoError(t, err)

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws?token=" + token
	conn, err := websocket.Dial(wsURL, "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func receiveFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame Frame
	require.NoError(t, websocket.JSON.Receive(conn, &frame))
	return frame
}

func TestHandshakeAck(t *testing.T) {
	hub, srv := newTestServer(t, time.Minute)

	conn := dial(t, srv, 1)
	frame := receiveFrame(t, conn)
	assert.Equal(t, "connected", frame.Type)

	require.Eventually(t, func() bool { return hub.Connected(1) }, time.Second, 10*time.Millisecond)
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	_, srv := newTestServer(t, time.Minute)

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws?token=not-a-token"
	_, err := websocket.Dial(wsURL, "", "http://localhost/")
	assert.Error(t, err)

	wsURL = strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws"
	_, err = websocket.Dial(wsURL, "", "http://localhost/")
	assert.Error(t, err)
}

func TestPushDeliversToLiveConnection(t *testing.T) {
	hub, srv := newTestServer(t, time.Minute)

	conn := dial(t, srv, 7)
	_ = receiveFrame(t, conn) // connected ack
	require.Eventually(t, func() bool { return hub.Connected(7) }, time.Second, 10*time.Millisecond)

	n := &models.Notification{
		ID:          1,
		Kind:        models.NotificationFollowRequested,
		RecipientID: 7,
	}
	assert.True(t, hub.Push(7, n))

	frame := receiveFrame(t, conn)
	assert.Equal(t, models.NotificationFollowRequested, frame.Type)
	require.NotNil(t, frame.Data)
	assert.Equal(t, uint(7), frame.Data.RecipientID)
}

func TestPushOfflineIsNoop(t *testing.T) {
	hub, _ := newTestServer(t, time.Minute)

	delivered := hub.Push(42, &models.Notification{Kind: models.NotificationFollowRequested, RecipientID: 42})
	assert.False(t, delivered)
}

func TestNewConnectionSupersedesOld(t *testing.T) {
	hub, srv := newTestServer(t, time.Minute)

	first := dial(t, srv, 9)
	_ = receiveFrame(t, first)
	require.Eventually(t, func() bool { return hub.Connected(9) }, time.Second, 10*time.Millisecond)

	second := dial(t, srv, 9)
	_ = receiveFrame(t, second)

	// The first channel is closed by the supersede; its next read fails.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	var discard Frame
	assert.Error(t, websocket.JSON.Receive(first, &discard))

	// Exactly one live connection remains and pushes reach the newer one.
	assert.True(t, hub.Connected(9))
	n := &models.Notification{ID: 2, Kind: models.NotificationFollowAccepted, RecipientID: 9}
	assert.True(t, hub.Push(9, n))

	frame := receiveFrame(t, second)
	assert.Equal(t, models.NotificationFollowAccepted, frame.Type)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, srv := newTestServer(t, time.Minute)

	conn := dial(t, srv, 5)
	_ = receiveFrame(t, conn)
	require.Eventually(t, func() bool { return hub.Connected(5) }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return !hub.Connected(5) }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, hub.Push(5, &models.Notification{Kind: models.NotificationFollowRequested, RecipientID: 5}))
}

func TestIdleConnectionIsClosed(t *testing.T) {
	hub, srv := newTestServer(t, 150*time.Millisecond)

	conn := dial(t, srv, 3)
	_ = receiveFrame(t, conn)
	require.Eventually(t, func() bool { return hub.Connected(3) }, time.Second, 10*time.Millisecond)

	// No traffic; the idle window expires and the manager closes it.
	require.Eventually(t, func() bool { return !hub.Connected(3) }, 3*time.Second, 25*time.Millisecond)
}

func TestUnregisterIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// Unregister of an unknown/nil session must not panic.
	hub.Unregister(nil)
	assert.False(t, hub.Connected(1))
}
