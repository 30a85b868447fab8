package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		userID, _ := strconv.ParseUint(r.URL.Query().Get("user"), 10, 64)
		c := NewClient(hub, conn, userID)
		if !hub.Register(c) {
			_ = conn.Close()
			return
		}
		go c.WritePump()
		go c.ReadPump()
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server, user uint64) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + strconv.FormatUint(user, 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type auditedEnvelope struct {
	Type    string              `json:"type"`
	Payload PaperAuditedPayload `json:"payload"`
}

func TestSendToUserReachesOnlyThatUser(t *testing.T) {
	hub, srv, _ := startHub(t)
	alice := dial(t, srv, 1)
	bob := dial(t, srv, 2)
	require.Eventually(t, func() bool {
		return hub.Connections(1) == 1 && hub.Connections(2) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendToUser(1, MessagePaperAudited, PaperAuditedPayload{PaperID: 5, Title: "Статья", Status: "approved"}))

	_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env auditedEnvelope
	require.NoError(t, alice.ReadJSON(&env))
	assert.Equal(t, MessagePaperAudited, env.Type)
	assert.Equal(t, uint64(5), env.Payload.PaperID)

	_ = bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err)
}

func TestBroadcastReachesEveryone(t *testing.T) {
	hub, srv, _ := startHub(t)
	conns := []*websocket.Conn{dial(t, srv, 1), dial(t, srv, 1), dial(t, srv, 2)}
	require.Eventually(t, func() bool {
		return hub.Connections(1) == 2 && hub.Connections(2) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Broadcast(MessageNotificationPublished, NotificationPayload{ID: 7, Title: "Новость"}))

	for _, conn := range conns {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var env Envelope
		require.NoError(t, conn.ReadJSON(&env))
		assert.Equal(t, MessageNotificationPublished, env.Type)
	}
}

func TestClosedConnectionIsUnregistered(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, srv, 3)
	require.Eventually(t, func() bool { return hub.Connections(3) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connections(3) == 0 }, 2*time.Second, 10*time.Millisecond)

	// отправка пользователю без подключений не ошибка
	assert.NoError(t, hub.SendToUser(3, MessagePaperAudited, PaperAuditedPayload{}))
}

func TestStoppedHubRejectsClients(t *testing.T) {
	hub, srv, cancel := startHub(t)
	conn := dial(t, srv, 4)
	require.Eventually(t, func() bool { return hub.Connections(4) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	require.Eventually(t, func() bool {
		return !hub.Register(NewClient(hub, nil, 5))
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, hub.Connections(4))
}
