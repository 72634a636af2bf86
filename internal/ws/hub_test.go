package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	hub.SetAuthorizer(func(ctx context.Context, userID, channel string) bool {
		return OwnChannels(ctx, userID, channel) || (userID == "w1" && channel == "case:c9")
	})
	go hub.Run()
	t.Cleanup(hub.Close)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(c, hub, r.URL.Query().Get("user"))
		hub.Register(conn)
		go conn.WritePump()
		go conn.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url, user string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial(url+"?user="+user, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readJSON(t *testing.T, c *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, c.ReadJSON(&msg))
	return msg
}

func TestHub_SubscribeAndReceive(t *testing.T) {
	hub, url := startHub(t)
	c := dial(t, url, "u1")

	require.NoError(t, c.WriteJSON(map[string]interface{}{"type": "subscribe", "channel": "applicant:u1"}))
	ack := readJSON(t, c)
	assert.Equal(t, "subscribed", ack["ack"])

	require.Eventually(t, func() bool { return hub.Subscribers("applicant:u1") == 1 }, time.Second, 10*time.Millisecond)
	hub.Publish("applicant:u1", map[string]interface{}{"type": "case.created", "caseId": "c1"})

	msg := readJSON(t, c)
	assert.Equal(t, "event", msg["type"])
	assert.Equal(t, "applicant:u1", msg["channel"])
	data, ok := msg["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "c1", data["caseId"])
}

func TestHub_RejectsForeignChannel(t *testing.T) {
	hub, url := startHub(t)
	c := dial(t, url, "u1")

	require.NoError(t, c.WriteJSON(map[string]interface{}{"type": "subscribe", "channel": "applicant:u2"}))
	ack := readJSON(t, c)
	assert.Equal(t, "forbidden", ack["ack"])
	assert.Equal(t, 0, hub.Subscribers("applicant:u2"))
}

func TestHub_PingAndUnsubscribe(t *testing.T) {
	hub, url := startHub(t)
	c := dial(t, url, "w1")

	require.NoError(t, c.WriteJSON(map[string]interface{}{"type": "ping"}))
	assert.Equal(t, "pong", readJSON(t, c)["ack"])

	require.NoError(t, c.WriteJSON(map[string]interface{}{"type": "subscribe", "channel": "case:c9"}))
	assert.Equal(t, "subscribed", readJSON(t, c)["ack"])
	require.NoError(t, c.WriteJSON(map[string]interface{}{"type": "unsubscribe", "channel": "case:c9"}))
	assert.Equal(t, "unsubscribed", readJSON(t, c)["ack"])
	assert.Equal(t, 0, hub.Subscribers("case:c9"))
}

func TestHub_CaseChannelNeedsAuthorizer(t *testing.T) {
	hub, url := startHub(t)

	for _, user := range []string{"", "u2"} {
		c := dial(t, url, user)
		require.NoError(t, c.WriteJSON(map[string]interface{}{"type": "subscribe", "channel": "case:c9"}))
		assert.Equal(t, "forbidden", readJSON(t, c)["ack"], "user %q", user)
	}
	assert.Equal(t, 0, hub.Subscribers("case:c9"))

	// the default authorizer admits no case channel
	plain := NewHub(zap.NewNop())
	conn := NewConn(nil, plain, "u1")
	plain.Register(conn)
	assert.False(t, plain.Subscribe(conn, "case:c1"))
	assert.False(t, plain.Subscribe(NewConn(nil, plain, ""), "case:c1"))
	assert.True(t, plain.Subscribe(conn, "applicant:u1"))
}

func TestHub_SubscribeRequiresRegisteredConn(t *testing.T) {
	hub := NewHub(zap.NewNop())
	assert.False(t, hub.Subscribe(NewConn(nil, hub, "u1"), "applicant:u1"))
	assert.Equal(t, 0, hub.Subscribers("applicant:u1"))
}

func TestHub_PublishAfterClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	hub.Close()
	hub.Close()
	assert.NotPanics(t, func() {
		hub.Publish("applicant:u1", map[string]interface{}{"type": "case.created"})
	})

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestOwnChannels(t *testing.T) {
	ctx := context.Background()
	assert.True(t, OwnChannels(ctx, "u1", "applicant:u1"))
	assert.True(t, OwnChannels(ctx, "u1", "worker:u1"))
	assert.False(t, OwnChannels(ctx, "", "case:c1"))
	assert.False(t, OwnChannels(ctx, "u1", "case:c1"))
	assert.False(t, OwnChannels(ctx, "", "applicant:"))
	assert.False(t, OwnChannels(ctx, "u1", "worker:u2"))
	assert.False(t, OwnChannels(ctx, "u1", "entity:u1"))
}
