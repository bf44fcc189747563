package wshub

import (
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uninav/wayfinder/pkg/streaming"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) streaming.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env streaming.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
}

func TestHub_BroadcastsToClients(t *testing.T) {
	hub := New(slog.Default())
	defer hub.Close()
	server := httptest.NewServer(hub)
	defer server.Close()

	a := dial(t, server)
	b := dial(t, server)
	waitForClients(t, hub, 2)

	env, err := streaming.Marshal(streaming.TypeFrame, streaming.FramePayload{ActiveRun: 1})
	require.NoError(t, err)
	require.NoError(t, hub.Present(env))

	for _, conn := range []*websocket.Conn{a, b} {
		got := readEnvelope(t, conn)
		assert.Equal(t, streaming.TypeFrame, got.Type)
	}
}

func TestHub_ReplaysLastRouteToLateJoiner(t *testing.T) {
	hub := New(slog.Default())
	defer hub.Close()
	server := httptest.NewServer(hub)
	defer server.Close()

	env, err := streaming.Marshal(streaming.TypeRoute, streaming.RoutePayload{Destination: "Room 101"})
	require.NoError(t, err)
	require.NoError(t, hub.Present(env))

	conn := dial(t, server)
	got := readEnvelope(t, conn)
	assert.Equal(t, streaming.TypeRoute, got.Type)
}

func TestHub_ResetClearsReplay(t *testing.T) {
	hub := New(slog.Default())
	defer hub.Close()
	server := httptest.NewServer(hub)
	defer server.Close()

	routeEnv, err := streaming.Marshal(streaming.TypeRoute, streaming.RoutePayload{Destination: "Room 101"})
	require.NoError(t, err)
	require.NoError(t, hub.Present(routeEnv))

	resetEnv, err := streaming.Marshal(streaming.TypeReset, nil)
	require.NoError(t, err)
	require.NoError(t, hub.Present(resetEnv))

	conn := dial(t, server)
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var env streaming.Envelope
	assert.Error(t, conn.ReadJSON(&env), "no replay expected after reset")
}

func TestHub_CloseDisconnects(t *testing.T) {
	hub := New(slog.Default())
	server := httptest.NewServer(hub)
	defer server.Close()

	dial(t, server)
	waitForClients(t, hub, 1)

	require.NoError(t, hub.Close())
	assert.Equal(t, 0, hub.ClientCount())
}
