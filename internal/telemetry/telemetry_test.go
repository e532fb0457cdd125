package telemetry

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lightengine/internal/core/observability/log"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Clients() == n }, time.Second, 5*time.Millisecond)
}

func TestBroadcastReachesClients(t *testing.T) {
	h := NewHub(log.NewNop())
	s := httptest.NewServer(h)
	defer s.Close()

	a := dial(t, s.URL)
	b := dial(t, s.URL)
	waitClients(t, h, 2)

	require.NoError(t, h.Broadcast(Snapshot{TPS: 120, FPS: 60, Entities: 7}))
	for _, conn := range []*websocket.Conn{a, b} {
		var got Snapshot
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, 120, got.TPS)
		assert.Equal(t, 7, got.Entities)
	}
}

func TestControlActions(t *testing.T) {
	h := NewHub(log.NewNop())
	paused := make(chan bool, 1)
	h.Handle("pause", func(ControlMessage) error { paused <- true; return nil })
	h.Handle("fail", func(ControlMessage) error { return errors.New("nope") })
	s := httptest.NewServer(h)
	defer s.Close()

	conn := dial(t, s.URL)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

	require.NoError(t, conn.WriteJSON(ControlMessage{Action: "pause"}))
	var reply Reply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.True(t, reply.OK)
	assert.True(t, <-paused)

	require.NoError(t, conn.WriteJSON(ControlMessage{Action: "fail"}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.False(t, reply.OK)
	assert.Equal(t, "nope", reply.Error)

	require.NoError(t, conn.WriteJSON(ControlMessage{Action: "dance"}))
	reply = Reply{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.False(t, reply.OK)
	assert.Contains(t, reply.Error, ErrUnknownAction.Error())
}

func TestClientDisconnectIsDropped(t *testing.T) {
	h := NewHub(log.NewNop())
	s := httptest.NewServer(h)
	defer s.Close()

	conn := dial(t, s.URL)
	waitClients(t, h, 1)
	require.NoError(t, conn.Close())
	waitClients(t, h, 0)
}

func TestStartStopAndStream(t *testing.T) {
	h := NewHub(log.NewNop())
	require.NoError(t, h.Start("127.0.0.1:0"))
	assert.ErrorIs(t, h.Start("127.0.0.1:0"), ErrAlreadyRunning)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+h.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	waitClients(t, h, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.Stream(ctx, 5*time.Millisecond, func() Snapshot { return Snapshot{FPS: 30} })
	}()

	var got Snapshot
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 30, got.FPS)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, h.Stop(context.Background()))
	assert.Zero(t, h.Clients())
	assert.Empty(t, h.Addr())
}
