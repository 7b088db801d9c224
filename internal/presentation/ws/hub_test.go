package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialRoom(t *testing.T, hub *Hub, token string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Subscribe(w, r, token)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_NotifyReachesSubscriber(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialRoom(t, hub, "room-a")

	hub.NotifyRoom("room-a")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]string
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "update", msg["type"])
}

func TestHub_NotifyIsScopedToRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	connA := dialRoom(t, hub, "room-a")
	connB := dialRoom(t, hub, "room-b")

	hub.NotifyRoom("room-a")

	_ = connA.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]string
	require.NoError(t, connA.ReadJSON(&msg))
	assert.Equal(t, "update", msg["type"])

	// The other room hears nothing.
	_ = connB.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err := connB.ReadMessage()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "timeout") || websocket.IsUnexpectedCloseError(err))
}

func TestHub_PingsAndBroadcastsShareOneWriter(t *testing.T) {
	hub := NewHub()
	// Pings fire constantly so they interleave with every broadcast; both go
	// out from the Run goroutine, so none of this may trip gorilla's
	// concurrent-writer detection.
	hub.pingInterval = time.Millisecond
	go hub.Run()

	conn := dialRoom(t, hub, "room-a")

	const updates = 50
	go func() {
		for i := 0; i < updates; i++ {
			hub.NotifyRoom("room-a")
			time.Sleep(time.Millisecond)
		}
	}()

	// ReadJSON services pongs as a side effect and only surfaces data frames.
	received := 0
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for received < updates {
		var msg map[string]string
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, "update", msg["type"])
		received++
	}
	assert.Equal(t, updates, received)
}

func TestHub_NotifyWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.NotifyRoom("empty-room")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyRoom blocked")
	}
}
