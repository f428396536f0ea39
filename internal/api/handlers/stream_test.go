package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwpark/cyclewatch/pkg/logger"
)

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := NewHub(logger.Nop())

	// No clients connected: publish must be a harmless no-op
	hub.Publish(map[string]string{"hello": "world"})
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_BroadcastToClient(t *testing.T) {
	hub := NewHub(logger.Nop())

	server := httptest.NewServer(http.HandlerFunc(hub.Serve))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Serve registers the client asynchronously
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(map[string]string{"run_id": "run_20260820_163000"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]string
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "run_20260820_163000", msg["run_id"])
}

func TestHub_DropsDisconnectedClient(t *testing.T) {
	hub := NewHub(logger.Nop())

	server := httptest.NewServer(http.HandlerFunc(hub.Serve))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}
