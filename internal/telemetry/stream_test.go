package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub("hover", zerolog.Nop())
	server := httptest.NewServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Redraw(sample(0.5, 3))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "hover", f.Run)
	assert.Equal(t, 0.5, f.Time)
	assert.Equal(t, [3]float64{1, 3, -2}, f.Position)
	assert.Equal(t, [4]float64{1, 1, 1, 1}, f.Thrust)

	hub.Close()
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Zero(t, hub.Subscribers())
}

func TestHubWithoutSubscribers(t *testing.T) {
	hub := NewHub("idle", zerolog.Nop())
	hub.Redraw(sample(0, 0))
	assert.Zero(t, hub.Dropped())
	hub.Close()
}
