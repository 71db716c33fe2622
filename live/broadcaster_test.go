package live

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sang-it/server-load-simulation/sim"
)

func dialBroadcaster(t *testing.T, b *Broadcaster) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, b *Broadcaster, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.Subscribers() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d subscribers, have %d", n, b.Subscribers())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestBroadcaster_DeliversUpdates verifies a subscriber receives published
// progress frames as JSON.
func TestBroadcaster_DeliversUpdates(t *testing.T) {
	b := NewBroadcaster()
	conn := dialBroadcaster(t, b)
	waitForSubscribers(t, b, 1)

	sent := Update{
		SimTime:  2.5,
		Duration: 10,
		Metrics:  &sim.Snapshot{Scenario: "demo", TotalRequests: 42},
	}
	b.Publish(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Update
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 2.5, got.SimTime)
	assert.False(t, got.Done)
	require.NotNil(t, got.Metrics)
	assert.Equal(t, "demo", got.Metrics.Scenario)
	assert.Equal(t, 42, got.Metrics.TotalRequests)
}

// TestBroadcaster_FinishMarksDoneAndDisconnects verifies the final frame is
// flagged and the connection closes afterwards.
func TestBroadcaster_FinishMarksDoneAndDisconnects(t *testing.T) {
	b := NewBroadcaster()
	conn := dialBroadcaster(t, b)
	waitForSubscribers(t, b, 1)

	b.Finish(&sim.Snapshot{Scenario: "demo", SimulationDurationS: 10})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Update
	require.NoError(t, conn.ReadJSON(&got))
	assert.True(t, got.Done)
	assert.Equal(t, 10.0, got.SimTime)

	// Next read observes the close handshake.
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, b.Subscribers())
}

// TestBroadcaster_PublishWithoutSubscribers verifies publishing into the void
// is a no-op rather than a panic.
func TestBroadcaster_PublishWithoutSubscribers(t *testing.T) {
	b := NewBroadcaster()
	b.Publish(Update{SimTime: 1})
	assert.Equal(t, 0, b.Subscribers())
}

// TestBroadcaster_ProgressAdapter verifies the simulator hook shape forwards
// frames.
func TestBroadcaster_ProgressAdapter(t *testing.T) {
	b := NewBroadcaster()
	conn := dialBroadcaster(t, b)
	waitForSubscribers(t, b, 1)

	fn := b.Progress()
	fn(1, 10, &sim.Snapshot{TotalRequests: 7})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Update
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 1.0, got.SimTime)
	assert.Equal(t, 7, got.Metrics.TotalRequests)
}
