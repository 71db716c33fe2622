// Package live streams interim simulation metrics to WebSocket subscribers.
// A Broadcaster plugs into the simulator's progress hook and fans each
// interim snapshot out to every connected client.
package live

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Sang-it/server-load-simulation/sim"
)

// Update is one progress frame sent to subscribers.
type Update struct {
	SimTime  float64       `json:"sim_time_s"`
	Duration float64       `json:"duration_s"`
	Done     bool          `json:"done"`
	Metrics  *sim.Snapshot `json:"metrics"`
}

// Broadcaster fans simulation progress out to WebSocket clients. Publish is
// called from the simulation goroutine; connection registration happens on
// HTTP handler goroutines, so the connection set is mutex-guarded.
type Broadcaster struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Handler upgrades incoming requests to WebSocket connections and registers
// them as subscribers. Client frames are read and discarded; the read loop
// exists only to detect disconnects.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Warn("websocket upgrade failed")
			return
		}
		b.add(conn)
		logrus.WithField("remote", conn.RemoteAddr()).Debug("live subscriber connected")

		go func() {
			defer b.remove(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

// Publish sends an update to every subscriber. Connections that fail to
// accept the write are dropped.
func (b *Broadcaster) Publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		if err := conn.WriteJSON(u); err != nil {
			logrus.WithError(err).Debug("dropping live subscriber")
			conn.Close()
			delete(b.conns, conn)
		}
	}
}

// Progress adapts the broadcaster to the simulator's progress hook.
func (b *Broadcaster) Progress() sim.ProgressFunc {
	return func(simTime, duration float64, snap *sim.Snapshot) {
		b.Publish(Update{SimTime: simTime, Duration: duration, Metrics: snap})
	}
}

// Finish sends a final frame marked done and closes all connections.
func (b *Broadcaster) Finish(snap *sim.Snapshot) {
	b.Publish(Update{
		SimTime:  snap.SimulationDurationS,
		Duration: snap.SimulationDurationS,
		Done:     true,
		Metrics:  snap,
	})
	b.CloseAll()
}

// CloseAll disconnects every subscriber.
func (b *Broadcaster) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.conns {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		delete(b.conns, conn)
	}
}

// Subscribers returns the current subscriber count.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}

func (b *Broadcaster) add(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns[conn] = struct{}{}
}

func (b *Broadcaster) remove(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.conns[conn]; ok {
		conn.Close()
		delete(b.conns, conn)
	}
}

// Serve exposes the broadcaster at /live on addr. It blocks, so callers run
// it on its own goroutine.
func Serve(addr string, b *Broadcaster) error {
	mux := http.NewServeMux()
	mux.Handle("/live", b.Handler())
	logrus.WithField("addr", addr).Info("live metrics endpoint listening")
	return http.ListenAndServe(addr, mux)
}
