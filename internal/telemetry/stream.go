package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/dynamo"
)

const (
	sendBuffer   = 64
	writeTimeout = 2 * time.Second
)

// Frame is the JSON message pushed to stream subscribers at every redraw.
type Frame struct {
	Run      string     `json:"run"`
	Time     float64    `json:"t"`
	Position [3]float64 `json:"pos"`
	Velocity [3]float64 `json:"vel"`
	Attitude [3]float64 `json:"att"`
	Thrust   [4]float64 `json:"thrust"`
	Mass     float64    `json:"mass"`
	Energy   float64    `json:"energy"`
	Grounded bool       `json:"grounded"`
}

func NewFrame(run string, s dynamo.Snapshot) Frame {
	return Frame{
		Run:      run,
		Time:     s.Time,
		Position: s.Position,
		Velocity: s.Velocity,
		Attitude: s.OrientationRate,
		Thrust:   s.Thrust,
		Mass:     s.Mass,
		Energy:   s.Energy,
		Grounded: s.Contact.Grounded,
	}
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts redraws to websocket subscribers. A subscriber that falls
// behind loses frames rather than slowing the simulation.
type Hub struct {
	run      string
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	subs    map[*subscriber]struct{}
	dropped int
}

func NewHub(run string, log zerolog.Logger) *Hub {
	return &Hub{
		run: run,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("stream subscriber joined")

	go h.writeLoop(sub)

	// subscribers only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("stream subscriber lost")
			}
			break
		}
	}
	h.remove(sub)
}

func (h *Hub) writeLoop(sub *subscriber) {
	defer sub.conn.Close()
	for msg := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(sub)
			return
		}
	}
	_ = sub.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "flight over"))
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
}

func (h *Hub) Redraw(s dynamo.Snapshot) {
	msg, err := json.Marshal(NewFrame(h.run, s))
	if err != nil {
		h.log.Error().Err(err).Msg("encode frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.send <- msg:
		default:
			h.dropped++
		}
	}
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Close ends every subscription with a normal close frame.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.send)
	}
}
