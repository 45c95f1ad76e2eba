package host

import (
	"encoding/binary"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"zap-engine/internal/config"
	"zap-engine/internal/engine"
)

const (
	// writeTimeout bounds a slow presenter before it gets dropped.
	writeTimeout = 50 * time.Millisecond

	// maxClients caps presenter connections.
	maxClients = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	// Origin filtering happens in the router's CORS layer; the hub accepts
	// whatever the router let through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// outMsg is one queued outbound message; frames are binary, queue mirrors
// are JSON text.
type outMsg struct {
	binary bool
	data   []byte
}

// client is one connected presenter/host page.
type client struct {
	id      uuid.UUID
	conn    *websocket.Conn
	out     chan outMsg
	limiter *rate.Limiter
}

// Hub owns presenter connections: frames go out as binary little-endian
// float snapshots (the message-passing fallback for hosts without shared
// memory); input messages come back as JSON and feed the runner.
type Hub struct {
	runner *engine.Runner
	cfg    config.HostConfig

	mu      sync.RWMutex
	clients map[uuid.UUID]*client

	framesSent   int64 // atomic
	framesDropped int64 // atomic
}

// NewHub creates a hub bound to a runner.
func NewHub(runner *engine.Runner, cfg config.HostConfig) *Hub {
	return &Hub{
		runner:  runner,
		cfg:     cfg,
		clients: make(map[uuid.UUID]*client),
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns frames sent and dropped.
func (h *Hub) Stats() (sent, dropped int64) {
	return atomic.LoadInt64(&h.framesSent), atomic.LoadInt64(&h.framesDropped)
}

// Broadcast serializes the published buffer prefix and fans it out. Slow
// clients drop frames rather than stall the tick thread.
func (h *Hub) Broadcast(frame uint64, data []float32) {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}
	payload := outMsg{binary: true, data: encodeFrame(data)}
	for _, c := range h.clients {
		select {
		case c.out <- payload:
		default:
			// Buffer full: drop the oldest queued message and retry once.
			select {
			case <-c.out:
				atomic.AddInt64(&h.framesDropped, 1)
			default:
			}
			select {
			case c.out <- payload:
			default:
			}
		}
	}
	h.mu.RUnlock()
	atomic.AddInt64(&h.framesSent, 1)
	framesSent.Inc()
}

// BroadcastQueues mirrors the drained sound and game-event queues as a JSON
// text message for hosts that skip the shared buffer.
func (h *Hub) BroadcastQueues(sounds []uint8, events []engine.GameEvent) {
	if len(sounds) == 0 && len(events) == 0 {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"type":   "queues",
		"sounds": sounds,
		"events": events,
	})
	if err != nil {
		return
	}
	msg := outMsg{binary: false, data: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.out <- msg:
		default:
		}
	}
}

// encodeFrame packs floats as little-endian bytes, matching the wire layout
// cell-for-cell.
func encodeFrame(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, f := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// HandleWS upgrades a connection and runs its pumps.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	if h.ClientCount() >= maxClients {
		http.Error(w, "too many clients", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ WS upgrade failed: %v", err)
		return
	}

	c := &client{
		id:      uuid.New(),
		conn:    conn,
		out:     make(chan outMsg, 16),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.InputRatePerSecond), h.cfg.InputBurst),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()
	presenterClients.Set(float64(count))
	log.Printf("✅ Presenter connected: %s (total: %d)", c.id, count)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	count := len(h.clients)
	h.mu.Unlock()

	c.conn.Close()
	close(c.out)
	presenterClients.Set(float64(count))
	log.Printf("🔌 Presenter disconnected: %s (remaining: %d)", c.id, count)
}

// writePump ships queued messages to one client. It is the connection's
// only writer.
func (h *Hub) writePump(c *client) {
	for msg := range c.out {
		kind := websocket.TextMessage
		if msg.binary {
			kind = websocket.BinaryMessage
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(kind, msg.data); err != nil {
			h.removeClient(c)
			return
		}
	}
}

// readPump parses incoming host messages, rate-limits them, and feeds the
// runner. stop/resume act on the tick loop directly.
func (h *Hub) readPump(c *client) {
	defer h.removeClient(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg HostMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("⚠️ Bad host message from %s: %v", c.id, err)
			continue
		}

		switch msg.Type {
		case MsgStop:
			h.runner.Stop()
			continue
		case MsgResume:
			h.runner.Start()
			continue
		}

		if !c.limiter.Allow() {
			inputsRejected.Inc()
			continue
		}
		ev, ok, err := msg.ToInputEvent()
		if err != nil {
			log.Printf("⚠️ %v", err)
			continue
		}
		if ok {
			h.runner.PushInput(ev)
		}
	}
}
