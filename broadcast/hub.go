package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/league-portal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// SendBuffer is the per-session outbound queue length.
	SendBuffer    = 256
	publishBuffer = 1024
)

var sessionSeq atomic.Uint64

type Client struct {
	ID       uint64
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Channels map[Channel]bool
	IsClosed bool
	Mu       sync.Mutex
}

// NewClient builds a session subscribed to channels. conn may be nil in
// tests that only read Send.
func NewClient(hub *Hub, conn *websocket.Conn, channels []Channel) *Client {
	subs := make(map[Channel]bool, len(channels))
	for _, ch := range channels {
		subs[ch] = true
	}
	return &Client{
		ID:       sessionSeq.Add(1),
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, SendBuffer),
		Channels: subs,
	}
}

func (c *Client) Subscribed(ch Channel) bool {
	return c.Channels[ch]
}

// Enqueue queues msg without blocking. It reports false when the session is
// closed or its queue is full.
func (c *Client) Enqueue(msg []byte) bool {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if c.IsClosed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if !c.IsClosed {
		close(c.Send)
		c.IsClosed = true
	}
}

type outbound struct {
	channel Channel
	version uint64
	data    []byte
}

// Hub fans snapshots out to subscribed sessions. A snapshot whose version is
// not newer than the last one sent on its channel is dropped. Version zero
// marks a notification and is always delivered.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[Channel]map[*Client]bool
	lastSent   map[Channel]uint64
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	doneOnce   sync.Once
	mu         sync.RWMutex
	epoch      string
	logger     *slog.Logger
}

type HubOption func(*Hub)

// WithEpoch stamps every published frame with the epoch of the versions it
// carries.
func WithEpoch(epoch string) HubOption {
	return func(h *Hub) { h.epoch = epoch }
}

func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[Channel]map[*Client]bool),
		lastSent:   make(map[Channel]uint64),
		broadcast:  make(chan outbound, publishBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("component", "broadcast_hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Epoch() string {
	return h.epoch
}

// Run owns the subscription tables until ctx is cancelled. On exit every
// session queue is closed so write pumps send a close frame.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()
	h.logger.Info("broadcast hub started")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("broadcast hub stopping", "sessions", h.ClientCount())
			return ctx.Err()

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			for ch := range client.Channels {
				if _, ok := h.rooms[ch]; !ok {
					h.rooms[ch] = make(map[*Client]bool)
				}
				h.rooms[ch][client] = true
			}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WSSessions.Set(float64(total))
			h.logger.Debug("session registered", "session_id", client.ID, "channels", len(client.Channels), "sessions", total)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg outbound) {
	h.mu.Lock()
	if msg.version > 0 {
		if msg.version <= h.lastSent[msg.channel] {
			h.mu.Unlock()
			metrics.BroadcastDropped.WithLabelValues(string(msg.channel), "stale").Inc()
			h.logger.Debug("stale snapshot dropped", "channel", msg.channel, "version", msg.version)
			return
		}
		h.lastSent[msg.channel] = msg.version
	}
	var slow []*Client
	for client := range h.rooms[msg.channel] {
		if client.Enqueue(msg.data) {
			metrics.BroadcastDelivered.WithLabelValues(string(msg.channel)).Inc()
			continue
		}
		slow = append(slow, client)
	}
	h.mu.Unlock()

	// A session that cannot keep up is disconnected; it refetches on reconnect.
	for _, client := range slow {
		metrics.BroadcastDropped.WithLabelValues(string(msg.channel), "slow_session").Inc()
		h.logger.Warn("session queue full, disconnecting", "session_id", client.ID, "channel", msg.channel)
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	for ch := range client.Channels {
		delete(h.rooms[ch], client)
		if len(h.rooms[ch]) == 0 {
			delete(h.rooms, ch)
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	client.close()
	metrics.WSSessions.Set(float64(total))
	h.logger.Debug("session unregistered", "session_id", client.ID, "sessions", total)
}

func (h *Hub) shutdown() {
	h.doneOnce.Do(func() { close(h.done) })
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]bool)
	h.rooms = make(map[Channel]map[*Client]bool)
	h.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
	metrics.WSSessions.Set(0)
}

// Register blocks until the hub accepts the session. It returns false when
// the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		c.close()
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish encodes payload and queues it for fan-out. It never blocks the
// caller; when the hub is saturated the message is dropped and counted.
func (h *Hub) Publish(channel Channel, msgType string, version uint64, payload any) {
	data, err := Encode(h.epoch, channel, msgType, version, payload)
	if err != nil {
		h.logger.Error("failed to encode broadcast", "channel", channel, "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- outbound{channel: channel, version: version, data: data}:
	default:
		metrics.BroadcastDropped.WithLabelValues(string(channel), "hub_busy").Inc()
		h.logger.Warn("broadcast queue full, message dropped", "channel", channel, "type", msgType, "version", version)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Subscribers(ch Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[ch])
}

func (c *Client) ReadPump() {
	logger := c.Hub.logger.With("session_id", c.ID)
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
		logger.Debug("read pump closed")
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		// Inbound frames carry nothing; reading keeps pongs and close frames flowing.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket closed unexpectedly", "error", err)
			}
			return
		}
	}
}

// WritePump sends each queued message as its own text frame so receivers
// can decode frames independently.
func (c *Client) WritePump() {
	logger := c.Hub.logger.With("session_id", c.ID)
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		logger.Debug("write pump closed")
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}
