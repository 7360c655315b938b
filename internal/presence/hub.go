// Package presence tracks connected viewers over websockets. Viewers report
// the chunk location they are looking at; the hub logs activity and
// broadcasts the live client count.
package presence

import (
	"encoding/json"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Event types.
const (
	EventLocation = "location"
	EventMessage  = "message"
	EventClients  = "clients"
)

// Event is the JSON frame exchanged in both directions.
type Event struct {
	Type  string `json:"type"`
	Data  string `json:"data,omitempty"`
	Count int    `json:"count,omitempty"`
}

// ClientInfo is a snapshot of one connected viewer.
type ClientInfo struct {
	ID        string
	IP        string
	UserAgent string
	Location  string
	Connected time.Time
}

type client struct {
	info ClientInfo
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// Hub accepts viewer connections. It implements http.Handler.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
	closed  bool

	nextID atomic.Uint64
}

// NewHub creates an empty hub. A nil logger disables logging.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Viewers are served from the same host or run natively
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		info: ClientInfo{
			ID:        clientID(h.nextID.Add(1)),
			IP:        remoteIP(r),
			UserAgent: r.UserAgent(),
			Connected: time.Now(),
		},
	}

	count, ok := h.register(c)
	if !ok {
		conn.Close()
		return
	}
	h.log.Info("client connected",
		zap.String("id", c.info.ID),
		zap.String("ip", c.info.IP),
		zap.String("user_agent", c.info.UserAgent),
		zap.Int("clients", count),
	)
	h.Broadcast(Event{Type: EventClients, Count: count})

	done := make(chan struct{})
	go h.pingLoop(c, done)
	h.readLoop(c)
	close(done)

	count = h.unregister(c)
	h.log.Info("client disconnected",
		zap.String("id", c.info.ID),
		zap.String("ip", c.info.IP),
		zap.String("user_agent", c.info.UserAgent),
		zap.Int("clients", count),
	)
	h.Broadcast(Event{Type: EventClients, Count: count})
}

func (h *Hub) readLoop(c *client) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("read failed", zap.String("id", c.info.ID), zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			h.log.Warn("malformed event", zap.String("id", c.info.ID), zap.Error(err))
			continue
		}

		switch ev.Type {
		case EventLocation:
			h.mu.Lock()
			c.info.Location = ev.Data
			h.mu.Unlock()
			h.log.Info("client location", zap.String("id", c.info.ID), zap.String("location", ev.Data))
		case EventMessage:
			h.log.Info("client message", zap.String("id", c.info.ID), zap.String("data", ev.Data))
		default:
			h.log.Debug("unknown event", zap.String("id", c.info.ID), zap.String("type", ev.Type))
		}
	}
}

func (h *Hub) pingLoop(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

func (h *Hub) register(c *client) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, false
	}
	h.clients[c.info.ID] = c
	return len(h.clients), true
}

func (h *Hub) unregister(c *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.info.ID)
	return len(h.clients)
}

// Broadcast sends ev to every connected client. Clients that cannot be
// written to are closed; their read loop unregisters them.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("encoding event", zap.Error(err))
		return
	}

	h.mu.Lock()
	subs := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		subs = append(subs, c)
	}
	h.mu.Unlock()

	for _, c := range subs {
		if err := c.write(websocket.TextMessage, data); err != nil {
			h.log.Debug("send failed", zap.String("id", c.info.ID), zap.Error(err))
			c.conn.Close()
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Clients returns a snapshot of connected clients ordered by connection time.
func (h *Hub) Clients() []ClientInfo {
	h.mu.Lock()
	out := make([]ClientInfo, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c.info)
	}
	h.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Connected.Equal(out[j].Connected) {
			return out[i].Connected.Before(out[j].Connected)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		subs = append(subs, c)
	}
	h.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range subs {
		c.write(websocket.CloseMessage, msg)
		c.conn.Close()
	}
}

func clientID(n uint64) string {
	return "c" + strconv.FormatUint(n, 10)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
