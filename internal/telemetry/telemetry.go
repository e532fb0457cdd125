// Package telemetry streams engine statistics to websocket clients and
// accepts a small set of control actions from them.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/lightengine/internal/core/observability/log"
)

var (
	ErrAlreadyRunning = errors.New("telemetry server is already running")
	ErrUnknownAction  = errors.New("unknown control action")
)

// sendBuffer is the number of snapshots queued per client before new ones
// are dropped for that client.
const sendBuffer = 16

type Config struct {
	Enabled    bool          `yaml:"enabled" toml:"enabled"`
	ListenAddr string        `yaml:"listen_addr" toml:"listen_addr"`
	Interval   time.Duration `yaml:"interval" toml:"interval"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr: "127.0.0.1:7070",
		Interval:   time.Second,
	}
}

// Snapshot is one stats message.
type Snapshot struct {
	Time       time.Time `json:"time"`
	TPS        int       `json:"tps"`
	FPS        int       `json:"fps"`
	Entities   int       `json:"entities"`
	Lights     int       `json:"lights"`
	Meshes     int       `json:"meshes"`
	ShadowMaps int       `json:"shadow_maps"`
	Paused     bool      `json:"paused"`
	Loading    bool      `json:"loading"`
	Monochrome bool      `json:"monochrome"`
}

// ControlMessage is sent by clients, e.g. {"action":"pause"}.
type ControlMessage struct {
	Action string `json:"action"`
	Value  bool   `json:"value,omitempty"`
}

// Reply answers a control message.
type Reply struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

type Command func(ControlMessage) error

type client struct {
	id     string
	remote string
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// Hub fans snapshots out to every connected client.
type Hub struct {
	logger   log.Log
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	clients  map[string]*client
	commands map[string]Command

	server   *http.Server
	listener net.Listener
}

func NewHub(logger log.Log) *Hub {
	return &Hub{
		logger: logger.With(log.Component("telemetry")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients:  make(map[string]*client),
		commands: make(map[string]Command),
	}
}

// Handle registers the command run for a control action.
func (h *Hub) Handle(action string, cmd Command) {
	h.mu.Lock()
	h.commands[action] = cmd
	h.mu.Unlock()
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		id:     uuid.NewString(),
		remote: conn.RemoteAddr().String(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected",
		log.String("client_id", c.id),
		log.String("remote_addr", c.remote),
		log.Int("total_clients", total))

	go h.write(c)
	h.read(c)
}

func (h *Hub) write(c *client) {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("write failed", log.String("client_id", c.id), log.Error(err))
			h.drop(c)
			return
		}
	}
}

func (h *Hub) read(c *client) {
	defer h.drop(c)
	for {
		var msg ControlMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				h.logger.Debug("read failed", log.String("client_id", c.id), log.Error(err))
			}
			return
		}
		reply := Reply{Action: msg.Action, OK: true}
		if err := h.run(msg); err != nil {
			reply.OK = false
			reply.Error = err.Error()
			h.logger.Warn("control action failed", log.String("action", msg.Action), log.Error(err))
		}
		h.enqueue(c, reply)
	}
}

func (h *Hub) run(msg ControlMessage) error {
	h.mu.RLock()
	cmd, ok := h.commands[msg.Action]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%q: %w", msg.Action, ErrUnknownAction)
	}
	return cmd(msg)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	total := len(h.clients)
	h.mu.Unlock()
	c.close()
	if ok {
		h.logger.Info("client disconnected", log.String("client_id", c.id), log.Int("total_clients", total))
	}
}

func (h *Hub) enqueue(c *client, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encode reply", log.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Broadcast sends v as JSON to every client. Slow clients miss messages
// rather than block the caller.
func (h *Hub) Broadcast(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
	return nil
}

// Start listens on addr and serves the hub at /ws.
func (h *Hub) Start(addr string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.server != nil {
		return ErrAlreadyRunning
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("telemetry listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	h.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	h.listener = ln

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("telemetry server failed", log.Error(err))
		}
	}(h.server)
	h.logger.Info("telemetry listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (h *Hub) Addr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// Stop shuts the server down and disconnects every client.
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	srv := h.server
	h.server = nil
	h.listener = nil
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.drop(c)
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Stream broadcasts source() every interval until ctx is done.
func (h *Hub) Stream(ctx context.Context, interval time.Duration, source func() Snapshot) error {
	if interval <= 0 {
		interval = DefaultConfig().Interval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := h.Broadcast(source()); err != nil {
				h.logger.Warn("broadcast failed", log.Error(err))
			}
		}
	}
}
