package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"enrolpulse/internal/config"
	"enrolpulse/internal/infrastructure"
	"enrolpulse/internal/middleware"
	"enrolpulse/pkg/contracts/events"
)

// Options tune the keep-alive and buffering of live sessions
type Options struct {
	ReadBufferSize  int
	WriteBufferSize int
	PingPeriod      time.Duration
	PongWait        time.Duration
	WriteWait       time.Duration
	MaxMessageSize  int64
	SendBuffer      int
}

// OptionsFromConfig maps the websocket config section, falling back to the
// defaults for unset values
func OptionsFromConfig(cfg config.WebSocketConfig) Options {
	def := config.Default().WebSocket
	opts := Options{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		PingPeriod:      cfg.PingPeriod,
		PongWait:        cfg.PongWait,
		WriteWait:       cfg.WriteWait,
		MaxMessageSize:  cfg.MaxMessageSize,
		SendBuffer:      16,
	}
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = def.ReadBufferSize
	}
	if opts.WriteBufferSize <= 0 {
		opts.WriteBufferSize = def.WriteBufferSize
	}
	if opts.PongWait <= 0 {
		opts.PongWait = def.PongWait
	}
	// pings must arrive before the peer's pong deadline
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = def.WriteWait
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = def.MaxMessageSize
	}
	return opts
}

// Hub tracks the live dashboard sessions
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	dashboard  DashboardComputer
	classifier ErrorClassifier
	validator  *middleware.RequestValidator
	options    Options
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger

	totalConnections int64

	quit    chan struct{}
	running bool
	stopped bool
}

// NewHub creates a hub. metrics may be nil.
func NewHub(dashboard DashboardComputer, classifier ErrorClassifier, opts Options, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 16
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		dashboard:  dashboard,
		classifier: classifier,
		validator:  middleware.NewRequestValidator(logger),
		options:    opts,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running || h.stopped {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run processes registrations until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.stopped {
				h.mu.Unlock()
				client.closeSend()
				continue
			}
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := client.context()
			infrastructure.RecordLiveSessionChange(ctx, h.metrics, 1)

			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			client.sendMessage(ctx, events.NewMessage(events.MessageTypeConnect, map[string]interface{}{
				"status":    "connected",
				"message":   "Connected to the enrolment dashboard",
				"client_id": client.id,
			}))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				client.closeSend()
			}
			count := len(h.clients)
			h.mu.Unlock()

			if !ok {
				continue
			}

			ctx := client.context()
			infrastructure.RecordLiveSessionChange(ctx, h.metrics, -1)

			h.logger.InfoContext(ctx, "Client unregistered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))
		}
	}
}

// Register adds a client to the hub. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return false
	}

	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client and closes its send queue
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every session and ends the hub loop
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	h.running = false
	close(h.quit)

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
		infrastructure.RecordLiveSessionChange(context.Background(), h.metrics, -1)
	}
}

// GetHubMetrics returns current hub counters
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
	}
}
