package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"enrolpulse/internal/infrastructure"
	"enrolpulse/internal/services"
	"enrolpulse/pkg/contracts/events"
)

// Error codes for messages the session cannot interpret
const (
	CodeInvalidMessage     = "INVALID_MESSAGE"
	CodeUnknownMessageType = "UNKNOWN_MESSAGE_TYPE"
)

// Client is one live dashboard session. The read pump turns selections into
// dashboard views and the write pump delivers them in order.
type Client struct {
	hub  *Hub
	conn Connection

	// Buffered channel of outbound messages, closed by the hub
	send     chan []byte
	sendMu   sync.Mutex
	sendDone bool

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger

	messagesSent     int64
	messagesReceived int64
}

// NewClient creates a session for conn. traceID ties the session logs to the
// upgrade request and may be empty.
func NewClient(hub *Hub, conn Connection, traceID string) *Client {
	id := uuid.New().String()
	if traceID == "" {
		traceID = id
	}

	remoteAddr := ""
	if addr := conn.RemoteAddr(); addr != nil {
		remoteAddr = addr.String()
	}

	ctx, cancel := context.WithCancel(infrastructure.WithTraceID(context.Background(), traceID))

	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, hub.options.SendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  remoteAddr,
		connectedAt: time.Now(),
		ctx:         ctx,
		cancel:      cancel,
		logger: hub.logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
		),
	}
}

// ID returns the session identifier
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	return c.ctx
}

// ReadPump reads client messages until the connection fails, then
// unregisters the session
func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		c.logger.InfoContext(c.ctx, "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	opts := c.hub.options
	c.conn.SetReadLimit(opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WarnContext(c.ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.messagesReceived++
		c.handleMessage(message)
	}
}

// handleMessage answers one client message. Heartbeats get no reply.
func (c *Client) handleMessage(raw []byte) {
	var msg events.SelectMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.DebugContext(c.ctx, "Malformed client message", slog.String("error", err.Error()))
		c.sendMessage(c.ctx, events.NewErrorMessage(CodeInvalidMessage, "message must be a JSON object with a type"))
		return
	}

	switch msg.Type {
	case events.MessageTypeHeartbeat:
		c.logger.DebugContext(c.ctx, "Heartbeat received")
	case events.MessageTypeSelect:
		c.handleSelect(msg)
	default:
		c.sendMessage(c.ctx, events.NewErrorMessage(CodeUnknownMessageType,
			fmt.Sprintf("unsupported message type %q", msg.Type)))
	}
}

func (c *Client) handleSelect(msg events.SelectMessage) {
	q := services.DashboardQuery{
		State:    strings.TrimSpace(msg.State),
		District: strings.TrimSpace(msg.District),
		Level:    strings.ToLower(strings.TrimSpace(msg.Level)),
		Horizon:  msg.Horizon,
	}

	if err := c.hub.validator.ValidateStruct(q); err != nil {
		c.sendError(err)
		return
	}

	view, err := c.hub.dashboard.View(c.ctx, q, services.ChannelLive)
	if err != nil {
		if c.ctx.Err() != nil {
			return
		}
		c.sendError(err)
		return
	}

	c.sendMessage(c.ctx, events.NewMessage(events.MessageTypeDashboard, view))
}

func (c *Client) sendError(err error) {
	code, message := c.hub.classifier.Classify(err)
	c.logger.WarnContext(c.ctx, "Dashboard selection failed",
		slog.String("code", code),
		slog.String("error", err.Error()))
	c.sendMessage(c.ctx, events.NewErrorMessage(code, message))
}

// sendMessage queues msg for the write pump, dropping it when the queue is
// full or already closed
func (c *Client) sendMessage(ctx context.Context, msg events.WebSocketMessage) bool {
	msg.TraceID = c.traceID
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("message_type", string(msg.Type)),
			slog.String("error", err.Error()))
		return false
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendDone {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		c.logger.WarnContext(ctx, "Client send buffer full, dropping message",
			slog.String("message_type", string(msg.Type)))
		return false
	}
}

// closeSend closes the send queue once, ending the write pump
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendDone {
		c.sendDone = true
		close(c.send)
	}
}

// WritePump writes queued messages and keep-alive pings to the connection
func (c *Client) WritePump() {
	opts := c.hub.options
	ticker := time.NewTicker(opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.InfoContext(c.ctx, "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.ctx, "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.ctx, "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
