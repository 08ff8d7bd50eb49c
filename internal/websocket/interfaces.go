package websocket

import (
	"context"
	"net"
	"time"

	"enrolpulse/internal/services"
	"enrolpulse/pkg/contracts/domain"
)

// Connection defines the subset of a gorilla/websocket connection the
// session uses. *websocket.Conn satisfies it.
type Connection interface {
	// WriteMessage writes a message with the given message type and payload
	WriteMessage(messageType int, data []byte) error

	// ReadMessage reads a message from the connection
	ReadMessage() (messageType int, p []byte, err error)

	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error

	// SetReadLimit sets the maximum size for a message read from the connection
	SetReadLimit(limit int64)

	// SetPongHandler sets the handler for pong messages
	SetPongHandler(h func(string) error)

	RemoteAddr() net.Addr
}

// DashboardComputer recomputes the dashboard view of a selection
type DashboardComputer interface {
	View(ctx context.Context, q services.DashboardQuery, channel string) (domain.DashboardView, error)
}

// ErrorClassifier turns an error into the code and message sent to the client
type ErrorClassifier interface {
	Classify(err error) (code, message string)
}
