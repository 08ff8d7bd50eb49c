// Package events contains the message contracts of the live dashboard WebSocket session.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client → server
	MessageTypeSelect    MessageType = "select"
	MessageTypeHeartbeat MessageType = "heartbeat"

	// Server → client
	MessageTypeConnect   MessageType = "connect"
	MessageTypeDashboard MessageType = "dashboard"
	MessageTypeError     MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage is a server message with an arbitrary payload
type WebSocketMessage struct {
	BaseMessage
	Data  interface{}   `json:"data,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// SelectMessage is sent by the client whenever a filter or slider changes.
// Empty fields fall back to the same defaults as the REST dashboard endpoint.
type SelectMessage struct {
	Type     MessageType `json:"type"`
	State    string      `json:"state,omitempty"`
	District string      `json:"district,omitempty"`
	Level    string      `json:"level,omitempty"`
	Horizon  int         `json:"horizon,omitempty"`
}

// ErrorPayload describes a failed recomputation
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage creates a server message stamped with the current time
func NewMessage(msgType MessageType, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now(),
		},
		Data: data,
	}
}

// NewErrorMessage creates an error message
func NewErrorMessage(code, message string) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now(),
		},
		Error: &ErrorPayload{Code: code, Message: message},
	}
}
