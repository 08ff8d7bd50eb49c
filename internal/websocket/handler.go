package websocket

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"

	apierrors "enrolpulse/internal/errors"
	"enrolpulse/internal/infrastructure"
)

// Handler upgrades GET /ws/dashboard requests into live sessions
type Handler struct {
	hub            *Hub
	upgrader       websocket.Upgrader
	allowedOrigins []string
	logger         *slog.Logger
}

// NewHandler creates the upgrade handler. Requests without an Origin header
// are accepted; otherwise the origin must be listed or "*" must be allowed.
func NewHandler(hub *Hub, allowedOrigins []string, logger *slog.Logger) *Handler {
	h := &Handler{
		hub:            hub,
		allowedOrigins: allowedOrigins,
		logger:         logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  hub.options.ReadBufferSize,
		WriteBufferSize: hub.options.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.WarnContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			problem := apierrors.ErrWebSocketUpgrade.WithStatus(status, reason.Error()).Problem(r.URL.Path)
			render.Render(w, r, problem.WithExtension("trace_id", chimiddleware.GetReqID(r.Context())))
		},
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.allowedOrigins))
	return false
}

// ServeHTTP upgrades the connection and starts the session pumps
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	ctx := infrastructure.WithTraceID(r.Context(), reqID)

	h.logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")),
		slog.String("user_agent", r.UserAgent()))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := NewClient(h.hub, conn, reqID)
	if !h.hub.Register(client) {
		h.logger.WarnContext(ctx, "WebSocket hub stopped, closing connection")
		conn.Close()
		return
	}

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.ErrorContext(ctx, "WebSocket write pump panic", slog.Any("panic", rec))
			}
		}()
		client.WritePump()
	}()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.ErrorContext(ctx, "WebSocket read pump panic", slog.Any("panic", rec))
			}
		}()
		client.ReadPump()
	}()
}
