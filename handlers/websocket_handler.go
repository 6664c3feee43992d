package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/league-portal/broadcast"
	"github.com/Dosada05/league-portal/services"
)

type WebSocketHandler struct {
	hub         *broadcast.Hub
	clipService services.ClipService
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewWebSocketHandler accepts any origin when allowedOrigins is empty or
// contains "*".
func NewWebSocketHandler(hub *broadcast.Hub, cs services.ClipService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		clipService: cs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With("component", "websocket"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[strings.ToLower(o)] = true
		}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[strings.ToLower(origin)]
	}
}

// ServeWs upgrades GET /ws?channels=teams,players. Without the parameter the
// session hears every channel.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	channels, err := broadcast.ParseChannels(r.URL.Query().Get("channels"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.logger.Warn("websocket upgrade failed", slog.String("remote_addr", r.RemoteAddr), slog.Any("error", err))
		return
	}

	client := broadcast.NewClient(h.hub, conn, channels)
	if client.Subscribed(broadcast.ChannelClipStats) {
		h.primeClipStats(r, client)
	}
	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket session started",
		slog.Uint64("session_id", client.ID),
		slog.Int("channels", len(channels)),
	)
}

// primeClipStats queues the current counters ahead of any broadcast so a
// fresh session does not wait for the next view or like.
func (h *WebSocketHandler) primeClipStats(r *http.Request, client *broadcast.Client) {
	snap, version, err := h.clipService.Stats(r.Context())
	if err != nil {
		h.logger.Warn("failed to read clip stats for new session", slog.Any("error", err))
		return
	}
	msg, err := broadcast.Encode(h.hub.Epoch(), broadcast.ChannelClipStats, broadcast.TypeStatsUpdate, version, snap)
	if err != nil {
		h.logger.Error("failed to encode clip stats", slog.Any("error", err))
		return
	}
	client.Enqueue(msg)
}
