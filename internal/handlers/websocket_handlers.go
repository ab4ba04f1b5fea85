package handlers

import (
	"net/http"

	"flashback-app/internal/auth"
	"flashback-app/internal/database"
	"flashback-app/internal/realtime"
	"flashback-app/internal/registry"
	"flashback-app/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	resolver auth.Resolver
	reg      registry.Registry
	router   *realtime.Router
	db       database.Database
	opts     realtime.Options
	upgrader websocket.Upgrader
}

func NewWebSocketHandlers(resolver auth.Resolver, reg registry.Registry, router *realtime.Router, db database.Database, opts realtime.Options) *WebSocketHandlers {
	return &WebSocketHandlers{
		resolver: resolver,
		reg:      reg,
		router:   router,
		db:       db,
		opts:     opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket is the single persistent-connection endpoint. The
// identity token rides the handshake URL's query string; anonymous
// connections are refused before the handshake completes. Group bootstrap
// happens before the pumps start, so the first frame the client can
// receive already reflects its current membership.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, err := h.resolver.Resolve(r.Context(), r.URL.Query().Get("token"))
	if err != nil || user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	session, err := realtime.NewSession(user, conn, h.reg, h.router, h.db, h.opts)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create session")
		conn.Close()
		return
	}

	session.JoinInitialGroups(r.Context())
	logger.Info().Int("user_id", user.ID).Str("session", session.Key()).Msg("websocket session started")

	go session.Run()
}
