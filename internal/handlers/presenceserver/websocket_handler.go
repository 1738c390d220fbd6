package presenceserver

import (
	"net/http"

	"teamnet-go/internal/auth"
	"teamnet-go/internal/config"
	"teamnet-go/internal/services"
	ws "teamnet-go/internal/websocket"

	"go.uber.org/zap"
)

// WebSocketHandler upgrades presence connections. Browsers cannot set an
// Authorization header on a WebSocket handshake, so the token travels as a
// query parameter instead.
type WebSocketHandler struct {
	hub       *ws.Hub
	presence  services.PresenceService
	blacklist auth.TokenBlacklist
	cfg       config.Config
	logger    *zap.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub, presence services.PresenceService, blacklist auth.TokenBlacklist, cfg config.Config, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		presence:  presence,
		blacklist: blacklist,
		cfg:       cfg,
		logger:    logger,
	}
}

// ServeWS handles GET /ws?token=. Anonymous connections are rejected; every
// socket belongs to an authenticated member.
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing authentication token", http.StatusUnauthorized)
		return
	}

	claims, err := auth.ValidateToken(r.Context(), token, h.cfg.Auth.JWTSecretKey, h.blacklist)
	if err != nil {
		h.logger.Debug("websocket token validation failed", zap.Error(err))
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	ws.ServeWS(h.hub, h.presence, claims.UserID, w, r, h.cfg.WebSocket, h.logger)
}
