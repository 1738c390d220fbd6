package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"teamnet-go/internal/config"
	"teamnet-go/internal/nettypes"
	"teamnet-go/internal/services"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is a middleman between one websocket connection and the hub.
// Clients only receive events; the single inbound frame type is the
// presence heartbeat.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	userID   uint
	presence services.PresenceService
	logger   *zap.Logger
}

// readPump pumps frames from the websocket connection. Heartbeat frames
// refresh presence; everything else is ignored.
func (c *Client) readPump(wsCfg config.WebSocketConfig) {
	defer func() {
		// A replaced connection does not own the registration anymore; its
		// successor is live, so the user must stay online.
		if c.hub.Unregister(c) {
			if err := c.presence.MarkOffline(context.Background(), c.userID); err != nil {
				c.logger.Warn("failed to mark user offline", zap.Uint("userID", c.userID), zap.Error(err))
			}
		}
		c.conn.Close()
	}()

	pongWait := time.Duration(wsCfg.PongWaitSeconds) * time.Second
	c.conn.SetReadLimit(int64(wsCfg.MaxMessageSizeBytes))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket closed unexpectedly", zap.Uint("userID", c.userID), zap.Error(err))
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var frame nettypes.ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.logger.Debug("unparseable client frame", zap.Uint("userID", c.userID), zap.Error(err))
			continue
		}
		if frame.Type == nettypes.HeartbeatFrame {
			if err := c.presence.Heartbeat(context.Background(), c.userID); err != nil {
				c.logger.Warn("heartbeat failed", zap.Uint("userID", c.userID), zap.Error(err))
			}
		}
	}
}

// writePump pumps events from the hub to the websocket connection and keeps
// the connection alive with periodic pings.
func (c *Client) writePump(wsCfg config.WebSocketConfig) {
	writeWait := time.Duration(wsCfg.WriteWaitSeconds) * time.Second
	ticker := time.NewTicker(time.Duration(wsCfg.PingPeriodSeconds) * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Token auth happens before the upgrade; origin checks are left to
		// the fronting proxy.
		return true
	},
}

// ServeWS upgrades the request, registers the client with the hub and marks
// the user online.
func ServeWS(hub *Hub, presence services.PresenceService, userID uint, w http.ResponseWriter, r *http.Request, wsCfg config.WebSocketConfig, logger *zap.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", zap.Uint("userID", userID), zap.Error(err))
		return
	}

	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   userID,
		presence: presence,
		logger:   logger,
	}
	client.hub.register <- client

	if err := presence.MarkOnline(r.Context(), userID); err != nil {
		logger.Warn("failed to mark user online", zap.Uint("userID", userID), zap.Error(err))
	}

	go client.writePump(wsCfg)
	go client.readPump(wsCfg)
	logger.Info("client connected", zap.Uint("userID", userID))
}
