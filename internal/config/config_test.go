package config_test

import (
	"testing"
	"time"

	"teamnet-go/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.AppName != "TeamNet-Go" {
		t.Errorf("AppName = %q", cfg.AppName)
	}
	if cfg.APIServer.Port != "8081" {
		t.Errorf("APIServer.Port = %q, want 8081", cfg.APIServer.Port)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.WebSocketPath != "/ws" {
		t.Errorf("Server.WebSocketPath = %q, want /ws", cfg.Server.WebSocketPath)
	}

	if cfg.Kafka.ConnectionEventsTopic != "teamnet-connection-events" {
		t.Errorf("ConnectionEventsTopic = %q", cfg.Kafka.ConnectionEventsTopic)
	}
	if cfg.Kafka.MessageEventsTopic != "teamnet-message-events" {
		t.Errorf("MessageEventsTopic = %q", cfg.Kafka.MessageEventsTopic)
	}
	if cfg.Kafka.RealtimeOutgoingTopic != "teamnet-realtime-outgoing" {
		t.Errorf("RealtimeOutgoingTopic = %q", cfg.Kafka.RealtimeOutgoingTopic)
	}
	if cfg.Kafka.ConsumerGroup == cfg.Kafka.RealtimeConsumerGroup {
		t.Error("apiserver and presence server consumer groups must differ")
	}

	if cfg.Database.Type != "postgres" {
		t.Errorf("Database.Type = %q, want postgres", cfg.Database.Type)
	}
	if cfg.Auth.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %s, want 24h", cfg.Auth.JWTExpiry)
	}
	if cfg.Presence.HeartbeatTTL != 90*time.Second {
		t.Errorf("HeartbeatTTL = %s, want 90s", cfg.Presence.HeartbeatTTL)
	}
	if cfg.WebSocket.PingPeriodSeconds >= cfg.WebSocket.PongWaitSeconds {
		t.Error("ping period must be shorter than pong wait")
	}
}
