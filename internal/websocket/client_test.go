package websocket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"teamnet-go/internal/config"
	ws "teamnet-go/internal/websocket"
)

// recordingPresence captures presence transitions in order.
type recordingPresence struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPresence) record(event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPresence) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func (p *recordingPresence) MarkOnline(ctx context.Context, userID uint) error {
	p.record("online")
	return nil
}

func (p *recordingPresence) MarkOffline(ctx context.Context, userID uint) error {
	p.record("offline")
	return nil
}

func (p *recordingPresence) Heartbeat(ctx context.Context, userID uint) error {
	p.record("heartbeat")
	return nil
}

func (p *recordingPresence) IsOnline(ctx context.Context, userID uint) (bool, error) {
	return false, nil
}

func (p *recordingPresence) OnlineUserIDs(ctx context.Context) ([]uint, error) {
	return nil, nil
}

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		WriteWaitSeconds:    5,
		PongWaitSeconds:     30,
		PingPeriodSeconds:   25,
		MaxMessageSizeBytes: 1024,
	}
}

func newPresenceTestServer(t *testing.T, presence *recordingPresence) *httptest.Server {
	t.Helper()
	hub := ws.NewHub(zap.NewNop())
	go hub.Run()

	wsCfg := testWSConfig()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, presence, 7, w, r, wsCfg, zap.NewNop())
	}))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitForEvent(t *testing.T, presence *recordingPresence, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, event := range presence.snapshot() {
			if event == want {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("event %q not observed, got %v", want, presence.snapshot())
}

func TestReconnectKeepsUserOnline(t *testing.T) {
	presence := &recordingPresence{}
	server := newPresenceTestServer(t, presence)

	first, _, err := gorillaws.DefaultDialer.Dial(wsURL(server), nil)
	if err != nil {
		t.Fatalf("first dial failed: %v", err)
	}
	defer first.Close()

	second, _, err := gorillaws.DefaultDialer.Dial(wsURL(server), nil)
	if err != nil {
		t.Fatalf("second dial failed: %v", err)
	}
	defer second.Close()

	// The hub closes the replaced connection when the second one registers.
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatal("expected the replaced connection to be closed")
	}

	// Let the replaced connection's teardown finish, then check it did not
	// flip the still-connected user offline.
	time.Sleep(200 * time.Millisecond)
	events := presence.snapshot()
	onlines := 0
	for _, event := range events {
		if event == "offline" {
			t.Fatalf("user marked offline while a connection is still open: %v", events)
		}
		if event == "online" {
			onlines++
		}
	}
	if onlines != 2 {
		t.Errorf("online events = %d, want 2 (one per dial): %v", onlines, events)
	}
}

func TestDisconnectMarksUserOffline(t *testing.T) {
	presence := &recordingPresence{}
	server := newPresenceTestServer(t, presence)

	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL(server), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	waitForEvent(t, presence, "online")

	conn.Close()
	waitForEvent(t, presence, "offline")
}
