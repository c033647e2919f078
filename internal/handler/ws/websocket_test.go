package ws

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/service/assistant"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
	chatservice "github.com/apilens/apilens-ai/backend/internal/service/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/credential"
)

type received struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

func startServer(t *testing.T, delay time.Duration) (*httptest.Server, string) {
	t.Helper()

	gen := scenario.NewGenerator(11)
	chatSvc := chatservice.NewService(gen.Narratives().Greeting)
	source := backend.NewStatic()
	creds := credential.NewResolver(credential.NewMemoryStore(), source, "als_demo")
	assistantSvc := assistant.New(chatSvc, gen, creds, source, assistant.Config{MinDelay: delay}, rand.New(rand.NewPCG(9, 9)))
	t.Cleanup(assistantSvc.Close)

	session, err := assistantSvc.StartSession(context.Background(), "", "")
	if err != nil {
		t.Fatalf("StartSession err: %v", err)
	}

	r := chi.NewRouter()
	NewWebSocketHandler(assistantSvc, chatSvc).RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, session.ID
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func next(t *testing.T, conn *websocket.Conn) received {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocketMessageFlow(t *testing.T) {
	server, sessionID := startServer(t, 0)
	conn := dial(t, server, sessionID)

	if msg := next(t, conn); msg.Type != "connected" {
		t.Fatalf("expected connected, got %s", msg.Type)
	}

	if err := conn.WriteJSON(map[string]string{"type": "message", "text": "Show me cost breakdown by vendor"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := []string{"user", "typing", "message"}
	for _, kind := range want {
		msg := next(t, conn)
		if msg.Type != kind {
			t.Fatalf("expected %s, got %s (%s)", kind, msg.Type, msg.Data)
		}
		if kind == "message" && !strings.Contains(string(msg.Data), "analyticsPayload") {
			t.Fatalf("expected analytics payload in reply, got %s", msg.Data)
		}
	}
}

func TestWebSocketDataTextAndCancel(t *testing.T) {
	server, sessionID := startServer(t, time.Hour)
	conn := dial(t, server, sessionID)
	next(t, conn)

	conn.WriteJSON(map[string]any{"type": "text", "data": map[string]string{"text": "hello"}})
	if msg := next(t, conn); msg.Type != "user" {
		t.Fatalf("expected user, got %s", msg.Type)
	}
	if msg := next(t, conn); msg.Type != "typing" {
		t.Fatalf("expected typing, got %s", msg.Type)
	}

	conn.WriteJSON(map[string]string{"type": "message", "text": "again"})
	if msg := next(t, conn); msg.Type != "error" || !strings.Contains(string(msg.Data), "still being prepared") {
		t.Fatalf("expected pending error, got %s %s", msg.Type, msg.Data)
	}

	conn.WriteJSON(map[string]string{"type": "cancel"})
	if msg := next(t, conn); msg.Type != "canceled" {
		t.Fatalf("expected canceled, got %s", msg.Type)
	}
}

func TestWebSocketRejectsBadInput(t *testing.T) {
	server, sessionID := startServer(t, 0)
	conn := dial(t, server, sessionID)
	next(t, conn)

	conn.WriteJSON(map[string]string{"type": "audio"})
	if msg := next(t, conn); msg.Type != "error" {
		t.Fatalf("expected error for unsupported type, got %s", msg.Type)
	}

	conn.WriteJSON(map[string]string{"type": "message", "sessionId": "other", "text": "hi"})
	if msg := next(t, conn); msg.Type != "error" || !strings.Contains(string(msg.Data), "session mismatch") {
		t.Fatalf("expected session mismatch, got %s %s", msg.Type, msg.Data)
	}

	conn.WriteJSON(map[string]string{"type": "ping"})
	if msg := next(t, conn); msg.Type != "pong" {
		t.Fatalf("expected pong, got %s", msg.Type)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	server, _ := startServer(t, 0)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %v", resp)
	}
}
