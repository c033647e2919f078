package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/model/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/assistant"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
	chatservice "github.com/apilens/apilens-ai/backend/internal/service/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/credential"
)

func setupRouter(t *testing.T, delay time.Duration) (*chi.Mux, *assistant.Service, *chatservice.Service) {
	t.Helper()

	gen := scenario.NewGenerator(42)
	chatSvc := chatservice.NewService(gen.Narratives().Greeting)
	source := backend.NewStatic()
	creds := credential.NewResolver(credential.NewMemoryStore(), source, "als_demo")
	assistantSvc := assistant.New(chatSvc, gen, creds, source, assistant.Config{MinDelay: delay}, rand.New(rand.NewPCG(1, 1)))
	t.Cleanup(assistantSvc.Close)

	handler := New(assistantSvc, chatSvc)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, assistantSvc, chatSvc
}

func createSession(t *testing.T, r *chi.Mux) sessionView {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte(`{"userId":"u-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var session sessionView
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session
}

func sendMessage(r *chi.Mux, sessionID, text string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(map[string]string{"text": text})
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateSession(t *testing.T) {
	r, _, _ := setupRouter(t, 0)

	session := createSession(t, r)
	if session.ID == "" || !session.Connected || session.Company != "TechCorp Inc" {
		t.Fatalf("expected connected session, got %+v", session)
	}
	if session.Title != "New analysis" {
		t.Fatalf("expected default title, got %q", session.Title)
	}
}

func TestCreateSessionEmptyBody(t *testing.T) {
	r, _, _ := setupRouter(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
}

func TestCreateSessionMalformedBody(t *testing.T) {
	r, _, _ := setupRouter(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte(`{"title":`)))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	r, _, _ := setupRouter(t, 0)

	for _, path := range []string{"/sessions/missing", "/sessions/missing/messages"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.Code)
		}
	}
}

func TestListSessions(t *testing.T) {
	r, _, _ := setupRouter(t, 0)
	createSession(t, r)
	createSession(t, r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/sessions", nil))

	var sessions []sessionView
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
}

func TestSendMessageSchedulesReply(t *testing.T) {
	r, assistantSvc, chatSvc := setupRouter(t, 0)
	session := createSession(t, r)

	resp := sendMessage(r, session.ID, "Show me cost breakdown by vendor and model")
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}

	var accepted acceptedMessage
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode accepted: %v", err)
	}
	if accepted.Scenario != "cost-breakdown" || accepted.Message.Role != chat.RoleUser {
		t.Fatalf("unexpected accepted message %+v", accepted)
	}

	deadline := time.Now().Add(2 * time.Second)
	for assistantSvc.Busy(session.ID) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	messages, err := chatSvc.LoadTranscript(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected greeting, question and reply, got %d messages", len(messages))
	}
	reply := messages[2]
	if reply.Role != chat.RoleAI || reply.Analytics == nil || len(reply.Analytics.Charts) == 0 {
		t.Fatalf("expected AI reply with charts, got %+v", reply)
	}
}

func TestSendMessageWhilePending(t *testing.T) {
	r, _, _ := setupRouter(t, time.Hour)
	session := createSession(t, r)

	if resp := sendMessage(r, session.ID, "What's my total API spend?"); resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}
	if resp := sendMessage(r, session.ID, "And latency?"); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/sessions/"+session.ID, nil))
	var view sessionView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if !view.ReplyPending {
		t.Fatal("expected replyPending while the reply is scheduled")
	}
}

func TestSendMessageValidation(t *testing.T) {
	r, _, _ := setupRouter(t, 0)
	session := createSession(t, r)

	if resp := sendMessage(r, session.ID, "   "); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if resp := sendMessage(r, "missing", "hello"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
