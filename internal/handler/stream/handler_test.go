package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/model/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/assistant"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
	chatservice "github.com/apilens/apilens-ai/backend/internal/service/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/credential"
)

func newHandler(t *testing.T, delay time.Duration) (*Handler, *assistant.Service, chat.Session) {
	t.Helper()

	gen := scenario.NewGenerator(3)
	chatSvc := chatservice.NewService(gen.Narratives().Greeting)
	source := backend.NewStatic()
	creds := credential.NewResolver(credential.NewMemoryStore(), source, "als_demo")
	assistantSvc := assistant.New(chatSvc, gen, creds, source, assistant.Config{MinDelay: delay}, rand.New(rand.NewPCG(5, 5)))
	t.Cleanup(assistantSvc.Close)

	session, err := assistantSvc.StartSession(context.Background(), "", "")
	if err != nil {
		t.Fatalf("StartSession err: %v", err)
	}
	return New(assistantSvc), assistantSvc, session
}

func readEvents(t *testing.T, body string) []StreamResponse {
	t.Helper()

	var events []StreamResponse
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev StreamResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("decode event %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func eventNames(events []StreamResponse) string {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Event
	}
	return strings.Join(names, ",")
}

func TestStreamSendsReply(t *testing.T) {
	handler, _, session := newHandler(t, 0)
	resp := httptest.NewRecorder()

	err := handler.HandleStreamRequest(context.Background(), resp, session.ID, "Which models have the highest latency?")
	if err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %s", ct)
	}

	events := readEvents(t, resp.Body.String())
	if got := eventNames(events); got != "start,user,typing,message,end" {
		t.Fatalf("expected start,user,typing,message,end, got %s", got)
	}
	if events[0].Scenario != "latency-analysis" {
		t.Fatalf("expected latency-analysis, got %s", events[0].Scenario)
	}
	if events[3].Message == nil || events[3].Message.Analytics == nil {
		t.Fatalf("expected reply with analytics, got %+v", events[3])
	}
}

func TestStreamFollowsPendingReply(t *testing.T) {
	handler, assistantSvc, session := newHandler(t, 20*time.Millisecond)

	if _, _, err := assistantSvc.Ask(context.Background(), session.ID, "", "hello"); err != nil {
		t.Fatalf("Ask err: %v", err)
	}

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, session.ID, ""); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	if got := eventNames(readEvents(t, resp.Body.String())); got != "start,typing,message,end" {
		t.Fatalf("expected start,typing,message,end, got %s", got)
	}
}

func TestStreamErrorsBeforeHeaders(t *testing.T) {
	handler, _, session := newHandler(t, time.Hour)

	err := handler.HandleStreamRequest(context.Background(), httptest.NewRecorder(), session.ID, "")
	if !errors.Is(err, ErrNothingPending) || StatusFor(err) != http.StatusNotFound {
		t.Fatalf("expected ErrNothingPending, got %v", err)
	}

	err = handler.HandleStreamRequest(context.Background(), httptest.NewRecorder(), "missing", "hi")
	if StatusFor(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", StatusFor(err))
	}

	if _, _, err := handler.assistant.Ask(context.Background(), session.ID, "", "first"); err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	resp := httptest.NewRecorder()
	err = handler.HandleStreamRequest(context.Background(), resp, session.ID, "second")
	if StatusFor(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if resp.Body.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", resp.Body.String())
	}
}

func TestStreamCanceledReply(t *testing.T) {
	handler, assistantSvc, session := newHandler(t, time.Hour)

	_, pending, err := assistantSvc.Ask(context.Background(), session.ID, "", "errors please")
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		pending.Cancel()
	}()

	resp := httptest.NewRecorder()
	if err := handler.HandleStreamRequest(context.Background(), resp, session.ID, ""); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	events := readEvents(t, resp.Body.String())
	last := events[len(events)-1]
	if last.Event != "error" || last.Error == "" {
		t.Fatalf("expected trailing error event, got %+v", last)
	}
}
