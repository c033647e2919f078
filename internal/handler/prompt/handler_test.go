package prompt

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/model/prompt"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New(prompt.NewMemoryStore(prompt.Seed())).RegisterRoutes(r)
	return r
}

func TestListPrompts(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/prompts", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var prompts []prompt.QuickPrompt
	if err := json.NewDecoder(resp.Body).Decode(&prompts); err != nil {
		t.Fatalf("decode prompts: %v", err)
	}
	if len(prompts) != 6 {
		t.Fatalf("expected 6 prompts, got %d", len(prompts))
	}
	for _, p := range prompts {
		if got := scenario.Classify(p.Text); string(got) != p.Scenario {
			t.Fatalf("prompt %s: expected %s, got %s", p.ID, p.Scenario, got)
		}
		if !scenario.ShouldAttach(p.Text) {
			t.Fatalf("prompt %s: expected charts to be attached", p.ID)
		}
	}
}

func TestGetPrompt(t *testing.T) {
	r := setupRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/prompts/latency", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/prompts/unknown", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
