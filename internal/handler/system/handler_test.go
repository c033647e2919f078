package system

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
	"github.com/apilens/apilens-ai/backend/internal/service/credential"
)

type downSource struct{}

func (downSource) Snapshot(context.Context, string) (*analytics.Snapshot, error) {
	return nil, errors.New("connection refused")
}

func (downSource) ValidateKey(context.Context, string) (*analytics.AuthResult, error) {
	return nil, errors.New("connection refused")
}

func (downSource) Health(context.Context) (*analytics.Health, error) {
	return nil, errors.New("connection refused")
}

func setupRouter(source backend.Source, fallback string) *chi.Mux {
	creds := credential.NewResolver(credential.NewMemoryStore(), source, fallback)
	r := chi.NewRouter()
	New(scenario.NewGenerator(1), creds, source, true).RegisterRoutes(r)
	return r
}

func TestHealth(t *testing.T) {
	resp := httptest.NewRecorder()
	setupRouter(backend.NewStatic(), "").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Backend == nil || body.Backend.Status != "healthy" {
		t.Fatalf("unexpected health %+v", body)
	}
}

func TestHealthDegraded(t *testing.T) {
	resp := httptest.NewRecorder()
	setupRouter(downSource{}, "").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body healthResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Status != "degraded" || body.Error == "" {
		t.Fatalf("expected degraded health, got %+v", body)
	}
}

func TestClassify(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader(`{"text":"Which models have the highest latency?"}`))
	resp := httptest.NewRecorder()
	setupRouter(backend.NewStatic(), "").ServeHTTP(resp, req)

	var body classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Scenario != "latency-analysis" || !body.Attach || body.Narrative == "" {
		t.Fatalf("unexpected classification %+v", body)
	}
}

func TestInsights(t *testing.T) {
	resp := httptest.NewRecorder()
	setupRouter(backend.NewStatic(), "als_demo").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/snapshot/insights", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Company  string `json:"company"`
		Insights struct {
			Metrics struct {
				TotalRequests int64 `json:"totalRequests"`
			} `json:"metrics"`
		} `json:"insights"`
		Charts []json.RawMessage `json:"charts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Company != "TechCorp Inc" || body.Insights.Metrics.TotalRequests != 4 || len(body.Charts) != 3 {
		t.Fatalf("unexpected insights %+v", body)
	}
}

func TestInsightsWithoutCredential(t *testing.T) {
	cases := []struct {
		source   backend.Source
		fallback string
		want     int
	}{
		{backend.NewStatic(), "", http.StatusUnauthorized},
		{backend.NewStatic(), "bad-key", http.StatusUnauthorized},
		{downSource{}, "als_demo", http.StatusBadGateway},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		setupRouter(tc.source, tc.fallback).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/snapshot/insights", nil))
		if resp.Code != tc.want {
			t.Fatalf("fallback %q: expected %d, got %d", tc.fallback, tc.want, resp.Code)
		}
	}
}
