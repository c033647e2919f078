package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apilens/apilens-ai/backend/internal/service/backend"
)

func newMockBackend(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/proxy/stats/optimized", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer als_good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(backend.DemoSnapshot())
	})
	r.Post("/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			APIKey string `json:"api_key"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.APIKey != "als_good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"valid":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"valid":true,"company_id":"c-1","company_name":"TechCorp Inc"}`))
	})
	r.Get("/health/detailed", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","version":"1.0.0","timestamp":"2025-03-14T00:00:00Z","uptime_seconds":12.5}`))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientSnapshot(t *testing.T) {
	srv := newMockBackend(t)
	client := backend.NewClient(srv.URL+"/", time.Second)

	snap, err := client.Snapshot(context.Background(), "als_good")
	if err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}
	if snap.Summary.TotalRequests != 4 || len(snap.Breakdown) != 1 || snap.Breakdown[0].CompanyName != "TechCorp Inc" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.SchemaInfo.Normalization != "Schema v2 (3NF)" {
		t.Fatalf("expected schema info, got %+v", snap.SchemaInfo)
	}
}

func TestClientSnapshotStatusError(t *testing.T) {
	srv := newMockBackend(t)
	client := backend.NewClient(srv.URL, time.Second)

	_, err := client.Snapshot(context.Background(), "als_other")
	var statusErr *backend.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if !errors.Is(err, backend.ErrUnauthorized) {
		t.Fatalf("expected 401 to match ErrUnauthorized")
	}
}

func TestClientValidateKey(t *testing.T) {
	srv := newMockBackend(t)
	client := backend.NewClient(srv.URL, time.Second)
	ctx := context.Background()

	auth, err := client.ValidateKey(ctx, "als_good")
	if err != nil {
		t.Fatalf("ValidateKey err: %v", err)
	}
	if auth.CompanyName != "TechCorp Inc" || auth.CompanyID != "c-1" {
		t.Fatalf("unexpected auth: %+v", auth)
	}

	if _, err := client.ValidateKey(ctx, "bad"); !errors.Is(err, backend.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := client.ValidateKey(ctx, ""); !errors.Is(err, backend.ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestClientHealth(t *testing.T) {
	srv := newMockBackend(t)
	health, err := backend.NewClient(srv.URL, time.Second).Health(context.Background())
	if err != nil {
		t.Fatalf("Health err: %v", err)
	}
	if health.Status != "healthy" || health.UptimeSeconds != 12.5 {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := newMockBackend(t)
	url := srv.URL
	srv.Close()

	if _, err := backend.NewClient(url, time.Second).Health(context.Background()); err == nil {
		t.Fatal("expected error for closed backend")
	}
}

func TestStaticSource(t *testing.T) {
	src := backend.NewStatic()
	ctx := context.Background()

	if _, err := src.ValidateKey(ctx, "nope"); !errors.Is(err, backend.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	auth, err := src.ValidateKey(ctx, "als_demo")
	if err != nil || !auth.Valid {
		t.Fatalf("expected demo key to validate, got %v", err)
	}
	snap, err := src.Snapshot(ctx, "als_demo")
	if err != nil || snap.Summary.TotalCost != 0.021 {
		t.Fatalf("unexpected demo snapshot %+v, %v", snap, err)
	}
	health, _ := src.Health(ctx)
	if health.Status != "healthy" {
		t.Fatalf("expected healthy, got %s", health.Status)
	}
}
