// Package credential resolves the ApiLens key used to fetch usage snapshots.
package credential

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
)

// Status classifies a resolution outcome.
type Status string

const (
	StatusOK          Status = "ok"
	StatusMissing     Status = "missing"
	StatusInvalid     Status = "invalid"
	StatusUnavailable Status = "unavailable"
)

// Result is what Resolve found. Err is set for invalid and unavailable.
type Result struct {
	Status      Status `json:"status"`
	APIKey      string `json:"-"`
	CompanyID   string `json:"companyId,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Err         error  `json:"-"`
}

// OK reports whether a usable key was found.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Provider yields the key for the current deployment.
type Provider interface {
	Resolve(ctx context.Context) Result
}

// Validator checks a key against the backend.
type Validator interface {
	ValidateKey(ctx context.Context, apiKey string) (*analytics.AuthResult, error)
}

// Resolver tries the stored key first, then the configured fallback. A stored
// key the backend rejects is removed; an accepted fallback is stored.
type Resolver struct {
	store     Store
	validator Validator
	fallback  string
}

// NewResolver wires a store, a validator and an optional fallback key.
func NewResolver(store Store, validator Validator, fallback string) *Resolver {
	return &Resolver{store: store, validator: validator, fallback: fallback}
}

// Resolve never returns an error; failures are folded into Result.
func (r *Resolver) Resolve(ctx context.Context) Result {
	rejected := false

	stored, err := r.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNoKey):
	case err != nil:
		log.Printf("[credential] load stored key failed: %v", err)
	default:
		res := r.check(ctx, stored)
		if res.Status != StatusInvalid {
			return res
		}
		rejected = true
		if err := r.store.Remove(ctx); err != nil {
			log.Printf("[credential] remove rejected key failed: %v", err)
		}
	}

	if r.fallback == "" {
		if rejected {
			return Result{Status: StatusInvalid, Err: backend.ErrUnauthorized}
		}
		return Result{Status: StatusMissing}
	}

	res := r.check(ctx, r.fallback)
	if res.OK() {
		if err := r.store.Save(ctx, r.fallback); err != nil {
			log.Printf("[credential] store key failed: %v", err)
		}
	}
	return res
}

func (r *Resolver) check(ctx context.Context, key string) Result {
	auth, err := r.validator.ValidateKey(ctx, key)
	switch {
	case err == nil:
		return Result{Status: StatusOK, APIKey: key, CompanyID: auth.CompanyID, CompanyName: auth.CompanyName}
	case errors.Is(err, backend.ErrUnauthorized):
		return Result{Status: StatusInvalid, Err: err}
	default:
		return Result{Status: StatusUnavailable, Err: fmt.Errorf("validate key: %w", err)}
	}
}
