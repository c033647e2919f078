package backend

import (
	"context"
	"strings"
	"time"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

// DemoKeyPrefix marks keys the demo source accepts.
const DemoKeyPrefix = "als_"

// Static serves built-in demo data and needs no network.
type Static struct {
	started time.Time
	now     func() time.Time
}

// NewStatic returns the demo source.
func NewStatic() *Static {
	now := time.Now().UTC()
	return &Static{started: now, now: func() time.Time { return time.Now().UTC() }}
}

// DemoSnapshot is the usage summary the demo source returns.
func DemoSnapshot() *analytics.Snapshot {
	return &analytics.Snapshot{
		Summary: analytics.Summary{
			TotalRequests:   4,
			UniqueCompanies: 1,
			UniqueModels:    1,
			TotalCost:       0.021,
			AvgLatency:      400,
		},
		Breakdown: []analytics.BreakdownRow{{
			CompanyName:       "TechCorp Inc",
			Vendor:            "openai",
			Model:             "gpt-4",
			RequestCount:      4,
			TotalCost:         0.021,
			AvgCost:           0.00525,
			TotalInputTokens:  350,
			TotalOutputTokens: 175,
			AvgLatency:        400,
		}},
		SchemaInfo: analytics.SchemaInfo{
			Optimized:     true,
			Normalization: "Schema v2 (3NF)",
			Tables:        8,
			ForeignKeys:   true,
		},
	}
}

func (s *Static) Snapshot(ctx context.Context, apiKey string) (*analytics.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	return DemoSnapshot(), nil
}

// ValidateKey accepts any key with the demo prefix.
func (s *Static) ValidateKey(ctx context.Context, apiKey string) (*analytics.AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	if !strings.HasPrefix(apiKey, DemoKeyPrefix) {
		return nil, ErrUnauthorized
	}
	return &analytics.AuthResult{
		Valid:       true,
		CompanyID:   "d74d5aa8-d092-4998-87eb-2b5ee447e710",
		CompanyName: "TechCorp Inc",
	}, nil
}

func (s *Static) Health(ctx context.Context) (*analytics.Health, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()
	return &analytics.Health{
		Status:        "healthy",
		Version:       "1.0.0",
		Timestamp:     now.Format(time.RFC3339),
		UptimeSeconds: now.Sub(s.started).Seconds(),
	}, nil
}
