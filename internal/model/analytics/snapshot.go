package analytics

// Snapshot is the read-only usage summary served by the ApiLens backend.
type Snapshot struct {
	Summary    Summary        `json:"summary"`
	Breakdown  []BreakdownRow `json:"breakdown"`
	SchemaInfo SchemaInfo     `json:"schema_info"`
}

// Summary aggregates the whole account.
type Summary struct {
	TotalRequests   int64   `json:"total_requests"`
	UniqueCompanies int     `json:"unique_companies"`
	UniqueModels    int     `json:"unique_models"`
	TotalCost       float64 `json:"total_cost"`
	AvgLatency      float64 `json:"avg_latency"`
}

// BreakdownRow is one company/vendor/model usage line.
type BreakdownRow struct {
	CompanyName       string  `json:"company_name"`
	Vendor            string  `json:"vendor"`
	Model             string  `json:"model"`
	RequestCount      int64   `json:"request_count"`
	TotalCost         float64 `json:"total_cost"`
	AvgCost           float64 `json:"avg_cost"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	AvgLatency        float64 `json:"avg_latency"`
}

// SchemaInfo describes the backend storage layout.
type SchemaInfo struct {
	Optimized     bool   `json:"optimized"`
	Normalization string `json:"normalization"`
	Tables        int    `json:"tables"`
	ForeignKeys   bool   `json:"foreign_keys"`
}

// AuthResult is the backend answer to a key validation.
type AuthResult struct {
	Valid       bool   `json:"valid"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
}

// Health is the backend detailed health payload.
type Health struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
