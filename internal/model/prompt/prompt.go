package prompt

// QuickPrompt is a suggested question shown above the chat input.
type QuickPrompt struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	// Scenario is the registry key the text classifies to.
	Scenario string `json:"scenario"`
}

// Seed returns the six built-in suggestions.
func Seed() []QuickPrompt {
	return []QuickPrompt{
		{ID: "monthly-spend", Text: "What's my total API spend this month vs last month?", Scenario: "monthly-comparison"},
		{ID: "latency", Text: "Which models have the highest latency?", Scenario: "latency-analysis"},
		{ID: "cost-breakdown", Text: "Show me cost breakdown by vendor and model", Scenario: "cost-breakdown"},
		{ID: "usage-pattern", Text: "What's my usage pattern throughout the day?", Scenario: "usage-pattern"},
		{ID: "expensive-endpoints", Text: "Show me the top 5 most expensive API endpoints", Scenario: "expensive-endpoints"},
		{ID: "errors", Text: "How are errors distributed across my API calls?", Scenario: "error-distribution"},
	}
}
