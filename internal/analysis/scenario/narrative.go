package scenario

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

//go:embed narratives.toml
var narrativeFile string

// Narratives holds the canned reply texts.
type Narratives struct {
	Greeting    string `toml:"greeting"`
	Connecting  string `toml:"connecting"`
	Help        string `toml:"help"`
	CostSummary string `toml:"cost_summary"`

	Scenario map[string]struct {
		Text string `toml:"text"`
	} `toml:"scenario"`
}

var defaultNarratives = mustLoadNarratives(narrativeFile)

// DefaultNarratives returns the built-in reply catalog.
func DefaultNarratives() *Narratives {
	return defaultNarratives
}

// LoadNarratives decodes a TOML catalog and checks every scenario has a text.
func LoadNarratives(data string) (*Narratives, error) {
	var n Narratives
	if _, err := toml.Decode(data, &n); err != nil {
		return nil, fmt.Errorf("decode narratives: %w", err)
	}
	if n.Greeting == "" || n.Connecting == "" || n.Help == "" || n.CostSummary == "" {
		return nil, fmt.Errorf("narratives: greeting, connecting, help and cost_summary are required")
	}
	for _, s := range registry {
		if n.Scenario[string(s.Key)].Text == "" {
			return nil, fmt.Errorf("narratives: missing text for %s", s.Key)
		}
	}
	return &n, nil
}

func mustLoadNarratives(data string) *Narratives {
	n, err := LoadNarratives(data)
	if err != nil {
		panic(err)
	}
	return n
}

// For returns the fixed text of a scenario.
func (n *Narratives) For(key Key) string {
	return n.Scenario[string(key)].Text
}

func (n *Narratives) describe(s Scenario, q query, snap *analytics.Snapshot) string {
	if s.text != nil {
		return s.text(n, s.Key, q, snap)
	}
	return n.For(s.Key)
}

func overviewText(n *Narratives, _ Key, q query, snap *analytics.Snapshot) string {
	if snap == nil {
		return n.Connecting
	}
	if q.any("cost", "spend") {
		return fmt.Sprintf(n.CostSummary, fmt.Sprintf("%.2f", snap.Summary.TotalCost))
	}
	return n.Help
}
