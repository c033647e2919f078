package scenario

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

// Generator builds scenario payloads. Randomised series draw from the injected
// source so a fixed seed and clock give the same output.
type Generator struct {
	mu         sync.Mutex
	rng        *rand.Rand
	now        func() time.Time
	narratives *Narratives
}

// NewGenerator seeds a PCG source and uses the wall clock.
func NewGenerator(seed uint64) *Generator {
	return NewGeneratorWith(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), time.Now)
}

// NewGeneratorWith uses the given source and clock.
func NewGeneratorWith(rng *rand.Rand, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rng, now: now, narratives: defaultNarratives}
}

// WithNarratives swaps the reply catalog.
func (g *Generator) WithNarratives(n *Narratives) *Generator {
	g.narratives = n
	return g
}

// Narratives returns the reply catalog in use.
func (g *Generator) Narratives() *Narratives {
	return g.narratives
}

// Result is the outcome of one pass over the registry.
type Result struct {
	Key     Key
	Attach  bool
	Text    string
	Payload *analytics.Payload
}

// Resolve classifies text once and builds both the narrative and, when the
// attach gate passes, the chart payload of the same scenario.
func (g *Generator) Resolve(text string, snap *analytics.Snapshot) Result {
	q := newQuery(text)
	s := match(q)
	res := Result{Key: s.Key, Attach: ShouldAttach(text), Text: g.narratives.describe(s, q, snap)}
	if res.Attach {
		payload := g.build(s, snap)
		res.Payload = &payload
	}
	return res
}

// Describe returns the narrative for text.
func (g *Generator) Describe(text string, snap *analytics.Snapshot) string {
	q := newQuery(text)
	return g.narratives.describe(match(q), q, snap)
}

// Generate builds the payload of a scenario. Unknown keys fall back to overview.
func (g *Generator) Generate(key Key, snap *analytics.Snapshot) analytics.Payload {
	s, ok := Lookup(key)
	if !ok {
		s = overview
	}
	return g.build(s, snap)
}

func (g *Generator) build(s Scenario, snap *analytics.Snapshot) analytics.Payload {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := s.chart(g, snap)
	p.Kind = string(s.Key)
	return p
}

func (g *Generator) float() float64 {
	return g.rng.Float64()
}

// dateRange lists the last days calendar dates, oldest first, ending today.
func (g *Generator) dateRange(days int) []string {
	today := g.now().UTC()
	dates := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		dates = append(dates, today.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return dates
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func row(kv ...any) analytics.Row {
	return analytics.NewRow(kv...)
}

func chart(t analytics.ChartType, title string, rows []analytics.Row) analytics.Descriptor {
	return analytics.Descriptor{Type: t, Title: title, Rows: rows}
}

func metric(label, value, trend string, trending analytics.Trending) analytics.Metric {
	return analytics.Metric{Label: label, Value: value, Trend: trend, Trending: trending}
}
