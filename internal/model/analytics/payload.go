package analytics

// Trending marks the direction shown next to a metric.
type Trending string

const (
	TrendUp      Trending = "up"
	TrendDown    Trending = "down"
	TrendNeutral Trending = "neutral"
)

// Metric is a preformatted headline number.
type Metric struct {
	Label    string   `json:"label"`
	Value    string   `json:"value"`
	Trend    string   `json:"trend"`
	Trending Trending `json:"trending"`
}

// Payload is the chart and metric bundle attached to an AI reply.
type Payload struct {
	Kind    string       `json:"kind"`
	Charts  []Descriptor `json:"charts"`
	Metrics []Metric     `json:"metrics"`
}

// Metric looks up a metric by label.
func (p Payload) Metric(label string) (Metric, bool) {
	for _, m := range p.Metrics {
		if m.Label == label {
			return m, true
		}
	}
	return Metric{}, false
}

// Chart looks up a chart by title.
func (p Payload) Chart(title string) (Descriptor, bool) {
	for _, c := range p.Charts {
		if c.Title == title {
			return c, true
		}
	}
	return Descriptor{}, false
}
