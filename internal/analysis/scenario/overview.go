package scenario

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

// overview charts the backend snapshot itself. Without one it degrades to
// placeholder metrics and an empty bar chart.
func (g *Generator) overview(snap *analytics.Snapshot) analytics.Payload {
	rows := []analytics.Row{}
	requests, cost, latency := "0", "$0", "0ms"

	if snap != nil {
		for _, b := range snap.Breakdown {
			rows = append(rows, row("name", b.Vendor+"/"+b.Model, "requests", b.RequestCount, "cost", b.TotalCost))
		}
		requests = humanize.Comma(snap.Summary.TotalRequests)
		cost = fmt.Sprintf("$%.2f", snap.Summary.TotalCost)
		latency = fmt.Sprintf("%.1fms", snap.Summary.AvgLatency)
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartBar, "API Usage Overview", rows),
		},
		Metrics: []analytics.Metric{
			metric("Total Requests", requests, "", analytics.TrendNeutral),
			metric("Total Cost", cost, "", analytics.TrendNeutral),
			metric("Avg Latency", latency, "", analytics.TrendNeutral),
		},
	}
}
