package scenario

import (
	"math"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

func (g *Generator) monthlyComparison(_ *analytics.Snapshot) analytics.Payload {
	dates := g.dateRange(30)
	daily := make([]analytics.Row, len(dates))
	for i, date := range dates {
		wave := math.Sin(float64(i) / 3)
		thisMonth := 140 + g.float()*50 + wave*25
		lastMonth := 120 + g.float()*40 + wave*20
		daily[i] = row("date", date, "thisMonth", thisMonth, "lastMonth", lastMonth)
	}

	vendors := []analytics.Row{
		row("name", "OpenAI", "value", 2940.38, "percentage", 65),
		row("name", "Anthropic", "value", 1130.92, "percentage", 25),
		row("name", "Google", "value", 361.89, "percentage", 8),
		row("name", "Others", "value", 90.48, "percentage", 2),
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartArea, "Daily Cost Comparison - This Month vs Last Month", daily),
			chart(analytics.ChartPie, "Cost Distribution by Vendor (This Month)", vendors),
		},
		Metrics: []analytics.Metric{
			metric("This Month", "$4,523.67", "+17.7%", analytics.TrendUp),
			metric("Last Month", "$3,842.45", "", analytics.TrendNeutral),
			metric("Projected", "$4,750.00", "+5.0%", analytics.TrendUp),
		},
	}
}

func (g *Generator) latencyAnalysis(_ *analytics.Snapshot) analytics.Payload {
	scatter := []analytics.Row{
		row("model", "Claude-2", "latency", 892, "requests", 1234, "cost", 0.917),
		row("model", "GPT-4-Turbo", "latency", 654, "requests", 3456, "cost", 0.589),
		row("model", "PaLM-2", "latency", 423, "requests", 789, "cost", 0.459),
		row("model", "GPT-3.5", "latency", 287, "requests", 8901, "cost", 0.102),
		row("model", "Mistral-7B", "latency", 156, "requests", 2345, "cost", 0.089),
	}
	ranking := []analytics.Row{
		row("name", "Mistral-7B", "latency", 156, "type", "Fast"),
		row("name", "GPT-3.5", "latency", 287, "type", "Fast"),
		row("name", "PaLM-2", "latency", 423, "type", "Medium"),
		row("name", "GPT-4-Turbo", "latency", 654, "type", "Slow"),
		row("name", "Claude-2", "latency", 892, "type", "Slow"),
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartScatter, "Latency vs Request Volume by Model", scatter),
			chart(analytics.ChartBar, "Model Latency Ranking", ranking),
		},
		Metrics: []analytics.Metric{
			metric("Avg Latency", "487ms", "-12%", analytics.TrendDown),
			metric("P95 Latency", "1,234ms", "-8%", analytics.TrendDown),
			metric("Timeout Rate", "0.12%", "-0.05%", analytics.TrendDown),
		},
	}
}

func (g *Generator) costBreakdown(_ *analytics.Snapshot) analytics.Payload {
	vendors := []analytics.Row{
		row("name", "OpenAI", "cost", 3397.16),
		row("name", "Anthropic", "cost", 1130.92),
		row("name", "Google", "cost", 361.89),
		row("name", "Others", "cost", 90.48),
	}
	models := []analytics.Row{
		row("name", "GPT-4", "value", 2035.65, "percentage", 45),
		row("name", "Claude-3", "value", 1130.92, "percentage", 25),
		row("name", "GPT-3.5", "value", 904.73, "percentage", 20),
		row("name", "Others", "value", 452.37, "percentage", 10),
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartBar, "Cost Distribution by Vendor", vendors),
			chart(analytics.ChartDonut, "Cost Breakdown by Model", models),
		},
		Metrics: []analytics.Metric{
			metric("Total Cost", "$4,523.67", "+17.7%", analytics.TrendUp),
			metric("Avg Cost/Call", "$0.287", "-5.2%", analytics.TrendDown),
			metric("Active Vendors", "4", "+1", analytics.TrendUp),
		},
	}
}

var topEndpoints = []struct {
	path      string
	calls     int
	totalCost float64
	avgCost   float64
	base      float64
	spread    float64
}{
	{"/api/v1/video/analyze", 89, 234.56, 2.640, 30, 10},
	{"/api/v2/image-analysis", 342, 567.89, 1.660, 80, 20},
	{"/api/v1/chat/complete-advanced", 1234, 1130.92, 0.917, 160, 30},
	{"/api/v1/audio/transcribe", 567, 456.78, 0.806, 65, 15},
	{"/api/v1/chat/complete", 3456, 2035.65, 0.589, 290, 40},
}

func (g *Generator) expensiveEndpoints(_ *analytics.Snapshot) analytics.Payload {
	ranked := make([]analytics.Row, 0, len(topEndpoints))
	for _, e := range topEndpoints {
		ranked = append(ranked, row("name", e.path, "totalCost", e.totalCost, "avgCost", e.avgCost, "calls", e.calls))
	}

	dates := g.dateRange(7)
	trends := make([]analytics.Row, len(dates))
	for i, date := range dates {
		r := row("date", date)
		for _, e := range topEndpoints {
			r = append(r, analytics.Cell{Key: e.path, Value: round2(e.base + g.float()*e.spread)})
		}
		trends[i] = r
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartBar, "Top 5 Most Expensive API Endpoints", ranked),
			chart(analytics.ChartLine, "7-Day Cost Trends for Top Endpoints", trends),
		},
		Metrics: []analytics.Metric{
			metric("Top Endpoint Cost", "$2,035.65", "+23%", analytics.TrendUp),
			metric("Combined Top 5", "$4,425.80", "+19%", analytics.TrendUp),
			metric("Cost Concentration", "97.8%", "+2.1%", analytics.TrendUp),
		},
	}
}
