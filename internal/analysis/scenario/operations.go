package scenario

import (
	"fmt"
	"math"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

func (g *Generator) errorDistribution(_ *analytics.Snapshot) analytics.Payload {
	byType := []analytics.Row{
		row("name", "Rate Limit (429)", "value", 234, "percentage", 45.2),
		row("name", "Timeout (504)", "value", 123, "percentage", 23.7),
		row("name", "Bad Request (400)", "value", 89, "percentage", 17.2),
		row("name", "Server Error (500)", "value", 45, "percentage", 8.7),
		row("name", "Auth Failed (401)", "value", 27, "percentage", 5.2),
	}
	byVendor := []analytics.Row{
		row("vendor", "OpenAI", "errors", 312, "errorRate", 2.3),
		row("vendor", "Anthropic", "errors", 134, "errorRate", 3.9),
		row("vendor", "Google", "errors", 45, "errorRate", 1.2),
		row("vendor", "Others", "errors", 27, "errorRate", 0.8),
	}

	hourly := make([]analytics.Row, 24)
	for hour := range hourly {
		busy := 0.0
		if hour >= 9 && hour <= 17 {
			busy = 10
		}
		hourly[hour] = row(
			"hour", hour,
			"Rate Limit", math.Floor(5+g.float()*15+busy),
			"Timeout", math.Floor(2+g.float()*8),
			"Bad Request", math.Floor(1+g.float()*5),
			"Server Error", math.Floor(g.float()*3),
			"Auth Failed", math.Floor(g.float()*2),
		)
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartDonut, "Error Distribution by Type", byType),
			chart(analytics.ChartBar, "Error Rate by Vendor", byVendor),
			chart(analytics.ChartArea, "24-Hour Error Pattern", hourly),
		},
		Metrics: []analytics.Metric{
			metric("Total Errors", "518", "-12%", analytics.TrendDown),
			metric("Error Rate", "3.3%", "-0.5%", analytics.TrendDown),
			metric("MTTR", "4.2 min", "-1.3 min", analytics.TrendDown),
		},
	}
}

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func hourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// baseUsage is the weekly load shape before jitter.
func baseUsage(hour int, day string) float64 {
	weekend := day == "Sat" || day == "Sun"
	switch {
	case hour >= 9 && hour <= 17 && !weekend:
		return 150 + math.Sin(float64(hour-9)*math.Pi/8)*100
	case hour < 6:
		return 10
	case hour >= 18:
		return 40
	case weekend:
		return 20
	default:
		return 50
	}
}

func (g *Generator) usagePattern(_ *analytics.Snapshot) analytics.Payload {
	heat := make([]analytics.Row, 0, 24*len(weekdays))
	for hour := 0; hour < 24; hour++ {
		for _, day := range weekdays {
			usage := math.Floor(baseUsage(hour, day) + g.float()*30 - 15)
			heat = append(heat, row("hour", hourLabel(hour), "day", day, "errors", math.Max(0, usage)))
		}
	}

	hourly := make([]analytics.Row, 24)
	for hour := range hourly {
		load := 100.0
		if hour >= 9 && hour <= 17 {
			load = 400
		}
		peak := 1.0
		if hour == 14 {
			peak = 1.5
		}
		volume := (load + g.float()*100) * peak
		lunch := 0.0
		if hour >= 12 && hour <= 15 {
			lunch = 100
		}
		hourly[hour] = row(
			"hour", hourLabel(hour),
			"requests", math.Floor(volume),
			"cost", round2(volume*0.287),
			"avgLatency", math.Floor(300+g.float()*200+lunch),
		)
	}

	weekly := []analytics.Row{
		row("day", "Monday", "requests", 15234, "cost", 4372.36),
		row("day", "Tuesday", "requests", 16789, "cost", 4818.57),
		row("day", "Wednesday", "requests", 17234, "cost", 4946.17),
		row("day", "Thursday", "requests", 16890, "cost", 4847.43),
		row("day", "Friday", "requests", 14567, "cost", 4180.73),
		row("day", "Saturday", "requests", 3456, "cost", 991.87),
		row("day", "Sunday", "requests", 2890, "cost", 829.43),
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartHeatmap, "Weekly Usage Heatmap", heat),
			chart(analytics.ChartLine, "24-Hour Usage Pattern", hourly),
			chart(analytics.ChartBar, "Weekly Usage Distribution", weekly),
		},
		Metrics: []analytics.Metric{
			metric("Peak Hour", "14:00", "No change", analytics.TrendNeutral),
			metric("Off-Peak Savings", "$892.34", "+15%", analytics.TrendUp),
			metric("Weekend Usage", "8.7%", "-2.3%", analytics.TrendDown),
		},
	}
}
