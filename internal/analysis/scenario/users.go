package scenario

import (
	"fmt"
	"math"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

func activityLevels() []analytics.Row {
	return []analytics.Row{
		row("name", "Power Users (>1000 req/day)", "value", 4, "percentage", 8),
		row("name", "Active Users (100-1000 req/day)", "value", 12, "percentage", 24),
		row("name", "Regular Users (10-100 req/day)", "value", 25, "percentage", 50),
		row("name", "Occasional Users (<10 req/day)", "value", 9, "percentage", 18),
	}
}

func (g *Generator) powerUserPatterns(_ *analytics.Snapshot) analytics.Payload {
	patterns := []analytics.Row{
		row("user", "John Doe", "totalRequests", 4567,
			"favoriteModels", []string{"GPT-4 (65%)", "Claude-3 (25%)", "GPT-3.5 (10%)"},
			"peakHours", "9AM-11AM, 2PM-4PM", "avgRequestSize", "2.3KB", "successRate", "98.8%"),
		row("user", "Jane Smith", "totalRequests", 3456,
			"favoriteModels", []string{"Claude-3 (45%)", "GPT-4 (40%)", "Whisper (15%)"},
			"peakHours", "10AM-12PM, 3PM-5PM", "avgRequestSize", "3.1KB", "successRate", "97.7%"),
		row("user", "Bob Johnson", "totalRequests", 2345,
			"favoriteModels", []string{"GPT-3.5 (60%)", "GPT-4 (30%)", "DALL-E (10%)"},
			"peakHours", "8AM-10AM, 1PM-3PM", "avgRequestSize", "1.8KB", "successRate", "99.2%"),
		row("user", "Alice Williams", "totalRequests", 1890,
			"favoriteModels", []string{"Whisper (70%)", "GPT-4 (20%)", "Claude-3 (10%)"},
			"peakHours", "11AM-1PM, 4PM-6PM", "avgRequestSize", "5.2KB", "successRate", "96.5%"),
	}

	dates := g.dateRange(14)
	trends := make([]analytics.Row, len(dates))
	for i, date := range dates {
		trends[i] = row(
			"date", date,
			"John Doe", math.Floor(150+g.float()*50),
			"Jane Smith", math.Floor(120+g.float()*40),
			"Bob Johnson", math.Floor(80+g.float()*30),
			"Alice Williams", math.Floor(60+g.float()*20),
		)
	}

	costs := []analytics.Row{
		row("user", "John Doe", "thisMonth", 1234.56, "lastMonth", 987.65, "change", "+24.9%"),
		row("user", "Jane Smith", "thisMonth", 987.65, "lastMonth", 876.54, "change", "+12.7%"),
		row("user", "Bob Johnson", "thisMonth", 678.90, "lastMonth", 712.34, "change", "-4.7%"),
		row("user", "Alice Williams", "thisMonth", 567.89, "lastMonth", 423.45, "change", "+34.1%"),
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartTable, "Power User API Patterns", patterns),
			chart(analytics.ChartLine, "14-Day Request Trends - Power Users", trends),
			chart(analytics.ChartBar, "Cost Comparison - Power Users", costs),
		},
		Metrics: []analytics.Metric{
			metric("Power Users", "4", "+1", analytics.TrendUp),
			metric("Combined Requests", "12,258", "+18%", analytics.TrendUp),
			metric("Power User Cost", "$3,469.00", "+19.2%", analytics.TrendUp),
			metric("% of Total Cost", "76.7%", "+3.4%", analytics.TrendUp),
		},
	}
}

var departmentModels = []string{"GPT-4", "Claude-3", "GPT-3.5", "Whisper", "DALL-E"}

// departmentModelUsage fills models a department never called with zero so
// every stacked row carries the same keys.
func departmentModelUsage() []analytics.Row {
	usage := []struct {
		department string
		requests   map[string]float64
	}{
		{"Engineering", map[string]float64{"GPT-4": 15678, "Claude-3": 12345, "GPT-3.5": 6544}},
		{"Data Science", map[string]float64{"GPT-4": 13456, "Whisper": 8765, "Claude-3": 1235}},
		{"Product", map[string]float64{"Claude-3": 6789, "GPT-3.5": 4567, "GPT-4": 989}},
		{"Marketing", map[string]float64{"DALL-E": 4567, "GPT-3.5": 3456, "Claude-3": 878}},
		{"Support", map[string]float64{"GPT-3.5": 3456, "Claude-3": 1678, "GPT-4": 544}},
	}

	rows := make([]analytics.Row, 0, len(usage))
	for _, u := range usage {
		r := row("department", u.department)
		for _, m := range departmentModels {
			r = append(r, analytics.Cell{Key: m, Value: u.requests[m]})
		}
		rows = append(rows, r)
	}
	return rows
}

var departmentLoad = []struct {
	name      string
	base      float64
	spread    float64
	amplitude float64
}{
	{"Engineering", 800, 200, 100},
	{"Data Science", 600, 150, 80},
	{"Product", 300, 100, 50},
	{"Marketing", 200, 80, 40},
	{"Support", 150, 50, 25},
}

func (g *Generator) departmentUsage(_ *analytics.Snapshot) analytics.Payload {
	summary := []analytics.Row{
		row("department", "Engineering", "users", 15, "totalRequests", 34567, "totalCost", 2567.89,
			"avgCostPerUser", 171.19, "topModels", []string{"GPT-4", "Claude-3"}, "growthRate", "+23%"),
		row("department", "Data Science", "users", 8, "totalRequests", 23456, "totalCost", 1234.56,
			"avgCostPerUser", 154.32, "topModels", []string{"GPT-4", "Whisper"}, "growthRate", "+45%"),
		row("department", "Product", "users", 6, "totalRequests", 12345, "totalCost", 567.89,
			"avgCostPerUser", 94.65, "topModels", []string{"Claude-3", "GPT-3.5"}, "growthRate", "+12%"),
		row("department", "Marketing", "users", 5, "totalRequests", 8901, "totalCost", 345.67,
			"avgCostPerUser", 69.13, "topModels", []string{"DALL-E", "GPT-3.5"}, "growthRate", "+67%"),
		row("department", "Support", "users", 4, "totalRequests", 5678, "totalCost", 234.56,
			"avgCostPerUser", 58.64, "topModels", []string{"GPT-3.5", "Claude-3"}, "growthRate", "-8%"),
	}

	dates := g.dateRange(30)
	trends := make([]analytics.Row, len(dates))
	for i, date := range dates {
		wave := math.Sin(float64(i) / 3)
		r := row("date", date)
		for _, d := range departmentLoad {
			r = append(r, analytics.Cell{Key: d.name, Value: math.Floor(d.base + g.float()*d.spread + wave*d.amplitude)})
		}
		trends[i] = r
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartTable, "Department Usage Summary", summary),
			chart(analytics.ChartArea, "30-Day Department Usage Trends", trends),
			chart(analytics.ChartStackedBar, "Model Usage by Department", departmentModelUsage()),
		},
		Metrics: []analytics.Metric{
			metric("Total Departments", "5", "", analytics.TrendNeutral),
			metric("Total Users", "38", "+5", analytics.TrendUp),
			metric("Avg Cost/Dept", "$990.14", "+$123.45", analytics.TrendUp),
			metric("Most Active", "Engineering", "", analytics.TrendNeutral),
		},
	}
}

func (g *Generator) growthRetention(_ *analytics.Snapshot) analytics.Payload {
	dates := g.dateRange(180)
	growth := make([]analytics.Row, 0, len(dates)/3)
	for i, date := range dates {
		base := 20 + math.Floor(float64(i)/30)*5
		total := math.Floor(base + g.float()*3)
		active := math.Floor(base*0.8 + g.float()*2)
		var joined float64
		if i%30 == 15 {
			joined = math.Floor(g.float()*5 + 2)
		} else {
			joined = math.Floor(g.float() * 2)
		}
		// every third day keeps the area readable
		if i%3 == 0 {
			growth = append(growth, row("date", date, "totalUsers", total, "activeUsers", active, "newUsers", joined))
		}
	}

	cohorts := []analytics.Row{
		row("cohort", "Jan 2024", "month0", 100, "month1", 94, "month2", 89, "month3", 85, "month4", 82, "month5", 80),
		row("cohort", "Feb 2024", "month0", 100, "month1", 92, "month2", 87, "month3", 84, "month4", 81, "month5", 79),
		row("cohort", "Mar 2024", "month0", 100, "month1", 95, "month2", 91, "month3", 88, "month4", 86, "month5", 84),
		row("cohort", "Apr 2024", "month0", 100, "month1", 96, "month2", 93, "month3", 90, "month4", 88, "month5", nil),
		row("cohort", "May 2024", "month0", 100, "month1", 97, "month2", 94, "month3", 92, "month4", nil, "month5", nil),
		row("cohort", "Jun 2024", "month0", 100, "month1", 98, "month2", 95, "month3", nil, "month4", nil, "month5", nil),
	}
	segments := []analytics.Row{
		row("segment", "New Users (< 1 month)", "count", 8, "percentage", 16, "avgRequests", 234),
		row("segment", "Growing (1-3 months)", "count", 12, "percentage", 24, "avgRequests", 567),
		row("segment", "Established (3-6 months)", "count", 18, "percentage", 36, "avgRequests", 890),
		row("segment", "Power Users (> 6 months)", "count", 12, "percentage", 24, "avgRequests", 1234),
	}
	churn := []analytics.Row{
		row("name", "Cost concerns", "value", 3, "percentage", 37.5),
		row("name", "Switched provider", "value", 2, "percentage", 25.0),
		row("name", "Project ended", "value", 2, "percentage", 25.0),
		row("name", "Performance issues", "value", 1, "percentage", 12.5),
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartArea, "6-Month User Growth Trends", growth),
			chart(analytics.ChartTable, "User Retention Cohorts", cohorts),
			chart(analytics.ChartBar, "User Segmentation", segments),
			chart(analytics.ChartPie, "Churn Reasons (Last 90 Days)", churn),
		},
		Metrics: []analytics.Metric{
			metric("Total Users", "50", "+8", analytics.TrendUp),
			metric("MAU Growth", "+19%", "+4%", analytics.TrendUp),
			metric("3-Month Retention", "88%", "+3%", analytics.TrendUp),
			metric("Churn Rate", "2.1%", "-0.5%", analytics.TrendDown),
		},
	}
}

func (g *Generator) geographicAnalytics(_ *analytics.Snapshot) analytics.Payload {
	countries := []analytics.Row{
		row("name", "United States", "value", 18, "percentage", 36),
		row("name", "United Kingdom", "value", 8, "percentage", 16),
		row("name", "Germany", "value", 6, "percentage", 12),
		row("name", "Canada", "value", 5, "percentage", 10),
		row("name", "Japan", "value", 4, "percentage", 8),
		row("name", "France", "value", 3, "percentage", 6),
		row("name", "Australia", "value", 3, "percentage", 6),
		row("name", "Others", "value", 3, "percentage", 6),
	}
	regions := []analytics.Row{
		row("region", "North America", "users", 23, "requests", 98234, "avgLatency", 145, "totalCost", 2345.67),
		row("region", "Europe", "users", 17, "requests", 67890, "avgLatency", 234, "totalCost", 1678.90),
		row("region", "Asia Pacific", "users", 7, "requests", 23456, "avgLatency", 456, "totalCost", 567.89),
		row("region", "South America", "users", 2, "requests", 5678, "avgLatency", 567, "totalCost", 123.45),
		row("region", "Africa", "users", 1, "requests", 1234, "avgLatency", 678, "totalCost", 34.56),
	}
	timezones := []analytics.Row{
		row("timezone", "PST/PDT (UTC-8)", "users", 8, "peakHour", "10:00 AM", "avgRequests", 3456),
		row("timezone", "EST/EDT (UTC-5)", "users", 10, "peakHour", "2:00 PM", "avgRequests", 4567),
		row("timezone", "GMT/BST (UTC+0)", "users", 8, "peakHour", "3:00 PM", "avgRequests", 2345),
		row("timezone", "CET/CEST (UTC+1)", "users", 9, "peakHour", "4:00 PM", "avgRequests", 3456),
		row("timezone", "JST (UTC+9)", "users", 4, "peakHour", "11:00 AM", "avgRequests", 1234),
		row("timezone", "AEST (UTC+10)", "users", 3, "peakHour", "9:00 AM", "avgRequests", 890),
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartMap, "Global User Distribution", countries),
			chart(analytics.ChartBar, "Users and Activity by Region", regions),
			chart(analytics.ChartDonut, "User Distribution by Country", countries),
			chart(analytics.ChartTable, "Activity by Timezone", timezones),
		},
		Metrics: []analytics.Metric{
			metric("Countries", "15", "+3", analytics.TrendUp),
			metric("Top Country", "USA (36%)", "", analytics.TrendNeutral),
			metric("Avg Latency", "287ms", "-23ms", analytics.TrendDown),
			metric("Global Coverage", "5 continents", "", analytics.TrendNeutral),
		},
	}
}

var consumers = []struct {
	user         string
	requests     float64
	cost         float64
	inputTokens  float64
	outputTokens float64
	avgLatency   float64
	errorRate    string
	endpoints    []string
	dailyBase    float64
	dailySpread  float64
}{
	{"John Doe", 4567, 1234.56, 2345678, 1234567, 456, "1.2%", []string{"/chat/complete", "/embeddings", "/audio/transcribe"}, 170, 30},
	{"Jane Smith", 3456, 987.65, 1876543, 987654, 523, "2.3%", []string{"/chat/complete-advanced", "/image-analysis", "/chat/complete"}, 140, 25},
	{"Bob Johnson", 2345, 678.90, 1234567, 654321, 398, "0.8%", []string{"/chat/complete", "/text-analysis", "/embeddings"}, 95, 20},
	{"Alice Williams", 1890, 567.89, 987654, 543210, 612, "3.4%", []string{"/audio/transcribe", "/chat/complete", "/speech/generate"}, 80, 15},
	{"Charlie Brown", 1234, 345.67, 654321, 345678, 445, "1.5%", []string{"/chat/complete", "/embeddings", "/text-analysis"}, 45, 10},
}

func (g *Generator) perUserConsumption(_ *analytics.Snapshot) analytics.Payload {
	details := make([]analytics.Row, 0, len(consumers))
	tokens := make([]analytics.Row, 0, len(consumers))
	for _, c := range consumers {
		details = append(details, row(
			"user", c.user, "requests", c.requests, "cost", c.cost,
			"inputTokens", c.inputTokens, "outputTokens", c.outputTokens,
			"avgLatency", c.avgLatency, "errorRate", c.errorRate, "topEndpoints", c.endpoints,
		))
		tokens = append(tokens, row(
			"name", c.user, "inputTokens", c.inputTokens, "outputTokens", c.outputTokens,
			"ratio", fmt.Sprintf("%.2f", c.outputTokens/c.inputTokens),
		))
	}

	dates := g.dateRange(7)
	daily := make([]analytics.Row, len(dates))
	for i, date := range dates {
		r := row("date", date)
		for _, c := range consumers {
			r = append(r, analytics.Cell{Key: c.user, Value: round2(c.dailyBase + g.float()*c.dailySpread)})
		}
		daily[i] = r
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartTable, "Per-User API Consumption Details", details),
			chart(analytics.ChartLine, "7-Day Cost Trends by User", daily),
			chart(analytics.ChartBar, "Token Usage by User", tokens),
		},
		Metrics: []analytics.Metric{
			metric("Avg Cost/User", "$90.47", "-$12.34", analytics.TrendDown),
			metric("Avg Requests/User", "387", "+45", analytics.TrendUp),
			metric("Top Consumer", "John Doe", "", analytics.TrendNeutral),
			metric("Cost Variance", "±$345.67", "-$23.45", analytics.TrendDown),
		},
	}
}

func (g *Generator) userAnalyticsAggregate(_ *analytics.Snapshot) analytics.Payload {
	dates := g.dateRange(30)
	growth := make([]analytics.Row, len(dates))
	for i, date := range dates {
		x := float64(i)
		total := math.Floor(42 + x*0.27)
		active := math.Floor(35 + x*0.23 + g.float()*3)
		var signups float64
		if i%7 == 0 {
			signups = math.Floor(3 + g.float()*3)
		} else {
			signups = math.Floor(g.float() * 2)
		}
		growth[i] = row("date", date, "totalUsers", total, "activeUsers", active, "newSignups", signups)
	}

	tiers := []analytics.Row{
		row("name", "Enterprise", "value", 4, "percentage", 8),
		row("name", "Pro", "value", 12, "percentage", 24),
		row("name", "Basic", "value", 18, "percentage", 36),
		row("name", "Free", "value", 16, "percentage", 32),
	}
	revenue := []analytics.Row{
		row("name", "Enterprise", "value", 3456.78, "percentage", 63.4),
		row("name", "Pro", "value", 1234.56, "percentage", 22.6),
		row("name", "Basic", "value", 567.89, "percentage", 10.4),
		row("name", "Free", "value", 123.45, "percentage", 2.3),
		row("name", "Other", "value", 73.10, "percentage", 1.3),
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartArea, "30-Day User Growth Trend", growth),
			chart(analytics.ChartDonut, "User Distribution by Subscription Tier", tiers),
			chart(analytics.ChartPie, "Revenue Distribution by Tier", revenue),
			chart(analytics.ChartPie, "User Distribution by Activity Level", activityLevels()),
		},
		Metrics: []analytics.Metric{
			metric("Total Users", "50", "+19%", analytics.TrendUp),
			metric("Monthly Active", "42", "+8", analytics.TrendUp),
			metric("DAU/MAU Ratio", "0.74", "+0.05", analytics.TrendUp),
			metric("Avg Revenue/User", "$90.47", "+$12.34", analytics.TrendUp),
		},
	}
}

func (g *Generator) userDetails(_ *analytics.Snapshot) analytics.Payload {
	top := []analytics.Row{
		row("name", "John Doe", "requests", 4567, "cost", 1234.56, "avgLatency", 456, "errorRate", 1.2),
		row("name", "Jane Smith", "requests", 3456, "cost", 987.65, "avgLatency", 523, "errorRate", 2.3),
		row("name", "Bob Johnson", "requests", 2345, "cost", 678.90, "avgLatency", 398, "errorRate", 0.8),
		row("name", "Alice Williams", "requests", 1890, "cost", 567.89, "avgLatency", 612, "errorRate", 3.4),
		row("name", "Charlie Brown", "requests", 1234, "cost", 345.67, "avgLatency", 445, "errorRate", 1.5),
		row("name", "Diana Prince", "requests", 987, "cost", 234.56, "avgLatency", 378, "errorRate", 0.5),
		row("name", "Eve Davis", "requests", 678, "cost", 198.76, "avgLatency", 489, "errorRate", 2.1),
		row("name", "Frank Miller", "requests", 567, "cost", 156.78, "avgLatency", 567, "errorRate", 1.8),
		row("name", "Grace Lee", "requests", 456, "cost", 123.45, "avgLatency", 423, "errorRate", 0.9),
		row("name", "Henry Wilson", "requests", 345, "cost", 98.76, "avgLatency", 534, "errorRate", 2.7),
	}
	departments := []analytics.Row{
		row("department", "Engineering", "users", 15, "totalCost", 2567.89, "avgCostPerUser", 171.19),
		row("department", "Data Science", "users", 8, "totalCost", 1234.56, "avgCostPerUser", 154.32),
		row("department", "Product", "users", 6, "totalCost", 567.89, "avgCostPerUser", 94.65),
		row("department", "Marketing", "users", 5, "totalCost", 345.67, "avgCostPerUser", 69.13),
		row("department", "Support", "users", 4, "totalCost", 234.56, "avgCostPerUser", 58.64),
	}

	dates := g.dateRange(30)
	growth := make([]analytics.Row, len(dates))
	for i, date := range dates {
		x := float64(i)
		active := math.Floor(35 + x*0.5 + g.float()*5)
		joined := math.Floor(g.float() * 3)
		requests := math.Floor(800 + x*20 + g.float()*100)
		growth[i] = row("date", date, "activeUsers", active, "newUsers", joined, "totalRequests", requests)
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartBar, "Top 10 Users by API Usage", top),
			chart(analytics.ChartPie, "User Distribution by Activity Level", activityLevels()),
			chart(analytics.ChartTable, "Department Usage Summary", departments),
			chart(analytics.ChartArea, "30-Day User Growth and Activity", growth),
		},
		Metrics: []analytics.Metric{
			metric("Active Users", "50", "+8", analytics.TrendUp),
			metric("Avg Cost/User", "$90.47", "-$12.34", analytics.TrendDown),
			metric("Power Users", "4", "+2", analytics.TrendUp),
			metric("User Retention", "94%", "+3%", analytics.TrendUp),
		},
	}
}
