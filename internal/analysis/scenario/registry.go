package scenario

import (
	"strings"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

// Key names a scenario.
type Key string

const (
	KeyMonthlyComparison      Key = "monthly-comparison"
	KeyLatencyAnalysis        Key = "latency-analysis"
	KeyCostBreakdown          Key = "cost-breakdown"
	KeyWhisperUsage           Key = "whisper-usage"
	KeyTranscriptionMetrics   Key = "transcription-metrics"
	KeySpeechCosts            Key = "speech-costs"
	KeyAudioAnalysis          Key = "audio-analysis"
	KeyVideoAnalysis          Key = "video-analysis"
	KeyMediaAnalysis          Key = "media-analysis"
	KeyExpensiveEndpoints     Key = "expensive-endpoints"
	KeyErrorDistribution      Key = "error-distribution"
	KeyUsagePattern           Key = "usage-pattern"
	KeyPowerUserPatterns      Key = "power-user-patterns"
	KeyDepartmentUsage        Key = "department-usage"
	KeyGrowthRetention        Key = "growth-retention"
	KeyGeographicAnalytics    Key = "geographic-analytics"
	KeyPerUserConsumption     Key = "per-user-consumption"
	KeyUserAnalyticsAggregate Key = "user-analytics-aggregate"
	KeyUserDetails            Key = "user-details"
	KeyOverview               Key = "overview"
)

// query is lowercased user input.
type query string

func newQuery(text string) query { return query(strings.ToLower(text)) }

func (q query) has(s string) bool { return strings.Contains(string(q), s) }

func (q query) any(words ...string) bool {
	for _, w := range words {
		if q.has(w) {
			return true
		}
	}
	return false
}

func (q query) all(words ...string) bool {
	for _, w := range words {
		if !q.has(w) {
			return false
		}
	}
	return true
}

type chartBuilder func(g *Generator, snap *analytics.Snapshot) analytics.Payload

type textBuilder func(n *Narratives, key Key, q query, snap *analytics.Snapshot) string

// Scenario binds a predicate to the chart and text builders it selects.
type Scenario struct {
	Key   Key
	match func(q query) bool
	chart chartBuilder
	text  textBuilder
}

// registry order decides ties: specific topics sit above their catch-alls.
var registry = []Scenario{
	{
		Key:   KeyMonthlyComparison,
		match: func(q query) bool { return q.has("spend this month vs last month") },
		chart: (*Generator).monthlyComparison,
	},
	{
		Key:   KeyLatencyAnalysis,
		match: func(q query) bool { return q.has("highest latency") },
		chart: (*Generator).latencyAnalysis,
	},
	{
		Key:   KeyCostBreakdown,
		match: func(q query) bool { return q.has("cost breakdown by vendor") },
		chart: (*Generator).costBreakdown,
	},
	{
		Key:   KeyWhisperUsage,
		match: func(q query) bool { return q.all("whisper", "usage") },
		chart: (*Generator).whisperUsage,
	},
	{
		Key:   KeyTranscriptionMetrics,
		match: func(q query) bool { return q.all("transcription", "metrics") },
		chart: (*Generator).transcriptionMetrics,
	},
	{
		Key:   KeySpeechCosts,
		match: func(q query) bool { return q.any("speech", "audio") && q.has("cost") },
		chart: (*Generator).speechCosts,
	},
	{
		Key:   KeyAudioAnalysis,
		match: func(q query) bool { return q.any("audio", "transcription", "speech") },
		chart: (*Generator).audioAnalysis,
	},
	{
		Key:   KeyVideoAnalysis,
		match: func(q query) bool { return q.any("video", "visual", "frame") },
		chart: (*Generator).videoAnalysis,
	},
	{
		Key:   KeyMediaAnalysis,
		match: func(q query) bool { return q.any("media", "multimedia") },
		chart: (*Generator).mediaAnalysis,
	},
	{
		Key:   KeyExpensiveEndpoints,
		match: func(q query) bool { return q.any("top 5 most expensive", "expensive api endpoints") },
		chart: (*Generator).expensiveEndpoints,
	},
	{
		Key:   KeyErrorDistribution,
		match: func(q query) bool { return q.any("errors distributed", "error distribution") },
		chart: (*Generator).errorDistribution,
	},
	{
		Key:   KeyUsagePattern,
		match: func(q query) bool { return q.any("usage pattern", "throughout the day") },
		chart: (*Generator).usagePattern,
	},
	{
		Key:   KeyPowerUserPatterns,
		match: func(q query) bool { return q.all("power user", "pattern") },
		chart: (*Generator).powerUserPatterns,
	},
	{
		Key:   KeyDepartmentUsage,
		match: func(q query) bool { return q.any("team", "department") && q.has("usage") },
		chart: (*Generator).departmentUsage,
	},
	{
		Key:   KeyGrowthRetention,
		match: func(q query) bool { return q.has("growth") && q.any("user", "retention") },
		chart: (*Generator).growthRetention,
	},
	{
		Key: KeyGeographicAnalytics,
		match: func(q query) bool {
			place := q.any("geographic", "location", "country", "region") || q.all("where", "users")
			return place && !q.has("cost")
		},
		chart: (*Generator).geographicAnalytics,
	},
	{
		Key:   KeyPerUserConsumption,
		match: func(q query) bool { return q.any("per-user", "consumption") },
		chart: (*Generator).perUserConsumption,
	},
	{
		Key: KeyUserAnalyticsAggregate,
		match: func(q query) bool {
			return q.all("user", "analytics") && !q.any("power", "individual", "per-user")
		},
		chart: (*Generator).userAnalyticsAggregate,
	},
	{
		Key: KeyUserDetails,
		match: func(q query) bool {
			return q.any("user", "customer", "per-user", "by user", "individual", "team", "developer")
		},
		chart: (*Generator).userDetails,
	},
}

var overview = Scenario{
	Key:   KeyOverview,
	match: func(query) bool { return true },
	chart: (*Generator).overview,
	text:  overviewText,
}

// attachKeywords gate whether a reply carries charts at all.
var attachKeywords = []string{
	"cost", "spend", "expensive", "latency", "performance", "usage", "error", "distributed",
	"audio", "transcription", "whisper", "speech", "video", "visual", "frame", "media", "multimedia",
	"endpoints", "pattern", "throughout", "user", "users", "customer", "account", "per-user", "by user",
	"individual", "team", "developer", "department", "power user", "retention", "growth", "consumption",
	"geographic", "location", "country", "region", "timezone", "where",
}

func match(q query) Scenario {
	for _, s := range registry {
		if s.match(q) {
			return s
		}
	}
	return overview
}

// Classify maps free text to the first matching scenario, or overview.
func Classify(text string) Key {
	return match(newQuery(text)).Key
}

// ShouldAttach reports whether a reply to text carries an analytics payload.
func ShouldAttach(text string) bool {
	return newQuery(text).any(attachKeywords...)
}

// Keys lists scenario keys in evaluation order, overview last.
func Keys() []Key {
	keys := make([]Key, 0, len(registry)+1)
	for _, s := range registry {
		keys = append(keys, s.Key)
	}
	return append(keys, KeyOverview)
}

// Lookup finds a scenario by key.
func Lookup(key Key) (Scenario, bool) {
	if key == KeyOverview {
		return overview, true
	}
	for _, s := range registry {
		if s.Key == key {
			return s, true
		}
	}
	return Scenario{}, false
}
