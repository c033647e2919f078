package snapshot

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

// Share is one slice of a breakdown.
type Share struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage int     `json:"percentage"`
}

// ModelUsage aggregates breakdown lines per model.
type ModelUsage struct {
	Model      string  `json:"model"`
	Requests   int64   `json:"requests"`
	Cost       float64 `json:"cost"`
	AvgLatency int64   `json:"avgLatency"`
	Vendors    string  `json:"vendors"`
}

// Account aggregates breakdown lines per company.
type Account struct {
	ID         string    `json:"userId"`
	Requests   int64     `json:"requests"`
	Cost       float64   `json:"cost"`
	AvgLatency int64     `json:"avgLatency"`
	LastActive time.Time `json:"lastActive"`
}

// Metrics are the headline numbers of a snapshot.
type Metrics struct {
	TotalRequests     int64   `json:"totalRequests"`
	TotalCost         float64 `json:"totalCost"`
	AvgLatency        int64   `json:"avgLatency"`
	UniqueModels      int     `json:"uniqueModels"`
	UniqueCompanies   int     `json:"uniqueCompanies"`
	AvgCostPerRequest string  `json:"avgCostPerRequest"`
}

// Insights bundles every derived view.
type Insights struct {
	Vendors     []Share      `json:"vendors"`
	Models      []ModelUsage `json:"models"`
	Companies   []Share      `json:"companies"`
	TopAccounts []Account    `json:"topAccounts"`
	Metrics     Metrics      `json:"metrics"`
}

// TopAccountLimit caps TopAccounts.
const TopAccountLimit = 10

// Build derives all views. A nil snapshot yields empty views.
func Build(s *analytics.Snapshot, now time.Time) Insights {
	return Insights{
		Vendors:     VendorBreakdown(s),
		Models:      ModelBreakdown(s),
		Companies:   CompanyShare(s),
		TopAccounts: TopAccounts(s, now, TopAccountLimit),
		Metrics:     Summarize(s),
	}
}

type group struct {
	name     string
	requests int64
	cost     float64
	latency  float64
	members  []string
}

// groupBy keeps first-seen order.
func groupBy(s *analytics.Snapshot, key func(analytics.BreakdownRow) string, member func(analytics.BreakdownRow) string) []*group {
	if s == nil {
		return nil
	}
	index := make(map[string]*group)
	var groups []*group
	for _, b := range s.Breakdown {
		k := key(b)
		g, ok := index[k]
		if !ok {
			g = &group{name: k}
			index[k] = g
			groups = append(groups, g)
		}
		g.requests += b.RequestCount
		g.cost += b.TotalCost
		g.latency += b.AvgLatency * float64(b.RequestCount)
		if member != nil {
			m := member(b)
			if !contains(g.members, m) {
				g.members = append(g.members, m)
			}
		}
	}
	return groups
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func percent(part, total float64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(part / total * 100))
}

func weightedLatency(g *group) int64 {
	if g.requests == 0 {
		return 0
	}
	return int64(math.Round(g.latency / float64(g.requests)))
}

// VendorBreakdown shares total cost between vendors.
func VendorBreakdown(s *analytics.Snapshot) []Share {
	groups := groupBy(s, func(b analytics.BreakdownRow) string { return b.Vendor }, nil)
	var total float64
	for _, g := range groups {
		total += g.cost
	}

	shares := make([]Share, 0, len(groups))
	for _, g := range groups {
		shares = append(shares, Share{Name: g.name, Value: g.cost, Percentage: percent(g.cost, total)})
	}
	return shares
}

// ModelBreakdown weights latency by request count and lists the vendors
// serving each model.
func ModelBreakdown(s *analytics.Snapshot) []ModelUsage {
	groups := groupBy(s,
		func(b analytics.BreakdownRow) string { return b.Model },
		func(b analytics.BreakdownRow) string { return b.Vendor })

	usage := make([]ModelUsage, 0, len(groups))
	for _, g := range groups {
		usage = append(usage, ModelUsage{
			Model:      g.name,
			Requests:   g.requests,
			Cost:       g.cost,
			AvgLatency: weightedLatency(g),
			Vendors:    strings.Join(g.members, ", "),
		})
	}
	return usage
}

// CompanyShare shares requests between companies, largest first.
func CompanyShare(s *analytics.Snapshot) []Share {
	groups := groupBy(s, func(b analytics.BreakdownRow) string { return b.CompanyName }, nil)
	var total int64
	for _, g := range groups {
		total += g.requests
	}

	shares := make([]Share, 0, len(groups))
	for _, g := range groups {
		shares = append(shares, Share{Name: g.name, Value: float64(g.requests), Percentage: percent(float64(g.requests), float64(total))})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].Value > shares[j].Value })
	return shares
}

// TopAccounts ranks companies by request count.
func TopAccounts(s *analytics.Snapshot, now time.Time, limit int) []Account {
	groups := groupBy(s, func(b analytics.BreakdownRow) string { return b.CompanyName }, nil)

	accounts := make([]Account, 0, len(groups))
	for _, g := range groups {
		accounts = append(accounts, Account{
			ID:         g.name,
			Requests:   g.requests,
			Cost:       g.cost,
			AvgLatency: weightedLatency(g),
			LastActive: now.UTC(),
		})
	}
	sort.SliceStable(accounts, func(i, j int) bool { return accounts[i].Requests > accounts[j].Requests })
	if limit > 0 && len(accounts) > limit {
		accounts = accounts[:limit]
	}
	return accounts
}

// Summarize computes headline metrics. The per-request cost divides the
// summary total by the breakdown request count.
func Summarize(s *analytics.Snapshot) Metrics {
	if s == nil {
		return Metrics{AvgCostPerRequest: "0.000"}
	}

	var requests int64
	for _, b := range s.Breakdown {
		requests += b.RequestCount
	}
	perRequest := 0.0
	if requests > 0 {
		perRequest = s.Summary.TotalCost / float64(requests)
	}

	return Metrics{
		TotalRequests:     s.Summary.TotalRequests,
		TotalCost:         s.Summary.TotalCost,
		AvgLatency:        int64(math.Round(s.Summary.AvgLatency)),
		UniqueModels:      s.Summary.UniqueModels,
		UniqueCompanies:   s.Summary.UniqueCompanies,
		AvgCostPerRequest: fmt.Sprintf("%.3f", perRequest),
	}
}

// Charts lays the insights out as chart descriptors.
func (in Insights) Charts() []analytics.Descriptor {
	vendors := make([]analytics.Row, 0, len(in.Vendors))
	for _, v := range in.Vendors {
		vendors = append(vendors, analytics.NewRow("name", v.Name, "value", v.Value, "percentage", v.Percentage))
	}
	models := make([]analytics.Row, 0, len(in.Models))
	for _, m := range in.Models {
		models = append(models, analytics.NewRow("name", m.Model, "requests", m.Requests, "cost", m.Cost, "avgLatency", m.AvgLatency))
	}
	companies := make([]analytics.Row, 0, len(in.Companies))
	for _, c := range in.Companies {
		companies = append(companies, analytics.NewRow("name", c.Name, "value", c.Value, "percentage", c.Percentage))
	}

	return []analytics.Descriptor{
		{Type: analytics.ChartDonut, Title: "Cost by Vendor", Rows: vendors},
		{Type: analytics.ChartBar, Title: "Usage by Model", Rows: models},
		{Type: analytics.ChartMap, Title: "Requests by Company", Rows: companies},
	}
}
