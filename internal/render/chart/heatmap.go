package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

// HeatmapMode selects the colour scale.
type HeatmapMode string

const (
	HeatmapErrors HeatmapMode = "errors"
	HeatmapUsage  HeatmapMode = "usage"
)

var (
	heatmapHours = func() []string {
		hours := make([]string, 24)
		for h := range hours {
			hours[h] = fmt.Sprintf("%02d:00", h)
		}
		return hours
	}()
	heatmapDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
)

// HeatCell is one hour/day square.
type HeatCell struct {
	Hour      string  `json:"hour"`
	Day       string  `json:"day"`
	Value     float64 `json:"value"`
	Intensity float64 `json:"intensity"`
	Level     string  `json:"level"`
	Fill      string  `json:"fill"`
	ShowValue bool    `json:"showValue"`
	Tooltip   string  `json:"tooltip"`
}

// LegendEntry labels one band of the scale.
type LegendEntry struct {
	Label string `json:"label"`
	Fill  string `json:"fill"`
}

// Heatmap is a fixed 24x7 grid, hours major.
type Heatmap struct {
	Mode        HeatmapMode   `json:"mode"`
	Hours       []string      `json:"hours"`
	Days        []string      `json:"days"`
	Cells       []HeatCell    `json:"cells"`
	LegendTitle string        `json:"legendTitle"`
	Legend      []LegendEntry `json:"legend"`
}

var (
	errorLegend = []LegendEntry{
		{Label: "Low (0-5)", Fill: "#22C55E"},
		{Label: "Medium (6-15)", Fill: "#EAB308"},
		{Label: "High (16-30)", Fill: "#F97316"},
		{Label: "Critical (30+)", Fill: "#EF4444"},
	}
	usageLegend = []LegendEntry{
		{Label: "Low (1-50)", Fill: rgba(59, 130, 246, 0.2)},
		{Label: "Medium (51-100)", Fill: rgba(59, 130, 246, 0.4)},
		{Label: "High (101-150)", Fill: rgba(59, 130, 246, 0.6)},
		{Label: "Peak (151-200)", Fill: rgba(59, 130, 246, 0.8)},
		{Label: "Max (200+)", Fill: rgba(59, 130, 246, 1)},
	}
)

func heatmapModeFor(title string) HeatmapMode {
	if strings.Contains(strings.ToLower(title), "error") {
		return HeatmapErrors
	}
	return HeatmapUsage
}

// heatValue takes the first non-zero of errors, usage and requests.
func heatValue(row analytics.Row) float64 {
	for _, key := range []string{"errors", "usage", "requests"} {
		if v, ok := row.Number(key); ok && v != 0 {
			return v
		}
	}
	return 0
}

func errorShade(value, intensity float64) (level, fill string) {
	alpha := 0.3 + intensity*0.7
	switch {
	case value > 30:
		return "critical", rgba(239, 68, 68, alpha)
	case value > 15:
		return "high", rgba(249, 115, 22, alpha)
	case value > 5:
		return "medium", rgba(245, 158, 11, alpha)
	case value > 0:
		return "low", rgba(16, 185, 129, alpha)
	default:
		return "none", rgba(229, 231, 235, 0.5)
	}
}

func usageShade(value, intensity float64) (level, fill string) {
	switch {
	case value > 200:
		return "max", rgba(59, 130, 246, 0.8+intensity*0.2)
	case value > 150:
		return "peak", rgba(59, 130, 246, 0.6+intensity*0.2)
	case value > 100:
		return "high", rgba(59, 130, 246, 0.4+intensity*0.2)
	case value > 50:
		return "medium", rgba(59, 130, 246, 0.3+intensity*0.2)
	case value > 0:
		return "low", rgba(59, 130, 246, 0.2+intensity*0.1)
	default:
		return "none", rgba(229, 231, 235, 0.3)
	}
}

// renderHeatmap lays rows onto the full grid. Missing cells read as zero and
// rows outside the grid are ignored.
func renderHeatmap(d analytics.Descriptor) *Heatmap {
	mode := heatmapModeFor(d.Title)

	lookup := make(map[string]float64, len(d.Rows))
	for _, row := range d.Rows {
		hour, _ := row.Text("hour")
		day, _ := row.Text("day")
		key := hour + "|" + day
		if _, seen := lookup[key]; !seen {
			lookup[key] = heatValue(row)
		}
	}

	ceiling, unit, legendTitle, legend := 250.0, "requests", "Usage Intensity:", usageLegend
	shade, threshold := usageShade, 150.0
	if mode == HeatmapErrors {
		ceiling, unit, legendTitle, legend = 50, "errors", "Error Intensity:", errorLegend
		shade, threshold = errorShade, 30
	}

	h := &Heatmap{
		Mode:        mode,
		Hours:       heatmapHours,
		Days:        heatmapDays,
		Cells:       make([]HeatCell, 0, len(heatmapHours)*len(heatmapDays)),
		LegendTitle: legendTitle,
		Legend:      legend,
	}
	for _, hour := range heatmapHours {
		for _, day := range heatmapDays {
			value := lookup[hour+"|"+day]
			intensity := math.Min(value/ceiling, 1)
			level, fill := shade(value, intensity)
			h.Cells = append(h.Cells, HeatCell{
				Hour:      hour,
				Day:       day,
				Value:     value,
				Intensity: intensity,
				Level:     level,
				Fill:      fill,
				ShowValue: value > threshold,
				Tooltip:   fmt.Sprintf("%s %s: %s %s", hour, day, analytics.Format(value), unit),
			})
		}
	}
	return h
}

// Cell returns the cell at hour/day.
func (h *Heatmap) Cell(hour, day string) (HeatCell, bool) {
	for _, c := range h.Cells {
		if c.Hour == hour && c.Day == day {
			return c, true
		}
	}
	return HeatCell{}, false
}
