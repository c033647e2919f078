// Package chart turns chart descriptors into presentation-free structures and
// SVG images.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

var ErrUnsupportedChart = errors.New("unsupported chart type")

// Point is one category/value pair of a series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	// Color overrides the series colour for this point.
	Color string `json:"color,omitempty"`
}

// Series is one plotted key.
type Series struct {
	Key    string  `json:"key"`
	Color  string  `json:"color"`
	Stack  string  `json:"stack,omitempty"`
	Points []Point `json:"points"`
}

// Slice is one pie, donut or map segment.
type Slice struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label,omitempty"`
	Color   string  `json:"color"`
}

// XYPoint is a scatter or bubble mark.
type XYPoint struct {
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Color  string  `json:"color"`
}

// Rendered is the structural form of a descriptor. Which fields are set
// depends on Type.
type Rendered struct {
	Type  analytics.ChartType `json:"type"`
	Title string              `json:"title"`

	XKey   string    `json:"xKey,omitempty"`
	YKey   string    `json:"yKey,omitempty"`
	Series []Series  `json:"series,omitempty"`
	Slices []Slice   `json:"slices,omitempty"`
	Points []XYPoint `json:"points,omitempty"`

	InnerRadius int `json:"innerRadius,omitempty"`
	OuterRadius int `json:"outerRadius,omitempty"`

	Heatmap *Heatmap `json:"heatmap,omitempty"`
	Table   *Table   `json:"table,omitempty"`
}

// Empty reports whether nothing would be drawn.
func (r *Rendered) Empty() bool {
	return len(r.Series) == 0 && len(r.Slices) == 0 && len(r.Points) == 0 && r.Heatmap == nil && r.Table == nil
}

// Render converts d. It reads series keys from the first row only and never
// fails on row content; callers wanting strict rows run analytics.Validate
// first.
func Render(d analytics.Descriptor) (*Rendered, error) {
	if _, ok := analytics.SchemaFor(d.Type); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChart, d.Type)
	}

	out := &Rendered{Type: d.Type, Title: d.Title}
	if len(d.Rows) == 0 {
		return out, nil
	}

	switch d.Type {
	case analytics.ChartLine:
		renderTimeSeries(out, d, "")
	case analytics.ChartArea:
		renderTimeSeries(out, d, "1")
	case analytics.ChartBar:
		renderBar(out, d)
	case analytics.ChartPie:
		renderSlices(out, d, false)
		out.OuterRadius = 80
	case analytics.ChartDonut:
		renderSlices(out, d, false)
		out.InnerRadius, out.OuterRadius = 40, 80
	case analytics.ChartMap:
		renderSlices(out, d, true)
	case analytics.ChartScatter:
		renderScatter(out, d)
	case analytics.ChartRadar:
		renderRadar(out, d)
	case analytics.ChartBubble:
		renderBubble(out, d)
	case analytics.ChartHeatmap:
		out.Heatmap = renderHeatmap(d)
	case analytics.ChartColumn:
		renderColumn(out, d)
	case analytics.ChartStackedBar:
		renderStackedBar(out, d)
	case analytics.ChartStackedColumn:
		out.XKey = "timeSlot"
		out.Series = numericSeries(d, out.XKey, "a", "timeSlot", "model")
	case analytics.ChartCombo:
		renderCombo(out, d)
	case analytics.ChartTable:
		out.Table = renderTable(d)
	}
	return out, nil
}

// numericSeries builds one series per numeric key of the first row, skipping
// excluded keys. Later rows missing a key plot zero.
func numericSeries(d analytics.Descriptor, xKey, stack string, exclude ...string) []Series {
	skip := make(map[string]bool, len(exclude))
	for _, k := range exclude {
		skip[k] = true
	}

	var series []Series
	for _, cell := range d.Rows[0] {
		if skip[cell.Key] {
			continue
		}
		if _, ok := cell.Value.(float64); !ok {
			continue
		}
		s := Series{Key: cell.Key, Color: ColorAt(len(series)), Stack: stack}
		for _, row := range d.Rows {
			v, _ := row.Number(cell.Key)
			s.Points = append(s.Points, Point{Label: label(row, xKey), Value: v})
		}
		series = append(series, s)
	}
	return series
}

func label(row analytics.Row, key string) string {
	v, _ := row.Get(key)
	return analytics.Format(v)
}

// firstKey returns the first candidate present in the first row.
func firstKey(row analytics.Row, candidates ...string) (string, bool) {
	for _, c := range candidates {
		if row.Has(c) {
			return c, true
		}
	}
	return "", false
}

func firstStringKey(row analytics.Row) (string, bool) {
	for _, cell := range row {
		if _, ok := cell.Value.(string); ok {
			return cell.Key, true
		}
	}
	return "", false
}

// renderTimeSeries plots every numeric key against date, or hour when the
// rows carry no date.
func renderTimeSeries(out *Rendered, d analytics.Descriptor, stack string) {
	out.XKey, _ = firstKey(d.Rows[0], "date", "hour")
	if out.XKey == "" {
		out.XKey = "date"
	}
	out.Series = numericSeries(d, out.XKey, stack, "date", "hour")
}

var barCategories = []string{"name", "vendor", "type", "useCase", "process"}

func renderBar(out *Rendered, d analytics.Descriptor) {
	first := d.Rows[0]
	xKey, ok := firstKey(first, "vendor", "useCase", "process")
	if !ok {
		if first.Has("name") {
			xKey = "name"
		} else if xKey, ok = firstStringKey(first); !ok {
			xKey = "name"
		}
	}
	out.XKey = xKey
	out.Series = numericSeries(d, xKey, "", barCategories...)

	if !strings.Contains(d.Title, "Latency Ranking") {
		return
	}
	for i := range out.Series {
		if out.Series[i].Key != "latency" {
			continue
		}
		for j, row := range d.Rows {
			out.Series[i].Points[j].Color = latencyColor(row)
		}
	}
}

func latencyColor(row analytics.Row) string {
	switch t, _ := row.Text("type"); t {
	case "Fast":
		return colorFast
	case "Medium":
		return colorMedium
	default:
		return colorSlow
	}
}

// renderSlices reads name/value pairs. Labels appear from five percent up.
func renderSlices(out *Rendered, d analytics.Descriptor, choropleth bool) {
	var total, largest float64
	for _, row := range d.Rows {
		v, _ := row.Number("value")
		total += v
		largest = math.Max(largest, v)
	}

	for i, row := range d.Rows {
		name, _ := row.Text("name")
		v, _ := row.Number("value")
		s := Slice{Name: name, Value: v, Color: ColorAt(i)}
		if total > 0 {
			s.Percent = v / total
		}
		if s.Percent >= 0.05 {
			s.Label = fmt.Sprintf("%.0f%%", s.Percent*100)
		}
		if choropleth {
			s.Color = mapColor(v, largest)
		}
		out.Slices = append(out.Slices, s)
	}
}

func renderScatter(out *Rendered, d analytics.Descriptor) {
	first := d.Rows[0]
	out.XKey, out.YKey = "requests", "latency"
	if first.Has("x") {
		out.XKey = "x"
	}
	if first.Has("y") {
		out.YKey = "y"
	}
	nameKey, _ := firstStringKey(first)

	for i, row := range d.Rows {
		x, _ := row.Number(out.XKey)
		y, _ := row.Number(out.YKey)
		out.Points = append(out.Points, XYPoint{Label: label(row, nameKey), X: x, Y: y, Color: ColorAt(i)})
	}
}

var radarAngles = []string{"endpoint", "model", "metric"}

func renderRadar(out *Rendered, d analytics.Descriptor) {
	xKey, ok := firstKey(d.Rows[0], radarAngles...)
	if !ok {
		xKey = "endpoint"
	}
	out.XKey = xKey
	out.Series = numericSeries(d, xKey, "", radarAngles...)
}

// renderBubble scales z into a 10..40 radius across the chart. A constant z
// gives every bubble the middle radius.
func renderBubble(out *Rendered, d analytics.Descriptor) {
	out.XKey, out.YKey = "x", "y"
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range d.Rows {
		z, _ := row.Number("z")
		lo, hi = math.Min(lo, z), math.Max(hi, z)
	}

	for i, row := range d.Rows {
		name, _ := row.Text("name")
		x, _ := row.Number("x")
		y, _ := row.Number("y")
		z, _ := row.Number("z")
		radius := 25.0
		if hi > lo {
			radius = (z-lo)/(hi-lo)*30 + 10
		}
		out.Points = append(out.Points, XYPoint{Label: name, X: x, Y: y, Z: z, Radius: radius, Color: ColorAt(i)})
	}
}

var columnMeasures = map[string]bool{
	"errors": true, "recovered": true, "requests": true, "cost": true, "value": true, "count": true,
}

func renderColumn(out *Rendered, d analytics.Descriptor) {
	out.XKey = "hour"
	for _, key := range d.Rows[0].Keys() {
		if !columnMeasures[key] {
			out.XKey = key
			break
		}
	}
	out.Series = numericSeries(d, out.XKey, "")
}

func renderStackedBar(out *Rendered, d analytics.Descriptor) {
	xKey, ok := firstKey(d.Rows[0], "department", "name", "category")
	if !ok {
		xKey = d.Rows[0][0].Key
	}
	out.XKey = xKey
	out.Series = numericSeries(d, xKey, "a")
}

// renderCombo draws requests per day; the first five bars are blue and the
// rest orange.
func renderCombo(out *Rendered, d analytics.Descriptor) {
	out.XKey = "day"
	s := Series{Key: "requests", Color: colorBlue}
	for i, row := range d.Rows {
		v, _ := row.Number("requests")
		color := colorBlue
		if i >= 5 {
			color = colorOrange
		}
		s.Points = append(s.Points, Point{Label: label(row, "day"), Value: v, Color: color})
	}
	out.Series = []Series{s}
}
