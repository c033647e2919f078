package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

var (
	ErrNoVectorForm = errors.New("chart type has no SVG form")
	ErrEmptyChart   = errors.New("chart has nothing to draw")
)

const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

// WriteSVG renders d as an SVG document. Heatmaps, radars and tables have
// no vector form here and return ErrNoVectorForm.
func WriteSVG(w io.Writer, d analytics.Descriptor, width, height int) error {
	r, err := Render(d)
	if err != nil {
		return err
	}
	switch r.Type {
	case analytics.ChartHeatmap, analytics.ChartRadar, analytics.ChartTable:
		return fmt.Errorf("%w: %s", ErrNoVectorForm, r.Type)
	}
	if r.Empty() {
		return ErrEmptyChart
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	switch r.Type {
	case analytics.ChartLine, analytics.ChartArea:
		return svgLines(w, r, width, height)
	case analytics.ChartScatter, analytics.ChartBubble:
		return svgPoints(w, r, width, height)
	case analytics.ChartPie, analytics.ChartDonut, analytics.ChartMap:
		return svgPie(w, r, width, height)
	case analytics.ChartStackedBar, analytics.ChartStackedColumn:
		return svgStacked(w, r, width, height)
	default:
		return svgBars(w, r, width, height)
	}
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// categoryAxis spreads labels over 0..n-1. A single label gets blank ticks on
// both sides since go-chart needs a non-zero x range.
func categoryAxis(points []Point) ([]float64, gochart.XAxis) {
	xs := make([]float64, len(points))
	ticks := make([]gochart.Tick, 0, len(points)+2)
	for i, p := range points {
		xs[i] = float64(i)
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: p.Label})
	}
	if len(points) == 1 {
		ticks = []gochart.Tick{{Value: -1}, ticks[0], {Value: 1}}
	}
	return xs, gochart.XAxis{Ticks: ticks}
}

// paddedRange returns nil when values span a range go-chart can scale on its
// own, and otherwise a range around the single value.
func paddedRange(values []float64) gochart.Range {
	if len(values) == 0 {
		return nil
	}
	lo, hi := bounds(values)
	if lo != hi {
		return nil
	}
	pad := math.Max(math.Abs(lo)*0.1, 1)
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// barRange anchors bars at zero so the shortest bar keeps its height.
func barRange(values []float64) gochart.Range {
	lo, hi := bounds(values)
	lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	if lo == hi {
		hi = 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func bounds(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func svgLines(w io.Writer, r *Rendered, width, height int) error {
	ch := gochart.Chart{
		Title:      r.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
	}

	var running, all []float64
	for i, s := range r.Series {
		xs, axis := categoryAxis(s.Points)
		if i == 0 {
			ch.XAxis = axis
		}
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			ys[j] = p.Value
		}
		style := gochart.Style{StrokeColor: hexColor(s.Color), StrokeWidth: 2}
		if s.Stack != "" {
			if running == nil {
				running = make([]float64, len(ys))
			}
			for j := range ys {
				running[j] += ys[j]
				ys[j] = running[j]
			}
			style.FillColor = hexColor(s.Color).WithAlpha(96)
		}
		if len(ys) == 1 {
			style.FillColor = drawing.Color{}
			style.DotWidth = 4
			style.DotColor = hexColor(s.Color)
		}
		all = append(all, ys...)
		ch.Series = append(ch.Series, gochart.ContinuousSeries{Name: s.Key, XValues: xs, YValues: ys, Style: style})
	}
	ch.YAxis.Range = paddedRange(all)
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.SVG, w)
}

func svgPoints(w io.Writer, r *Rendered, width, height int) error {
	xs := make([]float64, len(r.Points))
	ys := make([]float64, len(r.Points))
	for i, p := range r.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	points := r.Points

	style := gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    5,
		DotColorProvider: func(_, _ gochart.Range, index int, _, _ float64) drawing.Color {
			return hexColor(points[index%len(points)].Color)
		},
	}
	if r.Type == analytics.ChartBubble {
		style.DotWidthProvider = func(_, _ gochart.Range, index int, _, _ float64) float64 {
			return points[index%len(points)].Radius / 2
		}
	}

	ch := gochart.Chart{
		Title:      r.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: r.XKey, Range: paddedRange(xs)},
		YAxis:      gochart.YAxis{Name: r.YKey, Range: paddedRange(ys)},
		Series:     []gochart.Series{gochart.ContinuousSeries{Name: r.Title, XValues: xs, YValues: ys, Style: style}},
	}
	return ch.Render(gochart.SVG, w)
}

func svgPie(w io.Writer, r *Rendered, width, height int) error {
	pie := gochart.PieChart{Title: r.Title, Width: width, Height: height}
	for _, s := range r.Slices {
		if s.Value <= 0 {
			continue
		}
		pie.Values = append(pie.Values, gochart.Value{
			Value: s.Value,
			Label: s.Name,
			Style: gochart.Style{FillColor: hexColor(s.Color)},
		})
	}
	if len(pie.Values) == 0 {
		return ErrEmptyChart
	}
	return pie.Render(gochart.SVG, w)
}

// svgBars draws the first series; per-point colours win over the series colour.
func svgBars(w io.Writer, r *Rendered, width, height int) error {
	if len(r.Series) == 0 {
		return ErrEmptyChart
	}
	s := r.Series[0]
	bars := gochart.BarChart{Title: r.Title, Width: width, Height: height, BarWidth: barWidth(width, len(s.Points))}
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
		color := s.Color
		if p.Color != "" {
			color = p.Color
		}
		bars.Bars = append(bars.Bars, gochart.Value{
			Value: p.Value,
			Label: p.Label,
			Style: gochart.Style{FillColor: hexColor(color), StrokeColor: hexColor(color)},
		})
	}
	bars.YAxis.Range = barRange(values)
	return bars.Render(gochart.SVG, w)
}

func svgStacked(w io.Writer, r *Rendered, width, height int) error {
	if len(r.Series) == 0 {
		return ErrEmptyChart
	}
	n := len(r.Series[0].Points)
	stacked := gochart.StackedBarChart{Title: r.Title, Width: width, Height: height}
	for i := 0; i < n; i++ {
		bar := gochart.StackedBar{Name: r.Series[0].Points[i].Label, Width: barWidth(width, n)}
		for _, s := range r.Series {
			bar.Values = append(bar.Values, gochart.Value{
				Value: s.Points[i].Value,
				Label: s.Key,
				Style: gochart.Style{FillColor: hexColor(s.Color), StrokeColor: hexColor(s.Color)},
			})
		}
		stacked.Bars = append(stacked.Bars, bar)
	}
	return stacked.Render(gochart.SVG, w)
}

func barWidth(width, n int) int {
	if n == 0 {
		return 0
	}
	bw := width / (n * 2)
	if bw > 60 {
		return 60
	}
	if bw < 4 {
		return 4
	}
	return bw
}
