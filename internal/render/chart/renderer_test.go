package chart

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
)

func desc(t analytics.ChartType, title string, rows ...analytics.Row) analytics.Descriptor {
	return analytics.Descriptor{Type: t, Title: title, Rows: rows}
}

func TestRenderUnknownType(t *testing.T) {
	_, err := Render(desc("sankey", "Flows"))
	if !errors.Is(err, ErrUnsupportedChart) {
		t.Fatalf("expected ErrUnsupportedChart, got %v", err)
	}
}

func TestRenderEmptyRows(t *testing.T) {
	for _, ct := range analytics.ChartTypes() {
		r, err := Render(desc(ct, "Empty"))
		if err != nil {
			t.Fatalf("%s: unexpected error %v", ct, err)
		}
		if !r.Empty() || r.Title != "Empty" {
			t.Fatalf("%s: expected empty render, got %+v", ct, r)
		}
	}
}

func TestLineSeriesComeFromFirstRow(t *testing.T) {
	r, err := Render(desc(analytics.ChartLine, "Trend",
		analytics.NewRow("date", "2025-03-01", "thisMonth", 120, "lastMonth", 100),
		analytics.NewRow("date", "2025-03-02", "thisMonth", 130, "lastMonth", 90, "extra", 5),
	))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if r.XKey != "date" || len(r.Series) != 2 {
		t.Fatalf("expected 2 series over date, got %q %d", r.XKey, len(r.Series))
	}
	if r.Series[0].Key != "thisMonth" || r.Series[0].Color != "#3B82F6" || r.Series[1].Color != "#10B981" {
		t.Fatalf("unexpected series %+v", r.Series)
	}
	if r.Series[1].Points[1].Label != "2025-03-02" || r.Series[1].Points[1].Value != 90 {
		t.Fatalf("unexpected point %+v", r.Series[1].Points[1])
	}
}

func TestSeriesKeysComeFromFirstRow(t *testing.T) {
	cases := []struct {
		ct   analytics.ChartType
		x    string
		want []string
	}{
		{analytics.ChartBar, "vendor", []string{"cost"}},
		{analytics.ChartArea, "date", []string{"errors", "recovered"}},
		{analytics.ChartRadar, "metric", []string{"cost", "requests"}},
		{analytics.ChartColumn, "slot", []string{"cost", "requests"}},
		{analytics.ChartStackedBar, "team", []string{"cost", "requests"}},
		{analytics.ChartStackedColumn, "timeSlot", []string{"cost", "requests"}},
	}
	for _, tc := range cases {
		first := []any{tc.x, "a"}
		second := []any{tc.x, "b"}
		for i, key := range tc.want {
			first = append(first, key, 10+i)
			second = append(second, key, 20+i)
		}
		second = append(second, "extra", 99)

		r, err := Render(desc(tc.ct, "Keys", analytics.NewRow(first...), analytics.NewRow(second...)))
		if err != nil {
			t.Fatalf("%s: render: %v", tc.ct, err)
		}
		if len(r.Series) != len(tc.want) {
			t.Fatalf("%s: expected %d series, got %+v", tc.ct, len(tc.want), r.Series)
		}
		for i, s := range r.Series {
			if s.Key != tc.want[i] {
				t.Fatalf("%s: series %d expected %s, got %s", tc.ct, i, tc.want[i], s.Key)
			}
			if len(s.Points) != 2 {
				t.Fatalf("%s: series %s expected 2 points, got %d", tc.ct, s.Key, len(s.Points))
			}
		}
	}
}

func TestAreaStacksSeries(t *testing.T) {
	r, _ := Render(desc(analytics.ChartArea, "Errors",
		analytics.NewRow("hour", 0, "errors", 3, "recovered", 2),
	))
	if r.XKey != "hour" || len(r.Series) != 2 || r.Series[0].Stack != "1" {
		t.Fatalf("unexpected area render %+v", r)
	}
}

func TestLatencyRankingColours(t *testing.T) {
	r, _ := Render(desc(analytics.ChartBar, "Endpoint Latency Ranking",
		analytics.NewRow("name", "/a", "latency", 120, "type", "Fast"),
		analytics.NewRow("name", "/b", "latency", 600, "type", "Medium"),
		analytics.NewRow("name", "/c", "latency", 2000, "type", "Slow"),
	))
	if r.XKey != "name" || len(r.Series) != 1 {
		t.Fatalf("expected one latency series over name, got %+v", r)
	}
	want := []string{"#10B981", "#F59E0B", "#EF4444"}
	for i, p := range r.Series[0].Points {
		if p.Color != want[i] {
			t.Fatalf("point %d: expected %s, got %s", i, want[i], p.Color)
		}
	}
}

func TestBarPrefersVendor(t *testing.T) {
	r, _ := Render(desc(analytics.ChartBar, "Costs",
		analytics.NewRow("name", "x", "vendor", "openai", "cost", 10),
	))
	if r.XKey != "vendor" || len(r.Series) != 1 || r.Series[0].Key != "cost" {
		t.Fatalf("unexpected bar render %+v", r)
	}
	if r.Series[0].Points[0].Color != "" {
		t.Fatalf("expected no point colour outside latency ranking")
	}
}

func TestPieLabelsHideSmallSlices(t *testing.T) {
	r, _ := Render(desc(analytics.ChartDonut, "Share",
		analytics.NewRow("name", "big", "value", 97),
		analytics.NewRow("name", "small", "value", 3),
	))
	if r.InnerRadius != 40 || r.OuterRadius != 80 {
		t.Fatalf("unexpected radii %d/%d", r.InnerRadius, r.OuterRadius)
	}
	if r.Slices[0].Label != "97%" || r.Slices[1].Label != "" {
		t.Fatalf("unexpected labels %q %q", r.Slices[0].Label, r.Slices[1].Label)
	}
}

func TestMapColours(t *testing.T) {
	r, _ := Render(desc(analytics.ChartMap, "Regions",
		analytics.NewRow("name", "US", "value", 300),
		analytics.NewRow("name", "DE", "value", 0),
		analytics.NewRow("name", "JP", "value", 100),
	))
	if r.Slices[0].Color != "#1E40AF" {
		t.Fatalf("expected darkest stop for max, got %s", r.Slices[0].Color)
	}
	if r.Slices[1].Color != "#E5E7EB" {
		t.Fatalf("expected empty colour for zero, got %s", r.Slices[1].Color)
	}
	if r.Slices[2].Color != "#93C5FD" {
		t.Fatalf("expected second stop at a third, got %s", r.Slices[2].Color)
	}
}

func TestBubbleRadius(t *testing.T) {
	r, _ := Render(desc(analytics.ChartBubble, "Media",
		analytics.NewRow("name", "a", "x", 1, "y", 1, "z", 10),
		analytics.NewRow("name", "b", "x", 2, "y", 2, "z", 20),
		analytics.NewRow("name", "c", "x", 3, "y", 3, "z", 15),
	))
	got := []float64{r.Points[0].Radius, r.Points[1].Radius, r.Points[2].Radius}
	if got[0] != 10 || got[1] != 40 || got[2] != 25 {
		t.Fatalf("unexpected radii %v", got)
	}

	flat, _ := Render(desc(analytics.ChartBubble, "Flat",
		analytics.NewRow("name", "a", "x", 1, "y", 1, "z", 7),
		analytics.NewRow("name", "b", "x", 2, "y", 2, "z", 7),
	))
	for _, p := range flat.Points {
		if p.Radius != 25 {
			t.Fatalf("expected radius 25 for constant z, got %v", p.Radius)
		}
	}
}

func TestScatterFallsBackToRequestsLatency(t *testing.T) {
	r, _ := Render(desc(analytics.ChartScatter, "Latency",
		analytics.NewRow("endpoint", "/v1", "requests", 40, "latency", 300),
	))
	if r.XKey != "requests" || r.YKey != "latency" {
		t.Fatalf("unexpected keys %s/%s", r.XKey, r.YKey)
	}
	if p := r.Points[0]; p.X != 40 || p.Y != 300 || p.Label != "/v1" {
		t.Fatalf("unexpected point %+v", p)
	}
}

func TestColumnPicksFirstNonMeasure(t *testing.T) {
	r, _ := Render(desc(analytics.ChartColumn, "Per hour",
		analytics.NewRow("errors", 4, "slot", "09:00", "requests", 40),
	))
	if r.XKey != "slot" || len(r.Series) != 2 {
		t.Fatalf("unexpected column render %+v", r)
	}
}

func TestStackedColumnExcludesModel(t *testing.T) {
	r, _ := Render(desc(analytics.ChartStackedColumn, "Slots",
		analytics.NewRow("timeSlot", "Morning", "model", "gpt-4", "engineering", 10, "sales", 4),
	))
	if len(r.Series) != 2 || r.Series[0].Stack != "a" || r.Series[1].Key != "sales" {
		t.Fatalf("unexpected stacked render %+v", r.Series)
	}
}

func TestComboColours(t *testing.T) {
	var rows []analytics.Row
	for i := 0; i < 7; i++ {
		rows = append(rows, analytics.NewRow("day", i, "requests", 100+i))
	}
	r, _ := Render(desc(analytics.ChartCombo, "Week", rows...))
	points := r.Series[0].Points
	if points[4].Color != "#3B82F6" || points[5].Color != "#F97316" {
		t.Fatalf("unexpected combo colours %s %s", points[4].Color, points[5].Color)
	}
}

func TestHeatmapModes(t *testing.T) {
	cell := analytics.NewRow("hour", "09:00", "day", "Mon", "errors", 35)

	errorsMap, _ := Render(desc(analytics.ChartHeatmap, "Error Heatmap", cell))
	h := errorsMap.Heatmap
	if h.Mode != HeatmapErrors || len(h.Cells) != 168 {
		t.Fatalf("expected 168 error cells, got %s %d", h.Mode, len(h.Cells))
	}
	c, ok := h.Cell("09:00", "Mon")
	if !ok || c.Level != "critical" || !c.ShowValue {
		t.Fatalf("expected critical visible cell, got %+v", c)
	}
	if empty, _ := h.Cell("10:00", "Mon"); empty.Level != "none" {
		t.Fatalf("expected missing cell to read as none, got %s", empty.Level)
	}

	usage, _ := Render(desc(analytics.ChartHeatmap, "Weekly Usage Heatmap", cell))
	c, _ = usage.Heatmap.Cell("09:00", "Mon")
	if usage.Heatmap.Mode != HeatmapUsage || c.Level != "low" || c.ShowValue {
		t.Fatalf("expected low usage cell, got %+v", c)
	}
}

func TestTableRateTone(t *testing.T) {
	r, _ := Render(desc(analytics.ChartTable, "Endpoints",
		analytics.NewRow("endpoint", "/a", "rate", "12.5%"),
		analytics.NewRow("endpoint", "/b", "rate", "7%"),
		analytics.NewRow("endpoint", "/c", "rate", "n/a"),
	))
	if r.Table.Columns[1].Header != "Rate" {
		t.Fatalf("expected capitalised header, got %s", r.Table.Columns[1].Header)
	}
	want := []Tone{ToneCritical, ToneWarning, ToneOK}
	for i, row := range r.Table.Rows {
		if row[1].Tone != want[i] {
			t.Fatalf("row %d: expected %s, got %s", i, want[i], row[1].Tone)
		}
		if row[0].Tone != ToneNone {
			t.Fatalf("row %d: expected no tone on endpoint", i)
		}
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSVG(&buf, desc(analytics.ChartLine, "Trend",
		analytics.NewRow("date", "2025-03-01", "requests", 120),
		analytics.NewRow("date", "2025-03-02", "requests", 180),
		analytics.NewRow("date", "2025-03-03", "requests", 150),
	), 0, 0)
	if err != nil {
		t.Fatalf("write svg: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Fatalf("expected svg output")
	}

	buf.Reset()
	err = WriteSVG(&buf, desc(analytics.ChartBar, "Costs",
		analytics.NewRow("vendor", "openai", "cost", 20),
		analytics.NewRow("vendor", "anthropic", "cost", 12),
	), 400, 300)
	if err != nil || !strings.Contains(buf.String(), "<svg") {
		t.Fatalf("expected bar svg, got %v", err)
	}
}

func TestWriteSVGNoVectorForm(t *testing.T) {
	for _, ct := range []analytics.ChartType{analytics.ChartHeatmap, analytics.ChartRadar, analytics.ChartTable} {
		err := WriteSVG(&bytes.Buffer{}, desc(ct, "x"), 0, 0)
		if !errors.Is(err, ErrNoVectorForm) {
			t.Fatalf("%s: expected ErrNoVectorForm, got %v", ct, err)
		}
	}
	if err := WriteSVG(&bytes.Buffer{}, desc(analytics.ChartPie, "x"), 0, 0); !errors.Is(err, ErrEmptyChart) {
		t.Fatalf("expected ErrEmptyChart, got %v", err)
	}
}

func TestWriteSVGDegenerateRanges(t *testing.T) {
	cases := []struct {
		name string
		d    analytics.Descriptor
	}{
		{"single line point", desc(analytics.ChartLine, "One day",
			analytics.NewRow("date", "2025-03-01", "requests", 120))},
		{"flat line", desc(analytics.ChartLine, "Flat",
			analytics.NewRow("date", "2025-03-01", "requests", 50),
			analytics.NewRow("date", "2025-03-02", "requests", 50))},
		{"single area point", desc(analytics.ChartArea, "One hour",
			analytics.NewRow("hour", 9, "errors", 3, "recovered", 1))},
		{"single bar", desc(analytics.ChartBar, "One vendor",
			analytics.NewRow("vendor", "openai", "cost", 0.021))},
		{"equal bars", desc(analytics.ChartBar, "Even",
			analytics.NewRow("vendor", "openai", "cost", 5),
			analytics.NewRow("vendor", "anthropic", "cost", 5))},
		{"zero bars", desc(analytics.ChartColumn, "Idle",
			analytics.NewRow("slot", "09:00", "requests", 0),
			analytics.NewRow("slot", "10:00", "requests", 0))},
		{"single scatter point", desc(analytics.ChartScatter, "One endpoint",
			analytics.NewRow("endpoint", "/v1", "requests", 40, "latency", 300))},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := WriteSVG(&buf, tc.d, 400, 300); err != nil {
			t.Fatalf("%s: write svg: %v", tc.name, err)
		}
		if !strings.Contains(buf.String(), "<svg") {
			t.Fatalf("%s: expected svg output", tc.name)
		}
		if buf.Len() > 64*1024 {
			t.Fatalf("%s: expected a compact document, got %d bytes", tc.name, buf.Len())
		}
		if ticks := strings.Count(buf.String(), "<text"); ticks > 100 {
			t.Fatalf("%s: expected a handful of labels, got %d", tc.name, ticks)
		}
	}
}

func TestWriteSVGScenarioChartsOnDemoSnapshot(t *testing.T) {
	gen := scenario.NewGenerator(3)
	snap := backend.DemoSnapshot()
	for _, key := range scenario.Keys() {
		payload := gen.Generate(key, snap)
		for _, d := range payload.Charts {
			err := WriteSVG(&bytes.Buffer{}, d, 0, 0)
			if err != nil && !errors.Is(err, ErrNoVectorForm) && !errors.Is(err, ErrEmptyChart) {
				t.Fatalf("%s / %s [%s]: %v", key, d.Title, d.Type, err)
			}
		}
	}
}
