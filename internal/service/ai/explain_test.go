package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/apilens/apilens-ai/backend/internal/config"
	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
	"github.com/apilens/apilens-ai/backend/internal/render/chart"
)

type fakeModel struct {
	reply string
	err   error
	input []*schema.Message
}

func (f *fakeModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(f.reply, nil)}), nil
}

func (f *fakeModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func costChart() analytics.Descriptor {
	return analytics.Descriptor{
		Type:  analytics.ChartLine,
		Title: "Daily Cost",
		Rows: []analytics.Row{
			analytics.NewRow("date", "2025-03-01", "cost", 120),
			analytics.NewRow("date", "2025-03-02", "cost", 1480.5),
			analytics.NewRow("date", "2025-03-03", "cost", 90),
		},
	}
}

func TestExplainWithoutModelUsesSummary(t *testing.T) {
	svc, err := NewService(context.Background(), config.AIConfig{})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	if svc.ModelEnabled() {
		t.Fatal("expected model disabled")
	}

	exp, err := svc.Explain(context.Background(), costChart())
	if err != nil {
		t.Fatalf("Explain err: %v", err)
	}
	if exp.Source != SourceSummary {
		t.Fatalf("expected summary source, got %s", exp.Source)
	}
	if !strings.Contains(exp.Text, "peaks at 1,480.5 (2025-03-02)") || !strings.Contains(exp.Text, "totalling 1,690.5") {
		t.Fatalf("unexpected summary: %s", exp.Text)
	}
}

func TestExplainWithModel(t *testing.T) {
	fake := &fakeModel{reply: "  Costs spiked on March 2nd.  "}
	svc, err := NewServiceWithModel(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewServiceWithModel err: %v", err)
	}

	exp, err := svc.Explain(context.Background(), costChart())
	if err != nil {
		t.Fatalf("Explain err: %v", err)
	}
	if exp.Source != SourceModel || exp.Text != "Costs spiked on March 2nd." {
		t.Fatalf("unexpected explanation: %+v", exp)
	}
	if len(fake.input) != 2 || fake.input[0].Role != schema.System {
		t.Fatalf("expected system and user messages, got %d", len(fake.input))
	}
	if !strings.Contains(fake.input[1].Content, "date=2025-03-02; cost=1480.5") {
		t.Fatalf("expected data lines in query, got %s", fake.input[1].Content)
	}
}

func TestExplainModelFailureFallsBack(t *testing.T) {
	svc, err := NewServiceWithModel(context.Background(), &fakeModel{err: errors.New("quota exceeded")})
	if err != nil {
		t.Fatalf("NewServiceWithModel err: %v", err)
	}
	exp, err := svc.Explain(context.Background(), costChart())
	if err != nil || exp.Source != SourceSummary {
		t.Fatalf("expected summary fallback, got %+v, %v", exp, err)
	}
}

func TestExplainUnsupportedChart(t *testing.T) {
	svc, _ := NewService(context.Background(), config.AIConfig{})
	_, err := svc.Explain(context.Background(), analytics.Descriptor{Type: "sankey", Title: "x"})
	if !errors.Is(err, chart.ErrUnsupportedChart) {
		t.Fatalf("expected ErrUnsupportedChart, got %v", err)
	}
}

func TestSummarizeShapes(t *testing.T) {
	cases := []struct {
		d    analytics.Descriptor
		want string
	}{
		{
			analytics.Descriptor{Type: analytics.ChartPie, Title: "Vendors", Rows: []analytics.Row{
				analytics.NewRow("name", "OpenAI", "value", 3000),
				analytics.NewRow("name", "Anthropic", "value", 1000),
			}},
			"OpenAI leads with 75% of the total",
		},
		{
			analytics.Descriptor{Type: analytics.ChartHeatmap, Title: "Error Heatmap", Rows: []analytics.Row{
				analytics.NewRow("hour", "14:00", "day", "Tue", "errors", 42),
				analytics.NewRow("hour", "02:00", "day", "Sun", "errors", 3),
			}},
			"busiest slot is Tue 14:00 with 42 errors. 2 of 168 slots",
		},
		{
			analytics.Descriptor{Type: analytics.ChartTable, Title: "Endpoints", Rows: []analytics.Row{
				analytics.NewRow("endpoint", "/a", "rate", "12%"),
			}},
			"1 rows with columns Endpoint, Rate. 1 rates",
		},
		{
			analytics.Descriptor{Type: analytics.ChartScatter, Title: "Load", Rows: []analytics.Row{
				analytics.NewRow("name", "a", "x", 10, "y", 5),
				analytics.NewRow("name", "b", "x", 20, "y", 50),
			}},
			"b has the highest y at 50",
		},
		{
			analytics.Descriptor{Type: analytics.ChartBar, Title: "Empty"},
			"Empty has no data",
		},
	}
	for _, tc := range cases {
		got, err := Summarize(tc.d)
		if err != nil {
			t.Fatalf("%s: %v", tc.d.Title, err)
		}
		if !strings.Contains(got, tc.want) {
			t.Fatalf("%s: expected %q in %q", tc.d.Title, tc.want, got)
		}
	}
}

func TestBuildQueryCapsRows(t *testing.T) {
	rows := make([]analytics.Row, 45)
	for i := range rows {
		rows[i] = analytics.NewRow("hour", i, "requests", i)
	}
	q := NewPromptManager().BuildQuery(analytics.Descriptor{Type: analytics.ChartColumn, Title: "Hourly", Rows: rows})
	if !strings.Contains(q, "... 5 more rows omitted") {
		t.Fatalf("expected truncation note, got %s", q)
	}
	if !strings.HasPrefix(q, "Chart: Hourly (column)") {
		t.Fatalf("unexpected header: %s", q)
	}
}
