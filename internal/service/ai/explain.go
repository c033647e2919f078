package ai

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/dustin/go-humanize"

	"github.com/apilens/apilens-ai/backend/internal/config"
	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
	"github.com/apilens/apilens-ai/backend/internal/render/chart"
)

// Source tells where an explanation came from.
type Source string

const (
	SourceModel   Source = "model"
	SourceSummary Source = "summary"
)

// Explanation is the text shown under "Explain this chart".
type Explanation struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Service explains chart descriptors, through an Ark model when configured
// and otherwise with a summary computed from the rendered chart.
type Service struct {
	prompts *PromptManager
	chain   compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the model chain when cfg has credentials.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	if !cfg.Enabled() {
		log.Printf("[ai] Ark not configured, chart explanations use summaries")
		return &Service{prompts: NewPromptManager()}, nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel)
}

// NewServiceWithModel compiles the explain chain around chatModel.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile explain chain: %w", err)
	}

	return &Service{prompts: NewPromptManager(), chain: runnable}, nil
}

// ModelEnabled reports whether explanations go through the model.
func (s *Service) ModelEnabled() bool {
	return s.chain != nil
}

// Explain describes d. Model failures fall back to the summary; only an
// unsupported chart type is an error.
func (s *Service) Explain(ctx context.Context, d analytics.Descriptor) (Explanation, error) {
	summary, err := Summarize(d)
	if err != nil {
		return Explanation{}, err
	}
	fallback := Explanation{Title: d.Title, Text: summary, Source: SourceSummary}

	if s.chain == nil || len(d.Rows) == 0 {
		return fallback, nil
	}

	input := map[string]any{
		"system": s.prompts.BuildSystemPrompt(d.Type),
		"query":  s.prompts.BuildQuery(d),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		log.Printf("[ai] explain %q failed, using summary: %v", d.Title, err)
		return fallback, nil
	}

	text := strings.TrimSpace(response.Content)
	if text == "" {
		return fallback, nil
	}

	log.Printf("[ai] explained chart=%q type=%s length=%d", d.Title, d.Type, len(text))
	return Explanation{Title: d.Title, Text: text, Source: SourceModel}, nil
}

// Summarize explains d without a model.
func Summarize(d analytics.Descriptor) (string, error) {
	r, err := chart.Render(d)
	if err != nil {
		return "", err
	}
	if r.Empty() {
		return fmt.Sprintf("%s has no data to explain yet.", d.Title), nil
	}

	switch {
	case r.Heatmap != nil:
		return summarizeHeatmap(r), nil
	case r.Table != nil:
		return summarizeTable(r), nil
	case len(r.Slices) > 0:
		return summarizeSlices(r), nil
	case len(r.Points) > 0:
		return summarizePoints(r), nil
	default:
		return summarizeSeries(r), nil
	}
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}

func summarizeSeries(r *chart.Rendered) string {
	var b strings.Builder
	first := r.Series[0]
	fmt.Fprintf(&b, "%s shows %d series over %d %s values.", r.Title, len(r.Series), len(first.Points), r.XKey)

	for i, s := range r.Series {
		if i == 3 {
			fmt.Fprintf(&b, " %d more series follow the same layout.", len(r.Series)-3)
			break
		}
		hi, lo := s.Points[0], s.Points[0]
		var total float64
		for _, p := range s.Points {
			total += p.Value
			if p.Value > hi.Value {
				hi = p
			}
			if p.Value < lo.Value {
				lo = p
			}
		}
		fmt.Fprintf(&b, " %s peaks at %s (%s) and is lowest at %s (%s), totalling %s.",
			s.Key, formatNumber(hi.Value), hi.Label, formatNumber(lo.Value), lo.Label, formatNumber(total))
	}
	return b.String()
}

func summarizeSlices(r *chart.Rendered) string {
	var total float64
	top := r.Slices[0]
	for _, s := range r.Slices {
		total += s.Value
		if s.Value > top.Value {
			top = s
		}
	}
	return fmt.Sprintf("%s splits %s across %d segments. %s leads with %.0f%% of the total.",
		r.Title, formatNumber(total), len(r.Slices), top.Name, top.Percent*100)
}

func summarizePoints(r *chart.Rendered) string {
	top := r.Points[0]
	for _, p := range r.Points {
		if p.Y > top.Y {
			top = p
		}
	}
	return fmt.Sprintf("%s plots %d points of %s against %s. %s has the highest %s at %s with %s %s.",
		r.Title, len(r.Points), r.YKey, r.XKey, top.Label, r.YKey, formatNumber(top.Y), r.XKey, formatNumber(top.X))
}

func summarizeHeatmap(r *chart.Rendered) string {
	h := r.Heatmap
	busiest := h.Cells[0]
	active := 0
	for _, c := range h.Cells {
		if c.Value > 0 {
			active++
		}
		if c.Value > busiest.Value {
			busiest = c
		}
	}
	unit := "requests"
	if h.Mode == chart.HeatmapErrors {
		unit = "errors"
	}
	return fmt.Sprintf("%s: the busiest slot is %s %s with %s %s. %d of %d slots show activity.",
		r.Title, busiest.Day, busiest.Hour, formatNumber(busiest.Value), unit, active, len(h.Cells))
}

func summarizeTable(r *chart.Rendered) string {
	headers := make([]string, len(r.Table.Columns))
	for i, c := range r.Table.Columns {
		headers[i] = c.Header
	}
	flagged := 0
	for _, row := range r.Table.Rows {
		for _, cell := range row {
			if cell.Tone == chart.ToneCritical || cell.Tone == chart.ToneWarning {
				flagged++
			}
		}
	}
	text := fmt.Sprintf("%s lists %d rows with columns %s.", r.Title, len(r.Table.Rows), strings.Join(headers, ", "))
	if flagged > 0 {
		text += fmt.Sprintf(" %d rates are above the 5%% warning line.", flagged)
	}
	return text
}
