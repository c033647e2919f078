package ai

import (
	"fmt"
	"strings"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

// promptRowLimit caps how many data lines are sent to the model.
const promptRowLimit = 40

// PromptTemplate frames the explanation for one family of charts.
type PromptTemplate struct {
	SystemPrompt string
	Hints        []string
	Rules        []string
}

// PromptManager picks a template by chart type.
type PromptManager struct {
	templates map[string]*PromptTemplate
	families  map[analytics.ChartType]string
}

// NewPromptManager creates a manager with the built-in templates.
func NewPromptManager() *PromptManager {
	pm := &PromptManager{
		templates: make(map[string]*PromptTemplate),
		families: map[analytics.ChartType]string{
			analytics.ChartLine:          "trend",
			analytics.ChartArea:          "trend",
			analytics.ChartCombo:         "trend",
			analytics.ChartPie:           "share",
			analytics.ChartDonut:         "share",
			analytics.ChartMap:           "share",
			analytics.ChartBar:           "comparison",
			analytics.ChartColumn:        "comparison",
			analytics.ChartStackedBar:    "comparison",
			analytics.ChartStackedColumn: "comparison",
			analytics.ChartRadar:         "comparison",
			analytics.ChartScatter:       "correlation",
			analytics.ChartBubble:        "correlation",
			analytics.ChartHeatmap:       "grid",
		},
	}
	pm.loadDefaultTemplates()
	return pm
}

// Template returns the template for t.
func (pm *PromptManager) Template(t analytics.ChartType) (*PromptTemplate, error) {
	tpl, ok := pm.templates[pm.families[t]]
	if !ok {
		return nil, fmt.Errorf("prompt template not found for chart type: %s", t)
	}
	return tpl, nil
}

// BuildSystemPrompt creates the system prompt for a chart type.
func (pm *PromptManager) BuildSystemPrompt(t analytics.ChartType) string {
	tpl, err := pm.Template(t)
	if err != nil {
		return basicSystemPrompt
	}

	return fmt.Sprintf(`%s

What to look for:
- %s

Rules:
- %s`,
		tpl.SystemPrompt,
		strings.Join(tpl.Hints, "\n- "),
		strings.Join(tpl.Rules, "\n- "),
	)
}

// BuildQuery lists the chart data as plain lines.
func (pm *PromptManager) BuildQuery(d analytics.Descriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chart: %s (%s)\n", d.Title, d.Type)
	if len(d.Rows) == 0 {
		b.WriteString("The chart has no data.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(d.Rows[0].Keys(), ", "))
	rows := d.Rows
	if len(rows) > promptRowLimit {
		rows = rows[:promptRowLimit]
	}
	for _, row := range rows {
		parts := make([]string, 0, len(row))
		for _, cell := range row {
			parts = append(parts, cell.Key+"="+analytics.Format(cell.Value))
		}
		b.WriteString(strings.Join(parts, "; "))
		b.WriteByte('\n')
	}
	if len(d.Rows) > promptRowLimit {
		fmt.Fprintf(&b, "... %d more rows omitted\n", len(d.Rows)-promptRowLimit)
	}
	b.WriteString("Explain this chart in three to five sentences.")
	return b.String()
}

const basicSystemPrompt = `You are an API usage analyst. Explain the chart you are given to an engineering manager in plain English. Quote numbers from the data and never invent values.`

func (pm *PromptManager) loadDefaultTemplates() {
	pm.templates["trend"] = &PromptTemplate{
		SystemPrompt: basicSystemPrompt,
		Hints: []string{
			"the overall direction from the first to the last point",
			"the highest and lowest points and when they happened",
			"where series diverge from each other",
		},
		Rules: []string{
			"name dates or hours exactly as they appear in the data",
			"describe changes as percentages when both ends are known",
		},
	}
	pm.templates["share"] = &PromptTemplate{
		SystemPrompt: basicSystemPrompt,
		Hints: []string{
			"which segment dominates and its share of the total",
			"segments too small to matter",
		},
		Rules: []string{
			"percentages must add up to roughly 100",
		},
	}
	pm.templates["comparison"] = &PromptTemplate{
		SystemPrompt: basicSystemPrompt,
		Hints: []string{
			"the leader and the laggard for each measure",
			"categories that stand out as outliers",
		},
		Rules: []string{
			"compare like with like, never cost against latency",
		},
	}
	pm.templates["correlation"] = &PromptTemplate{
		SystemPrompt: basicSystemPrompt,
		Hints: []string{
			"whether larger x values go with larger y values",
			"points far from the rest",
		},
		Rules: []string{
			"do not claim causation",
		},
	}
	pm.templates["grid"] = &PromptTemplate{
		SystemPrompt: basicSystemPrompt,
		Hints: []string{
			"the busiest day and hour",
			"quiet periods such as nights and weekends",
		},
		Rules: []string{
			"refer to cells as day plus hour, e.g. Mon 09:00",
		},
	}
}
