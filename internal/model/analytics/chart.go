package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ChartType tags the row schema a descriptor carries.
type ChartType string

const (
	ChartLine          ChartType = "line"
	ChartBar           ChartType = "bar"
	ChartPie           ChartType = "pie"
	ChartDonut         ChartType = "donut"
	ChartArea          ChartType = "area"
	ChartScatter       ChartType = "scatter"
	ChartRadar         ChartType = "radar"
	ChartBubble        ChartType = "bubble"
	ChartHeatmap       ChartType = "heatmap"
	ChartColumn        ChartType = "column"
	ChartStackedBar    ChartType = "stacked-bar"
	ChartStackedColumn ChartType = "stacked-column"
	ChartCombo         ChartType = "combo"
	ChartMap           ChartType = "map"
	ChartTable         ChartType = "table"
)

var (
	ErrUnknownChartType = errors.New("unknown chart type")
	ErrRaggedRows       = errors.New("rows do not share one key set")
	ErrMissingKey       = errors.New("row is missing a required key")
)

// Descriptor is the chart contract handed to the renderer.
type Descriptor struct {
	Type  ChartType `json:"type"`
	Title string    `json:"title"`
	Rows  []Row     `json:"rows"`
}

// Schema describes the row shape expected by one chart type.
type Schema struct {
	Type ChartType
	// Categories are keys that label rows and are never plotted as series.
	Categories []string
	// Required lists alternatives: each group needs at least one present key.
	Required [][]string
}

var schemas = map[ChartType]Schema{
	ChartLine:          {Type: ChartLine, Categories: []string{"date", "hour"}, Required: [][]string{{"date", "hour"}}},
	ChartArea:          {Type: ChartArea, Categories: []string{"date", "hour"}, Required: [][]string{{"date", "hour"}}},
	ChartBar:           {Type: ChartBar, Categories: []string{"name", "vendor", "type", "useCase", "process"}},
	ChartPie:           {Type: ChartPie, Categories: []string{"name"}, Required: [][]string{{"name"}, {"value"}}},
	ChartDonut:         {Type: ChartDonut, Categories: []string{"name"}, Required: [][]string{{"name"}, {"value"}}},
	ChartMap:           {Type: ChartMap, Categories: []string{"name"}, Required: [][]string{{"name"}, {"value"}}},
	ChartScatter:       {Type: ChartScatter, Required: [][]string{{"x", "requests"}, {"y", "latency"}}},
	ChartRadar:         {Type: ChartRadar, Categories: []string{"endpoint", "model", "metric"}, Required: [][]string{{"endpoint", "model", "metric"}}},
	ChartBubble:        {Type: ChartBubble, Categories: []string{"name"}, Required: [][]string{{"x"}, {"y"}, {"z"}}},
	ChartHeatmap:       {Type: ChartHeatmap, Categories: []string{"hour", "day"}, Required: [][]string{{"hour"}, {"day"}, {"errors", "usage", "requests"}}},
	ChartColumn:        {Type: ChartColumn},
	ChartStackedBar:    {Type: ChartStackedBar, Categories: []string{"department", "name", "category"}},
	ChartStackedColumn: {Type: ChartStackedColumn, Categories: []string{"timeSlot", "model"}, Required: [][]string{{"timeSlot"}}},
	ChartCombo:         {Type: ChartCombo, Categories: []string{"day"}, Required: [][]string{{"day"}, {"requests"}}},
	ChartTable:         {Type: ChartTable},
}

// SchemaFor returns the schema of a chart type.
func SchemaFor(t ChartType) (Schema, bool) {
	s, ok := schemas[t]
	return s, ok
}

// ChartTypes lists every supported tag in a stable order.
func ChartTypes() []ChartType {
	types := make([]ChartType, 0, len(schemas))
	for t := range schemas {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// IsCategory reports whether key labels rows for this chart type.
func (s Schema) IsCategory(key string) bool {
	for _, c := range s.Categories {
		if c == key {
			return true
		}
	}
	return false
}

// Validate enforces the descriptor contract: a known type, one key set shared
// by every row, and the keys the type requires.
func Validate(d Descriptor) error {
	schema, ok := schemas[d.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChartType, d.Type)
	}
	if len(d.Rows) == 0 {
		return nil
	}

	want := keySet(d.Rows[0])
	for i, row := range d.Rows[1:] {
		got := keySet(row)
		if !sameKeys(want, got) {
			return fmt.Errorf("%w: row %d has [%s], first row has [%s]", ErrRaggedRows, i+1, joinKeys(got), joinKeys(want))
		}
	}

	for _, group := range schema.Required {
		found := false
		for _, key := range group {
			if _, ok := want[key]; ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s chart needs one of %s", ErrMissingKey, d.Type, strings.Join(group, "|"))
		}
	}
	return nil
}

func keySet(row Row) map[string]struct{} {
	set := make(map[string]struct{}, len(row))
	for _, cell := range row {
		set[cell.Key] = struct{}{}
	}
	return set
}

func sameKeys(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func joinKeys(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
