package chartdata

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the stored chart variant selected by editors on a chart block.
type Type string

const (
	TypeBar                  Type = "bar"
	TypeBarStacked           Type = "bar_stacked"
	TypeBarHorizontal        Type = "bar_horizontal"
	TypeBarHorizontalStacked Type = "bar_horizontal_stacked"
	TypeDoughnut             Type = "doughnut"
	TypeLine                 Type = "line"
)

// Renderer is the drawing family a chart type maps to. Several stored
// variants collapse into one family; orientation and stacking are options on
// top of it.
type Renderer string

const (
	RendererBar      Renderer = "bar"
	RendererLine     Renderer = "line"
	RendererDoughnut Renderer = "doughnut"
)

// Renderer maps the stored type to its drawing family. Unknown types draw as
// plain bars.
func (t Type) Renderer() Renderer {
	switch t {
	case TypeBar, TypeBarStacked, TypeBarHorizontal, TypeBarHorizontalStacked:
		return RendererBar
	case TypeLine:
		return RendererLine
	case TypeDoughnut:
		return RendererDoughnut
	default:
		return RendererBar
	}
}

// Stacked reports whether series pile on top of each other.
func (t Type) Stacked() bool {
	return t == TypeBarStacked || t == TypeBarHorizontalStacked
}

// Horizontal reports whether category bars run along the value axis.
func (t Type) Horizontal() bool {
	return t == TypeBarHorizontal || t == TypeBarHorizontalStacked
}

// Dataset is one named series of numeric values.
type Dataset struct {
	Label  string
	Values []float64
}

// Chart is the parsed content of a chart block.
type Chart struct {
	Title       string
	Type        Type
	Labels      []string
	Datasets    []Dataset
	AspectRatio float64
}

// PickBlock extracts the first chart block from a field value. Single-block
// fields hold the block object directly; modular-content fields hold an
// array searched front to back. A block qualifies when its item type, block
// type or plain type key names "chart".
func PickBlock(fieldValue any) (map[string]any, bool) {
	switch typed := fieldValue.(type) {
	case map[string]any:
		if isChartBlock(typed) {
			return typed, true
		}
	case []any:
		for _, entry := range typed {
			block, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if isChartBlock(block) {
				return block, true
			}
		}
	}
	return nil, false
}

func isChartBlock(block map[string]any) bool {
	if apiKeyOf(block["itemType"]) == "chart" || apiKeyOf(block["blockType"]) == "chart" {
		return true
	}
	kind, _ := block["type"].(string)
	return kind == "chart"
}

func apiKeyOf(raw any) string {
	values, ok := raw.(map[string]any)
	if !ok {
		return ""
	}
	key, _ := values["api_key"].(string)
	return key
}

// Parse reads a chart block into its typed form. Blocks may nest their
// fields under an attributes key; both layouts are accepted.
func Parse(block map[string]any) *Chart {
	attrs := attributesOf(block)
	chart := &Chart{
		Title:  stringOf(attrs["title"]),
		Type:   Type(stringOf(attrs["chart_type"])),
		Labels: ParseLabels(attrs["labels"]),
	}
	chart.AspectRatio = numberOf(attrs["aspect_ratio"])

	raw, _ := attrs["data"].([]any)
	chart.Datasets = make([]Dataset, 0, len(raw))
	for i, entry := range raw {
		input, _ := entry.(map[string]any)
		dsAttrs := attributesOf(input)
		label := stringOf(dsAttrs["label"])
		if label == "" {
			label = fmt.Sprintf("Series %d", i+1)
		}
		chart.Datasets = append(chart.Datasets, Dataset{
			Label:  label,
			Values: ParseValues(dsAttrs["values"]),
		})
	}
	return chart
}

// ParseLabels splits a comma-separated label string, trimming entries and
// dropping blanks.
func ParseLabels(raw any) []string {
	out := []string{}
	for _, part := range strings.Split(stringOf(raw), ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseValues splits a comma-separated value string into numbers. The
// literal "null" and anything non-numeric read as zero, so a sparse series
// keeps its positional alignment with the labels.
func ParseValues(raw any) []float64 {
	text := stringOf(raw)
	if text == "" {
		return []float64{}
	}
	parts := strings.Split(text, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.EqualFold(part, "null") {
			out = append(out, 0)
			continue
		}
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			n = 0
		}
		out = append(out, n)
	}
	return out
}

func attributesOf(block map[string]any) map[string]any {
	if block == nil {
		return map[string]any{}
	}
	if attrs, ok := block["attributes"].(map[string]any); ok {
		return attrs
	}
	return block
}

func stringOf(raw any) string {
	switch typed := raw.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func numberOf(raw any) float64 {
	switch typed := raw.(type) {
	case float64:
		return typed
	case int:
		return float64(typed)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(typed), 64); err == nil {
			return n
		}
	}
	return 0
}
