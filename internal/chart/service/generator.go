// Package service implements chart specification generation.
//
// The generator turns tabular rows into self-contained Vega-Lite documents
// with the data values embedded, so clients can render them without a
// follow-up request.
package service

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/foodnet/analytics/internal/chart/domain"
	apperrors "github.com/foodnet/analytics/internal/errors"
)

const (
	vegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"
	chartTitle     = "FoodNet Analytics Chart"
)

// dateLayouts are tried in order when sniffing whether the x field holds
// timestamps.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// GenerateInput carries the rows and field mapping for one chart document.
type GenerateInput struct {
	Data       []map[string]any
	ChartType  domain.ChartType
	XField     string
	YField     string
	ColorField string
}

// ChartGenerator builds Vega-Lite documents from tabular data.
type ChartGenerator struct{}

// NewChartGenerator creates a ChartGenerator.
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// Generate validates the input and builds the chart document. Pie charts use
// theta/color encoding; the other kinds share an x/y encoding with an
// optional color channel.
func (g *ChartGenerator) Generate(input GenerateInput) (map[string]any, error) {
	if _, ok := domain.ParseChartType(string(input.ChartType)); !ok {
		return nil, apperrors.Wrapf(domain.ErrUnsupportedChartType, "%q", input.ChartType)
	}
	if len(input.Data) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "data must not be empty")
	}
	if err := validateFields(input); err != nil {
		return nil, err
	}

	doc := map[string]any{
		"$schema": vegaLiteSchema,
		"title":   chartTitle,
		"mark":    markFor(input.ChartType),
		"data":    map[string]any{"values": input.Data},
	}

	if input.ChartType == domain.ChartTypePie {
		doc["encoding"] = map[string]any{
			"theta": fieldDef(input.YField, "quantitative"),
			"color": fieldDef(input.XField, "nominal"),
		}
		return doc, nil
	}

	xType := "nominal"
	if looksTemporal(input.Data, input.XField) {
		xType = "temporal"
	}

	encoding := map[string]any{
		"x": fieldDef(input.XField, xType),
		"y": fieldDef(input.YField, "quantitative"),
	}
	if input.ColorField != "" {
		encoding["color"] = fieldDef(input.ColorField, "nominal")
	}
	doc["encoding"] = encoding

	return doc, nil
}

// validateFields checks that every referenced field appears in the data.
// A field counts as present when any row carries it.
func validateFields(input GenerateInput) error {
	required := []string{input.XField, input.YField}
	if input.ColorField != "" {
		required = append(required, input.ColorField)
	}

	columns := make(map[string]struct{})
	for _, row := range input.Data {
		for key := range row {
			columns[key] = struct{}{}
		}
	}

	var missing []string
	for _, field := range required {
		if field == "" {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "x_field and y_field are required")
		}
		if _, ok := columns[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return apperrors.Wrapf(domain.ErrMissingChartField, "%s", strings.Join(missing, ", "))
	}

	return nil
}

// markFor maps a chart type to its Vega-Lite mark.
func markFor(chartType domain.ChartType) string {
	switch chartType {
	case domain.ChartTypeLine:
		return "line"
	case domain.ChartTypeBar:
		return "bar"
	case domain.ChartTypeScatter:
		return "point"
	case domain.ChartTypePie:
		return "arc"
	default:
		return string(chartType)
	}
}

// fieldDef builds one encoding channel definition.
func fieldDef(field, fieldType string) map[string]any {
	return map[string]any{
		"field": field,
		"type":  fieldType,
		"title": capitalize(field),
	}
}

// looksTemporal reports whether the named field parses as a date in the
// first row that carries it.
func looksTemporal(data []map[string]any, field string) bool {
	for _, row := range data {
		value, ok := row[field]
		if !ok {
			continue
		}
		s, ok := value.(string)
		if !ok {
			return false
		}
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
		return false
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return fmt.Sprintf("%c%s", unicode.ToUpper(runes[0]), string(runes[1:]))
}
