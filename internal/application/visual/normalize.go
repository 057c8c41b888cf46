// Package visual turns a loosely shaped result payload into chart series,
// a table and the insight/parameter listing shown next to them.
package visual

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/doeshing/budgetq/internal/domain"
)

// Field preference lists; the first present field wins.
var (
	LabelFields = []string{"label", "category", "department", "year", "name"}
	ValueFields = []string{"value", "amount", "budget", "spending"}
)

const (
	DefaultSeriesLabel = "Budget Amount"
	DefaultChartTitle  = "Budget Data Visualization"
	NoDataMessage      = "No data available for visualization"
	NoInsightsMessage  = "No insights available for this query."

	fillAlpha   = 0.6
	borderWidth = 1
)

// Palette is reused cyclically when there are more points than colours.
var Palette = []domain.Color{
	{R: 54, G: 162, B: 235, A: fillAlpha},
	{R: 255, G: 99, B: 132, A: fillAlpha},
	{R: 255, G: 206, B: 86, A: fillAlpha},
	{R: 75, G: 192, B: 192, A: fillAlpha},
	{R: 153, G: 102, B: 255, A: fillAlpha},
	{R: 255, G: 159, B: 64, A: fillAlpha},
	{R: 199, G: 199, B: 199, A: fillAlpha},
	{R: 83, G: 102, B: 255, A: fillAlpha},
	{R: 40, G: 159, B: 64, A: fillAlpha},
	{R: 210, G: 199, B: 199, A: fillAlpha},
}

// MalformedRecord describes one record the normalizer could not fully read.
type MalformedRecord struct {
	Index  int
	Reason string
}

// MalformedResultError lists records that matched no label or value field, or
// whose value was not numeric. It accompanies a usable, tolerant chart.
type MalformedResultError struct {
	Records []MalformedRecord
}

func (e *MalformedResultError) Error() string {
	parts := make([]string, 0, len(e.Records))
	for _, rec := range e.Records {
		parts = append(parts, fmt.Sprintf("record %d: %s", rec.Index, rec.Reason))
	}
	return "malformed result: " + strings.Join(parts, "; ")
}

// Point is one derived chart point.
type Point struct {
	Label string
	Value float64
	// LabelField and ValueField name the fields that were used, empty when none matched.
	LabelField string
	ValueField string
}

// DerivePoint applies the label and value preference lists to one record.
func DerivePoint(record domain.Fields) (Point, []string) {
	var (
		point    Point
		problems []string
	)

	if key, raw, ok := firstPresent(record, LabelFields); ok {
		point.LabelField = key
		point.Label = domain.FormatValue(raw)
	} else {
		problems = append(problems, "no label field ("+strings.Join(LabelFields, ", ")+")")
	}

	if key, raw, ok := firstPresent(record, ValueFields); ok {
		point.ValueField = key
		value, err := parseNumber(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("field %q is not numeric", key))
		}
		point.Value = value
	} else {
		problems = append(problems, "no value field ("+strings.Join(ValueFields, ", ")+")")
	}
	return point, problems
}

func firstPresent(record domain.Fields, keys []string) (string, interface{}, bool) {
	for _, key := range keys {
		raw, ok := record.Get(key)
		if !ok {
			continue
		}
		if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return key, raw, true
	}
	return "", nil, false
}

var errNotFinite = errors.New("value is not finite")

func parseNumber(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		text := strings.TrimSpace(domain.FormatValue(v))
		text = strings.ReplaceAll(text, ",", "")
		text = strings.TrimPrefix(text, "$")
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errNotFinite
		}
		return f, nil
	}
}

// BuildChart assembles the single-series chart for payload. A non-nil
// *MalformedResultError is returned together with the chart when some records
// had to be drawn with a blank label or zero value.
func BuildChart(payload domain.ResultPayload) (domain.ChartData, error) {
	chart := domain.ChartData{Title: DefaultChartTitle}
	if title, ok := payload.QueryParameters.GetString("title"); ok && title != "" {
		chart.Title = title
	}
	if !payload.HasData() {
		return chart, nil
	}

	series := domain.ChartSeries{
		Label:       DefaultSeriesLabel,
		BorderWidth: borderWidth,
	}
	if metric, ok := payload.QueryParameters.GetString("metric"); ok && metric != "" {
		series.Label = metric
	}

	var malformed []MalformedRecord
	for i, record := range payload.Data {
		point, problems := DerivePoint(record)
		for _, p := range problems {
			malformed = append(malformed, MalformedRecord{Index: i, Reason: p})
		}
		fill := Palette[i%len(Palette)]
		chart.Labels = append(chart.Labels, point.Label)
		series.Values = append(series.Values, point.Value)
		series.BackgroundColors = append(series.BackgroundColors, fill)
		series.BorderColors = append(series.BorderColors, fill.Opaque())
	}
	chart.Series = []domain.ChartSeries{series}

	if len(malformed) > 0 {
		return chart, &MalformedResultError{Records: malformed}
	}
	return chart, nil
}
