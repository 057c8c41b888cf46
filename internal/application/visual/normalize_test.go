package visual

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/budgetq/internal/domain"
)

func decode(t *testing.T, raw string) domain.ResultPayload {
	t.Helper()
	var payload domain.ResultPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestBuildChartDepartmentOfDefense(t *testing.T) {
	payload := decode(t, `{
		"data": [{"department": "DoD", "amount": 816000000000}],
		"insights": "<p>...</p>",
		"query_parameters": {"metric": "budget", "year": "2023"}
	}`)

	chart, err := BuildChart(payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"DoD"}, chart.Labels)
	require.Len(t, chart.Series, 1)
	assert.Equal(t, "budget", chart.Series[0].Label)
	assert.Equal(t, []float64{816000000000}, chart.Series[0].Values)
	assert.Equal(t, DefaultChartTitle, chart.Title)
}

func TestDerivePointPreferenceOrder(t *testing.T) {
	tests := []struct {
		name       string
		record     string
		wantLabel  string
		wantValue  float64
		wantFields [2]string
	}{
		{
			name:       "label beats category",
			record:     `{"category": "Health", "label": "HHS", "spending": 5, "value": 9}`,
			wantLabel:  "HHS",
			wantValue:  9,
			wantFields: [2]string{"label", "value"},
		},
		{
			name:       "year used when no unit",
			record:     `{"year": 2021, "name": "ignored", "budget": "1,250.5"}`,
			wantLabel:  "2021",
			wantValue:  1250.5,
			wantFields: [2]string{"year", "budget"},
		},
		{
			name:       "null field is skipped",
			record:     `{"label": null, "name": "Education", "amount": null, "spending": 12}`,
			wantLabel:  "Education",
			wantValue:  12,
			wantFields: [2]string{"name", "spending"},
		},
		{
			name:       "zero counts as present",
			record:     `{"department": "Interior", "value": 0, "amount": 40}`,
			wantLabel:  "Interior",
			wantValue:  0,
			wantFields: [2]string{"department", "value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var record domain.Fields
			require.NoError(t, json.Unmarshal([]byte(tt.record), &record))
			point, problems := DerivePoint(record)
			assert.Empty(t, problems)
			assert.Equal(t, tt.wantLabel, point.Label)
			assert.Equal(t, tt.wantValue, point.Value)
			assert.Equal(t, tt.wantFields, [2]string{point.LabelField, point.ValueField})
		})
	}
}

func TestBuildChartReportsMalformedRecords(t *testing.T) {
	payload := decode(t, `{"data": [
		{"department": "DoD", "amount": 10},
		{"agency": "NASA", "total": 25},
		{"label": "Energy", "value": "n/a"}
	]}`)

	chart, err := BuildChart(payload)
	var malformed *MalformedResultError
	require.True(t, errors.As(err, &malformed))

	indices := map[int]int{}
	for _, rec := range malformed.Records {
		indices[rec.Index]++
	}
	assert.Equal(t, map[int]int{1: 2, 2: 1}, indices)

	assert.Equal(t, []string{"DoD", "", "Energy"}, chart.Labels)
	assert.Equal(t, []float64{10, 0, 0}, chart.Series[0].Values)
}

func TestBuildChartRejectsNonFiniteStrings(t *testing.T) {
	payload := decode(t, `{"data": [
		{"label": "a", "value": "NaN"},
		{"label": "b", "amount": "Infinity"},
		{"label": "c", "value": "-Inf"},
		{"label": "d", "value": "1e400"},
		{"label": "e", "value": 5}
	]}`)

	chart, err := BuildChart(payload)
	var malformed *MalformedResultError
	require.True(t, errors.As(err, &malformed))

	indices := make([]int, 0, len(malformed.Records))
	for _, rec := range malformed.Records {
		indices = append(indices, rec.Index)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, indices)
	assert.Equal(t, []float64{0, 0, 0, 0, 5}, chart.Series[0].Values)
}

func TestBuildChartDefaultsAndTitle(t *testing.T) {
	payload := decode(t, `{"data": [{"label": "a", "value": 1}], "query_parameters": {"title": "Spending by year"}}`)
	chart, err := BuildChart(payload)
	require.NoError(t, err)
	assert.Equal(t, "Spending by year", chart.Title)
	assert.Equal(t, DefaultSeriesLabel, chart.Series[0].Label)
}

func TestBuildChartPaletteCyclesWithOpaqueBorders(t *testing.T) {
	payload := domain.ResultPayload{}
	for i := 0; i < 12; i++ {
		payload.Data = append(payload.Data, domain.Fields{{Key: "label", Value: "x"}, {Key: "value", Value: float64(i)}})
	}
	chart, err := BuildChart(payload)
	require.NoError(t, err)

	series := chart.Series[0]
	require.Len(t, series.BackgroundColors, 12)
	assert.Equal(t, series.BackgroundColors[0], series.BackgroundColors[10])
	assert.Equal(t, series.BackgroundColors[1], series.BackgroundColors[11])
	assert.Equal(t, "rgba(54, 162, 235, 0.6)", series.BackgroundColors[0].String())
	assert.Equal(t, "rgba(54, 162, 235, 1)", series.BorderColors[0].String())
	assert.Equal(t, 1, series.BorderWidth)
	assert.Len(t, Palette, 10)
}

func TestPresentNoDataInEveryMode(t *testing.T) {
	payload := decode(t, `{"data": [], "insights": "nothing found"}`)
	for _, mode := range append(domain.VisualizationModes, "radar") {
		p := Present(payload, mode)
		assert.True(t, p.NoData, "mode %s", mode)
		assert.Equal(t, NoDataMessage, p.Message)
		assert.True(t, p.Table.Empty())
	}
}

func TestPresentUnknownModeFallsBackToBar(t *testing.T) {
	payload := decode(t, `{"data": [{"label": "a", "value": 1}]}`)
	p := Present(payload, "radar")
	assert.Equal(t, domain.VisualizationBar, p.Mode)
	assert.False(t, p.NoData)
	assert.Equal(t, NoInsightsMessage, p.InsightsOrPlaceholder())
}

func TestPresentModeDoesNotChangePayload(t *testing.T) {
	payload := decode(t, `{"data": [{"label": "a", "value": 1}], "insights": "<b>x</b>", "query_parameters": {"metric": "m"}}`)
	before := payload.Clone()
	var charts []domain.ChartData
	for _, mode := range domain.VisualizationModes {
		charts = append(charts, Present(payload, mode).Chart)
	}
	assert.Empty(t, cmp.Diff(before, payload))
	for _, chart := range charts[1:] {
		assert.Empty(t, cmp.Diff(charts[0], chart))
	}
}

func TestBuildTableUnionColumns(t *testing.T) {
	payload := decode(t, `{"data": [
		{"department": "DoD", "amount": 816000000000},
		{"department": "HHS", "year": "2023", "amount": 1700000000000}
	]}`)

	table := BuildTable(payload.Data)
	assert.Equal(t, []string{"department", "amount", "year"}, table.Columns)
	want := [][]string{
		{"DoD", "816000000000", ""},
		{"HHS", "1700000000000", "2023"},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParametersKeepOrderUnfiltered(t *testing.T) {
	payload := decode(t, `{"data": [], "query_parameters": {"year": "2023", "metric": "budget", "entity": null, "limit": 5}}`)
	got := Parameters(payload)
	want := []Parameter{
		{Name: "year", Value: "2023"},
		{Name: "metric", Value: "budget"},
		{Name: "entity", Value: ""},
		{Name: "limit", Value: "5"},
	}
	assert.Equal(t, want, got)
}
