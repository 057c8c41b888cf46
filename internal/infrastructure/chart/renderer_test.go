package chart

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/budgetq/internal/domain"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G'}

func sampleData(values ...float64) domain.ChartData {
	fill := domain.Color{R: 54, G: 162, B: 235, A: 0.6}
	series := domain.ChartSeries{Label: "budget", BorderWidth: 1}
	var labels []string
	for i, v := range values {
		labels = append(labels, string(rune('A'+i)))
		series.Values = append(series.Values, v)
		series.BackgroundColors = append(series.BackgroundColors, fill)
		series.BorderColors = append(series.BorderColors, fill.Opaque())
	}
	return domain.ChartData{Title: "Budget Data Visualization", Labels: labels, Series: []domain.ChartSeries{series}}
}

func TestRenderEveryModeAsPNG(t *testing.T) {
	r := NewRenderer(640, 400)
	for _, mode := range domain.VisualizationModes {
		t.Run(string(mode), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, sampleData(816e9, 1.7e12, 4.2e11), mode, domain.ChartFormatPNG))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
		})
	}
}

func TestRenderSinglePoint(t *testing.T) {
	r := NewRenderer(640, 400)
	for _, mode := range domain.VisualizationModes {
		t.Run(string(mode), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, sampleData(816000000000), mode, domain.ChartFormatSVG))
			assert.Contains(t, buf.String(), "<svg")
		})
	}
}

func TestRenderUnknownModeUsesBar(t *testing.T) {
	r := NewRenderer(640, 400)
	var bar, unknown bytes.Buffer
	require.NoError(t, r.Render(&bar, sampleData(1, 2), domain.VisualizationBar, domain.ChartFormatSVG))
	require.NoError(t, r.Render(&unknown, sampleData(1, 2), "radar", domain.ChartFormatSVG))
	assert.Equal(t, bar.String(), unknown.String())
}

func TestRenderEmptyData(t *testing.T) {
	r := NewRenderer(0, 0)
	for _, mode := range domain.VisualizationModes {
		err := r.Render(&bytes.Buffer{}, domain.ChartData{Title: "x"}, mode, domain.ChartFormatPNG)
		assert.True(t, errors.Is(err, domain.ErrNoChartData), "mode %s: %v", mode, err)
	}
}

func TestRenderPieWithoutPositiveValues(t *testing.T) {
	r := NewRenderer(640, 400)
	err := r.Render(&bytes.Buffer{}, sampleData(0, -5), domain.VisualizationPie, domain.ChartFormatPNG)
	assert.True(t, errors.Is(err, domain.ErrNoChartData))

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleData(0, -5), domain.VisualizationBar, domain.ChartFormatSVG))
}

func TestValueBounds(t *testing.T) {
	lo, hi := valueBounds([]float64{5})
	assert.Equal(t, 0.0, lo)
	assert.Greater(t, hi, 5.0)

	lo, hi = valueBounds([]float64{0, 0})
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)

	lo, _ = valueBounds([]float64{-10, 4})
	assert.Less(t, lo, -10.0)
}

func TestValueBoundsIgnoresNonFinite(t *testing.T) {
	lo, hi := valueBounds([]float64{math.NaN(), 5, math.Inf(1), math.Inf(-1)})
	assert.Equal(t, 0.0, lo)
	assert.Greater(t, hi, 5.0)
	assert.Less(t, hi, 6.0)
}

func TestRenderSkipsNonFiniteValues(t *testing.T) {
	r := NewRenderer(640, 400)
	data := sampleData(math.NaN(), 5, math.Inf(1))
	for _, mode := range domain.VisualizationModes {
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, data, mode, domain.ChartFormatSVG), mode)
		assert.NotContains(t, buf.String(), "NaN", mode)
	}

	err := r.Render(&bytes.Buffer{}, sampleData(math.Inf(1), math.NaN()), domain.VisualizationPie, domain.ChartFormatPNG)
	assert.ErrorIs(t, err, domain.ErrNoChartData)
}

func TestFormatAmount(t *testing.T) {
	assert.True(t, strings.HasPrefix(formatAmount(816000000000.0), "816"), formatAmount(816000000000.0))
	assert.Equal(t, "12.5", formatAmount(12.5))
	assert.Equal(t, "x", formatAmount("x"))
}

func TestToDrawingAlpha(t *testing.T) {
	c := toDrawing(domain.Color{R: 1, G: 2, B: 3, A: 0.6})
	assert.Equal(t, uint8(153), c.A)
	assert.Equal(t, uint8(255), toDrawing(domain.Color{A: 1}).A)
}
