// Package chart draws normalized chart data with go-chart. Each
// visualization mode maps to one strategy over the same data.
package chart

import (
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/ports"
)

// renderable is satisfied by every go-chart chart type.
type renderable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

type strategy func(data domain.ChartData, width, height int) (renderable, error)

// Renderer renders charts at a fixed size.
type Renderer struct {
	Width  int
	Height int

	strategies map[domain.VisualizationMode]strategy
}

// NewRenderer returns a renderer producing width x height images.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = domain.DefaultChartWidth
	}
	if height <= 0 {
		height = domain.DefaultChartHeight
	}
	return &Renderer{
		Width:  width,
		Height: height,
		strategies: map[domain.VisualizationMode]strategy{
			domain.VisualizationBar:      barChart,
			domain.VisualizationLine:     lineChart,
			domain.VisualizationPie:      pieChart,
			domain.VisualizationDoughnut: donutChart,
		},
	}
}

// Render implements ports.ChartRenderer. Unknown modes use the bar strategy.
func (r *Renderer) Render(w io.Writer, data domain.ChartData, mode domain.VisualizationMode, format domain.ChartFormat) error {
	if data.Empty() {
		return domain.ErrNoChartData
	}
	build, ok := r.strategies[mode.Resolve()]
	if !ok {
		build = barChart
	}
	ch, err := build(data, r.Width, r.Height)
	if err != nil {
		return err
	}

	provider := gochart.PNG
	if format == domain.ChartFormatSVG {
		provider = gochart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render %s chart: %w", mode.Resolve(), err)
	}
	return nil
}

func barChart(data domain.ChartData, width, height int) (renderable, error) {
	series := data.Series[0]
	bars := make([]gochart.Value, 0, len(data.Labels))
	for i, label := range data.Labels {
		bars = append(bars, gochart.Value{
			Label: label,
			Value: valueAt(series, i),
			Style: pointStyle(series, i),
		})
	}

	lo, hi := valueBounds(series.Values)
	return gochart.BarChart{
		Title:      data.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth(width, len(bars)),
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			Name:           series.Label,
			Range:          &gochart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: formatAmount,
		},
		Bars: bars,
	}, nil
}

func lineChart(data domain.ChartData, width, height int) (renderable, error) {
	series := data.Series[0]
	n := len(data.Labels)
	xs := make([]float64, n)
	ys := make([]float64, n)
	// go-chart derives the x range from the ticks; the unlabelled outer ticks
	// keep a single point from collapsing it to zero.
	ticks := []gochart.Tick{{Value: -0.5}}
	for i, label := range data.Labels {
		xs[i] = float64(i)
		ys[i] = valueAt(series, i)
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: label})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(n) - 0.5})

	stroke := drawing.ColorFromHex("36A2EB")
	if len(series.BorderColors) > 0 {
		stroke = toDrawing(series.BorderColors[0])
	}
	fill := stroke.WithAlpha(40)

	lo, hi := valueBounds(ys)
	ch := &gochart.Chart{
		Title:      data.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Ticks: ticks},
		YAxis: gochart.YAxis{
			Name:           series.Label,
			Range:          &gochart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: formatAmount,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    series.Label,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: stroke,
					StrokeWidth: float64(maxInt(series.BorderWidth, 1)) * 2,
					FillColor:   fill,
					DotWidth:    4,
					DotColor:    stroke,
				},
			},
		},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(ch)}
	return ch, nil
}

func pieChart(data domain.ChartData, width, height int) (renderable, error) {
	values, err := sliceValues(data)
	if err != nil {
		return nil, err
	}
	return gochart.PieChart{
		Title:  data.Title,
		Width:  width,
		Height: height,
		Values: values,
	}, nil
}

func donutChart(data domain.ChartData, width, height int) (renderable, error) {
	values, err := sliceValues(data)
	if err != nil {
		return nil, err
	}
	return gochart.DonutChart{
		Title:  data.Title,
		Width:  width,
		Height: height,
		Values: values,
	}, nil
}

// sliceValues drops non-positive values, which have no area in a pie.
func sliceValues(data domain.ChartData) ([]gochart.Value, error) {
	series := data.Series[0]
	var values []gochart.Value
	for i, label := range data.Labels {
		v := valueAt(series, i)
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, gochart.Value{Label: label, Value: v, Style: pointStyle(series, i)})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no positive values to divide", domain.ErrNoChartData)
	}
	return values, nil
}

// valueAt reads the i-th value; missing and non-finite values draw as zero.
func valueAt(series domain.ChartSeries, i int) float64 {
	if i >= len(series.Values) {
		return 0
	}
	if v := series.Values[i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return 0
}

func pointStyle(series domain.ChartSeries, i int) gochart.Style {
	style := gochart.Style{StrokeWidth: float64(series.BorderWidth)}
	if i < len(series.BackgroundColors) {
		style.FillColor = toDrawing(series.BackgroundColors[i])
	}
	if i < len(series.BorderColors) {
		style.StrokeColor = toDrawing(series.BorderColors[i])
	}
	return style
}

func toDrawing(c domain.Color) drawing.Color {
	alpha := math.Round(math.Max(0, math.Min(1, c.A)) * 255)
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(alpha)}
}

// valueBounds returns an axis range that always includes zero and never
// collapses to a single value.
func valueBounds(values []float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	if hi > 0 {
		hi += pad
	}
	if lo < 0 {
		lo -= pad
	}
	return lo, hi
}

func barWidth(width, n int) int {
	if n == 0 {
		return 50
	}
	w := width / (n * 2)
	switch {
	case w < 8:
		return 8
	case w > 80:
		return 80
	default:
		return w
	}
}

// formatAmount abbreviates axis values: 816000000000 becomes "816 G".
func formatAmount(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	if math.Abs(f) < 1000 {
		return humanize.FtoaWithDigits(f, 2)
	}
	return humanize.SIWithDigits(f, 1, "")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var _ ports.ChartRenderer = (*Renderer)(nil)
