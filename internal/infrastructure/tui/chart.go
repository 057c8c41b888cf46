package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/doeshing/budgetq/internal/application/visual"
	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/infrastructure/cli/helpers"
)

const barWidth = 40

// chartView draws the first series as text: bars for bar and line modes,
// shares of the total for pie and doughnut.
func chartView(pres visual.Presentation) string {
	if len(pres.Chart.Series) == 0 {
		return ""
	}
	series := pres.Chart.Series[0]
	labels := pres.Chart.Labels

	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}

	var b strings.Builder
	b.WriteString(mutedStyle.Render(series.Label))
	b.WriteString("\n")

	switch pres.Mode {
	case domain.VisualizationPie, domain.VisualizationDoughnut:
		total := 0.0
		for _, v := range series.Values {
			if v > 0 {
				total += v
			}
		}
		for i, label := range labels {
			v := valueAt(series, i)
			share := 0.0
			if total > 0 && v > 0 {
				share = v / total
			}
			bar := strings.Repeat("█", int(math.Round(share*barWidth)))
			fmt.Fprintf(&b, "%s %s %5.1f%%\n", helpers.PadRight(label, labelWidth), colored(series, i, bar), share*100)
		}
	default:
		peak := 0.0
		for _, v := range series.Values {
			peak = math.Max(peak, math.Abs(v))
		}
		glyph, tip := "█", ""
		if pres.Mode == domain.VisualizationLine {
			glyph, tip = "─", "●"
		}
		for i, label := range labels {
			v := valueAt(series, i)
			n := 0
			if peak > 0 {
				n = int(math.Round(math.Abs(v) / peak * barWidth))
			}
			bar := strings.Repeat(glyph, n)
			if tip != "" {
				bar = strings.Repeat(glyph, max(n-1, 0)) + tip
			}
			fmt.Fprintf(&b, "%s %s %s\n", helpers.PadRight(label, labelWidth), colored(series, i, bar), humanize.CommafWithDigits(v, 2))
		}
	}
	return b.String()
}

func valueAt(series domain.ChartSeries, i int) float64 {
	if i < len(series.Values) {
		return series.Values[i]
	}
	return 0
}

func colored(series domain.ChartSeries, i int, s string) string {
	if i >= len(series.BorderColors) {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(series.BorderColors[i].Hex())).Render(s)
}
