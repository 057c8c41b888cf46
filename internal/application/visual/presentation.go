package visual

import (
	"errors"
	"strings"

	"github.com/doeshing/budgetq/internal/domain"
)

// Presentation is everything a view needs to show one result.
type Presentation struct {
	Mode       domain.VisualizationMode
	Chart      domain.ChartData
	NoData     bool
	Message    string
	Insights   string
	Parameters []Parameter
	Table      Table
	// Malformed is set when some records matched no label or value field.
	Malformed *MalformedResultError
}

// HasInsights reports whether the service sent insight text.
func (p Presentation) HasInsights() bool {
	return strings.TrimSpace(p.Insights) != ""
}

// InsightsOrPlaceholder returns the insight markup verbatim or the placeholder.
func (p Presentation) InsightsOrPlaceholder() string {
	if p.HasInsights() {
		return p.Insights
	}
	return NoInsightsMessage
}

// Present normalizes payload for mode. Unknown modes fall back to bar and an
// empty data set yields the no-data presentation in every mode.
func Present(payload domain.ResultPayload, mode domain.VisualizationMode) Presentation {
	p := Presentation{
		Mode:       mode.Resolve(),
		Insights:   payload.Insights,
		Parameters: Parameters(payload),
		Table:      BuildTable(payload.Data),
	}

	chart, err := BuildChart(payload)
	p.Chart = chart
	var malformed *MalformedResultError
	if errors.As(err, &malformed) {
		p.Malformed = malformed
	}
	if chart.Empty() {
		p.NoData = true
		p.Message = NoDataMessage
	}
	return p
}
