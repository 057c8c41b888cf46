package domain

import "strings"

// QueryStatus is the observable phase of the query lifecycle.
type QueryStatus string

const (
	StatusIdle      QueryStatus = "idle"
	StatusPending   QueryStatus = "pending"
	StatusSucceeded QueryStatus = "succeeded"
	StatusFailed    QueryStatus = "failed"
)

// VisualizationMode selects the chart rendering strategy.
type VisualizationMode string

const (
	VisualizationBar      VisualizationMode = "bar"
	VisualizationLine     VisualizationMode = "line"
	VisualizationPie      VisualizationMode = "pie"
	VisualizationDoughnut VisualizationMode = "doughnut"
)

// DefaultVisualization is the mode used until the user picks another one.
const DefaultVisualization = VisualizationBar

// VisualizationModes lists the supported modes in menu order.
var VisualizationModes = []VisualizationMode{
	VisualizationBar,
	VisualizationLine,
	VisualizationPie,
	VisualizationDoughnut,
}

// ParseVisualizationMode maps user input to a mode. Unknown input yields bar
// and false.
func ParseVisualizationMode(s string) (VisualizationMode, bool) {
	mode := VisualizationMode(strings.ToLower(strings.TrimSpace(s)))
	if mode.Valid() {
		return mode, true
	}
	return DefaultVisualization, false
}

// Valid reports whether the mode is one of the supported strategies.
func (m VisualizationMode) Valid() bool {
	switch m {
	case VisualizationBar, VisualizationLine, VisualizationPie, VisualizationDoughnut:
		return true
	}
	return false
}

// Resolve returns the mode itself, or bar when unrecognized.
func (m VisualizationMode) Resolve() VisualizationMode {
	if m.Valid() {
		return m
	}
	return DefaultVisualization
}

// Next cycles to the following mode, used by interactive selectors.
func (m VisualizationMode) Next() VisualizationMode {
	for i, mode := range VisualizationModes {
		if mode == m {
			return VisualizationModes[(i+1)%len(VisualizationModes)]
		}
	}
	return DefaultVisualization
}

// QueryState is a snapshot of the query lifecycle.
type QueryState struct {
	Text          string
	Loading       bool
	Error         string
	Results       *ResultPayload
	Visualization VisualizationMode
	// Seq is the sequence number of the request currently in flight, zero when none.
	Seq uint64
}

// Status derives the lifecycle phase from the snapshot.
func (s QueryState) Status() QueryStatus {
	switch {
	case s.Loading:
		return StatusPending
	case s.Error != "":
		return StatusFailed
	case s.Results != nil:
		return StatusSucceeded
	default:
		return StatusIdle
	}
}

// CanSubmit reports whether the current text may be submitted.
func (s QueryState) CanSubmit() bool {
	return strings.TrimSpace(s.Text) != "" && !s.Loading
}
