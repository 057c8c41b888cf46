package domain

import (
	"fmt"
	"strconv"
)

// ChartFormat is the encoding of a rendered chart file.
type ChartFormat string

const (
	ChartFormatPNG ChartFormat = "png"
	ChartFormatSVG ChartFormat = "svg"
)

// Color is an RGBA colour with fractional alpha.
type Color struct {
	R, G, B uint8
	A       float64
}

// String renders the colour in CSS rgba() notation.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Hex renders the colour without alpha, as terminals expect.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Opaque returns the same colour at full opacity.
func (c Color) Opaque() Color {
	c.A = 1
	return c
}

// ChartSeries is one labelled run of values with per-point colours.
type ChartSeries struct {
	Label            string
	Values           []float64
	BackgroundColors []Color
	BorderColors     []Color
	BorderWidth      int
}

// ChartData is the normalized, renderer-independent chart shape.
type ChartData struct {
	Title  string
	Labels []string
	Series []ChartSeries
}

// Empty reports whether there is nothing to draw.
func (d ChartData) Empty() bool {
	return len(d.Labels) == 0 || len(d.Series) == 0
}
