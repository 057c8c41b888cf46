package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// GetTimeout returns the gateway request timeout with default fallback.
func (c *Config) GetTimeout() time.Duration {
	if c.Service.TimeoutSeconds <= 0 {
		return DefaultServiceTimeout
	}
	return time.Duration(c.Service.TimeoutSeconds) * time.Second
}

// GetBaseURL returns the service base URL without a trailing slash.
func (c *Config) GetBaseURL() string {
	base := strings.TrimSpace(c.Service.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

// GetHistoryCapacity returns the history bound; zero means unbounded.
func (c *Config) GetHistoryCapacity() int {
	if c.History.MaxEntries < 0 {
		return 0
	}
	return c.History.MaxEntries
}

// GetDefaultVisualization resolves the configured starting mode.
func (c *Config) GetDefaultVisualization() VisualizationMode {
	mode, _ := ParseVisualizationMode(c.Preferences.DefaultVisualization)
	return mode
}

// GetChartFormat resolves the chart output format, png unless svg is requested.
func (c *Config) GetChartFormat() ChartFormat {
	if strings.EqualFold(c.Chart.Format, string(ChartFormatSVG)) {
		return ChartFormatSVG
	}
	return ChartFormatPNG
}

// GetChartSize returns width and height with defaults applied.
func (c *Config) GetChartSize() (int, int) {
	w, h := c.Chart.Width, c.Chart.Height
	if w <= 0 {
		w = DefaultChartWidth
	}
	if h <= 0 {
		h = DefaultChartHeight
	}
	return w, h
}

// IsHistoryPersisted reports whether history survives between runs.
func (c *Config) IsHistoryPersisted() bool {
	return c.History.Persist
}

// ValidateConsistency checks cross-field constraints.
func (c *Config) ValidateConsistency() error {
	u, err := url.Parse(c.GetBaseURL())
	if err != nil {
		return fmt.Errorf("service.base_url invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("service.base_url must be http or https, got %q", c.Service.BaseURL)
	}
	if c.History.Persist && strings.TrimSpace(c.History.DBPath) == "" {
		return fmt.Errorf("history.db_path must be set when history.persist is enabled")
	}
	if f := c.Chart.Format; f != "" && !strings.EqualFold(f, "png") && !strings.EqualFold(f, "svg") {
		return fmt.Errorf("chart.format must be png|svg, got %s", f)
	}
	if v := c.Preferences.DefaultVisualization; v != "" {
		if _, ok := ParseVisualizationMode(v); !ok {
			return fmt.Errorf("preferences.default_visualization must be bar|line|pie|doughnut, got %s", v)
		}
	}
	return nil
}
