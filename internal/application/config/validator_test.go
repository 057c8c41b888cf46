package config

import (
	"testing"

	"github.com/doeshing/budgetq/internal/domain"
)

func TestValidate(t *testing.T) {
	valid := domain.Config{
		ConfigFormatVersion: "1",
		Service:             domain.ServiceSettings{BaseURL: "http://localhost:5000/api", TimeoutSeconds: 30},
		History:             domain.HistorySettings{Persist: true, DBPath: "/tmp/history.db", MaxEntries: 50},
		Preferences:         domain.Preferences{DefaultVisualization: "line"},
		Chart:               domain.ChartSettings{Width: 800, Height: 400, Format: "svg"},
	}

	tests := []struct {
		name      string
		mutate    func(*domain.Config)
		wantError bool
	}{
		{name: "valid config", mutate: func(*domain.Config) {}},
		{name: "future format version", mutate: func(c *domain.Config) { c.ConfigFormatVersion = "2" }, wantError: true},
		{name: "negative timeout", mutate: func(c *domain.Config) { c.Service.TimeoutSeconds = -1 }, wantError: true},
		{name: "negative capacity", mutate: func(c *domain.Config) { c.History.MaxEntries = -5 }, wantError: true},
		{name: "negative chart size", mutate: func(c *domain.Config) { c.Chart.Width = -1 }, wantError: true},
		{name: "bad scheme", mutate: func(c *domain.Config) { c.Service.BaseURL = "file:///etc" }, wantError: true},
		{name: "unbounded history allowed", mutate: func(c *domain.Config) { c.History.MaxEntries = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
