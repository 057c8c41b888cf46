package config

import (
	"fmt"

	"github.com/doeshing/budgetq/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if cfg.ConfigFormatVersion != "" && cfg.ConfigFormatVersion != "1" {
		return fmt.Errorf("unsupported config_format_version %q", cfg.ConfigFormatVersion)
	}
	if err := validateService(cfg.Service); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	if err := validateChart(cfg.Chart); err != nil {
		return err
	}
	return cfg.ValidateConsistency()
}

func validateService(svc domain.ServiceSettings) error {
	if svc.TimeoutSeconds < 0 {
		return fmt.Errorf("service.timeout must be >= 0")
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	if history.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must be >= 0")
	}
	return nil
}

func validateChart(chart domain.ChartSettings) error {
	if chart.Width < 0 || chart.Height < 0 {
		return fmt.Errorf("chart.width and chart.height must be >= 0")
	}
	return nil
}
