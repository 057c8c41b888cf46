package doctor

import (
	"context"
	"fmt"
	"time"

	appconfig "github.com/doeshing/budgetq/internal/application/config"
	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/ports"
)

// HealthProber is the part of the gateway the doctor needs.
type HealthProber interface {
	Health(ctx context.Context) (domain.Fields, error)
}

// degradable is implemented by repositories that can fall back to a weaker store.
type degradable interface {
	Degraded() bool
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Gateway        HealthProber
	Tokens         ports.TokenStore
	History        ports.HistoryRepository
	// InspectToken decodes the stored token; nil skips claim checks.
	InspectToken func(token string) domain.TokenInfo
	Now          func() time.Time
}

// Run executes checks and returns a report. The error is non-nil only when
// the configuration cannot be loaded; other failures are reported as checks.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format %s, service %s", cfg.ConfigFormatVersion, cfg.GetBaseURL())))
	}

	checks = append(checks, s.serviceCheck(ctx))
	checks = append(checks, s.tokenCheck())
	checks = append(checks, s.historyCheck())

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) serviceCheck(ctx context.Context) domain.HealthCheck {
	if s.Gateway == nil {
		return warn("Query service", "gateway not initialized")
	}
	body, err := s.Gateway.Health(ctx)
	if err != nil {
		return fail("Query service", err.Error())
	}
	status, _ := body.GetString("status")
	if status == "" {
		status = "reachable"
	}
	return ok("Query service", status)
}

func (s *Service) tokenCheck() domain.HealthCheck {
	if s.Tokens == nil {
		return warn("Auth token", "token store not initialized")
	}
	token, err := s.Tokens.Token()
	if err != nil {
		return fail("Auth token", err.Error())
	}
	if token == "" {
		return warn("Auth token", "not logged in")
	}
	if s.InspectToken == nil {
		return ok("Auth token", "present")
	}
	info := s.InspectToken(token)
	switch {
	case info.Opaque:
		return ok("Auth token", "present (opaque)")
	case info.Expired(s.now()):
		return warn("Auth token", fmt.Sprintf("expired at %s", info.ExpiresAt.Format(domain.TimestampFormat)))
	case info.Subject != "":
		return ok("Auth token", fmt.Sprintf("present for %s", info.Subject))
	default:
		return ok("Auth token", "present")
	}
}

func (s *Service) historyCheck() domain.HealthCheck {
	if s.History == nil {
		return warn("History", "persistence disabled")
	}
	if d, isDegradable := s.History.(degradable); isDegradable && d.Degraded() {
		return warn("History", fmt.Sprintf("database unavailable, using %s", s.History.Path()))
	}
	if _, err := s.History.Entries(1); err != nil {
		return fail("History", err.Error())
	}
	return ok("History", s.History.Path())
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
