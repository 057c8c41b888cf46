// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application core (query lifecycle, history, normalizer) depends only on
// these contracts. Adapters in the infrastructure layer implement them: the
// HTTP gateway to the budget query service, the token file, the sqlite history
// repository, the go-chart renderer and the terminal helpers.
package ports

import (
	"context"
	"io"

	"github.com/doeshing/budgetq/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.budgetq/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// QueryGateway submits one natural-language question to the remote service.
type QueryGateway interface {
	SubmitQuery(ctx context.Context, text string) (domain.ResultPayload, error)
}

// Gateway is the full request/response boundary of the remote budget service.
// Failures are reported as *domain.ServiceError or *domain.TransportError.
type Gateway interface {
	QueryGateway
	History(ctx context.Context) ([]domain.Fields, error)
	QueryDetails(ctx context.Context, id string) (domain.Fields, error)
	Login(ctx context.Context, creds domain.Credentials) (domain.AuthSession, error)
	Register(ctx context.Context, creds domain.Credentials) (domain.Fields, error)
	Logout(ctx context.Context) error
	Health(ctx context.Context) (domain.Fields, error)
}

// TokenStore holds the bearer token attached to outgoing requests.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// HistoryRepository persists history entries between runs.
type HistoryRepository interface {
	Save(entry domain.HistoryEntry) error
	Entries(limit int) ([]domain.HistoryEntry, error)
	Clear() error
	ExportJSON(dest string) error
	Path() string
}

// ChartRenderer draws normalized chart data in the requested mode.
type ChartRenderer interface {
	Render(w io.Writer, data domain.ChartData, mode domain.VisualizationMode, format domain.ChartFormat) error
}

// ConfirmationPrompter asks the user to approve a destructive action.
type ConfirmationPrompter interface {
	Confirm(question string) (bool, error)
	Enabled() bool
}

// Clipboard provides cross-platform clipboard integration for copying insights.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
