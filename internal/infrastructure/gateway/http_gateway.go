// Package gateway is the HTTP adapter for the remote budget query service.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/doeshing/budgetq/internal/domain"
	pkglogger "github.com/doeshing/budgetq/internal/pkg/logger"
	"github.com/doeshing/budgetq/internal/ports"
)

// HTTPGateway talks JSON to the query service under baseURL.
type HTTPGateway struct {
	baseURL    string
	httpClient *http.Client
	tokens     ports.TokenStore
	logger     ports.Logger
}

// New builds a gateway. A nil client uses http.DefaultClient; tokens may be nil
// when no credential storage is configured.
func New(baseURL string, client *http.Client, tokens ports.TokenStore, logger ports.Logger) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = pkglogger.Nop{}
	}
	return &HTTPGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		tokens:     tokens,
		logger:     logger,
	}
}

// BaseURL returns the service root the gateway targets.
func (g *HTTPGateway) BaseURL() string {
	return g.baseURL
}

// SubmitQuery posts the question and decodes the structured result.
func (g *HTTPGateway) SubmitQuery(ctx context.Context, text string) (domain.ResultPayload, error) {
	var payload domain.ResultPayload
	if err := g.do(ctx, http.MethodPost, "/query", map[string]string{"query": text}, &payload); err != nil {
		return domain.ResultPayload{}, err
	}
	return payload, nil
}

// History lists the server-side query history. The service may answer with a
// bare array or an object wrapping one.
func (g *HTTPGateway) History(ctx context.Context) ([]domain.Fields, error) {
	var raw json.RawMessage
	if err := g.do(ctx, http.MethodGet, "/history", nil, &raw); err != nil {
		return nil, err
	}
	records, err := decodeRecordList(raw, "history", "queries", "data")
	if err != nil {
		return nil, &domain.TransportError{Op: "GET /history", Err: err}
	}
	return records, nil
}

// QueryDetails fetches one past query by id.
func (g *HTTPGateway) QueryDetails(ctx context.Context, id string) (domain.Fields, error) {
	var details domain.Fields
	if err := g.do(ctx, http.MethodGet, "/query/"+url.PathEscape(id), nil, &details); err != nil {
		return nil, err
	}
	return details, nil
}

// Login authenticates and stores the returned bearer token.
func (g *HTTPGateway) Login(ctx context.Context, creds domain.Credentials) (domain.AuthSession, error) {
	var body domain.Fields
	if err := g.do(ctx, http.MethodPost, "/auth/login", creds, &body); err != nil {
		return domain.AuthSession{}, err
	}
	session := domain.AuthSession{Details: body}
	for _, key := range []string{"token", "access_token"} {
		if token, ok := body.GetString(key); ok && token != "" {
			session.Token = token
			break
		}
	}
	if session.Token != "" && g.tokens != nil {
		if err := g.tokens.SetToken(session.Token); err != nil {
			return session, fmt.Errorf("store token: %w", err)
		}
	}
	return session, nil
}

// Register creates an account; it does not log in.
func (g *HTTPGateway) Register(ctx context.Context, creds domain.Credentials) (domain.Fields, error) {
	var body domain.Fields
	if err := g.do(ctx, http.MethodPost, "/auth/register", creds, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// Logout forgets the local token before telling the service, so the
// credential is gone even when the call fails.
func (g *HTTPGateway) Logout(ctx context.Context) error {
	token := g.token()
	if g.tokens != nil {
		if err := g.tokens.ClearToken(); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
	}
	return g.send(ctx, http.MethodPost, "/auth/logout", nil, nil, token)
}

// Health queries the service health endpoint.
func (g *HTTPGateway) Health(ctx context.Context) (domain.Fields, error) {
	var body domain.Fields
	if err := g.do(ctx, http.MethodGet, "/health", nil, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (g *HTTPGateway) token() string {
	if g.tokens == nil {
		return ""
	}
	token, err := g.tokens.Token()
	if err != nil {
		g.logger.Warn("read token failed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return token
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, in, out interface{}) error {
	return g.send(ctx, method, path, in, out, g.token())
}

func (g *HTTPGateway) send(ctx context.Context, method, path string, in, out interface{}, token string) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	g.logger.Debug("gateway request", map[string]interface{}{"op": op, "auth": token != ""})
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	g.logger.Debug("gateway response", map[string]interface{}{"op": op, "status": resp.StatusCode, "bytes": len(raw)})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ServiceError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

var _ ports.Gateway = (*HTTPGateway)(nil)
