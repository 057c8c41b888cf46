package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/budgetq/internal/app"
	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/infrastructure/config"
	"github.com/doeshing/budgetq/internal/infrastructure/gateway/gatewaytest"
	"github.com/doeshing/budgetq/internal/pkg/logger"
)

type fakePrompter struct {
	answer bool
	asked  []string
}

func (p *fakePrompter) Confirm(question string) (bool, error) {
	p.asked = append(p.asked, question)
	return p.answer, nil
}

func (p *fakePrompter) Enabled() bool { return true }

type fakeClipboard struct {
	copied []string
}

func (c *fakeClipboard) Copy(text string) error {
	c.copied = append(c.copied, text)
	return nil
}

func (c *fakeClipboard) Enabled() bool { return true }

type testEnv struct {
	srv       *gatewaytest.Server
	dir       string
	cfgPath   string
	container *app.Container
	prompter  *fakePrompter
	clipboard *fakeClipboard
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := gatewaytest.New()
	t.Cleanup(srv.Close)
	t.Setenv(config.EnvBaseURL, "")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`config_format_version: "1"
service:
  base_url: %s
  timeout: 5
history:
  persist: true
  db_path: %s
  max_entries: 50
auth:
  token_file: %s
`, srv.BaseURL(), filepath.Join(dir, "history.db"), filepath.Join(dir, "token"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	env := &testEnv{srv: srv, dir: dir, cfgPath: cfgPath}
	env.container = env.build(t)
	return env
}

// build simulates a fresh process reading the same files.
func (e *testEnv) build(t *testing.T) *app.Container {
	t.Helper()
	container, err := app.Build(context.Background(), app.Options{
		ConfigPath: e.cfgPath,
		Logger:     logger.Nop{},
		HTTPClient: e.srv.Client(),
	})
	require.NoError(t, err)
	if closer, ok := container.HistoryRepo.(io.Closer); ok {
		t.Cleanup(func() { _ = closer.Close() })
	}
	e.prompter = &fakePrompter{answer: true}
	e.clipboard = &fakeClipboard{}
	container.Prompter = e.prompter
	container.Clipboard = e.clipboard
	return container
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

func (e *testEnv) runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(e.container)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAskPrintsResultAndPersistsHistory(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "ask", "defense budget")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: succeeded")
	assert.Contains(t, out, "<p>The Department of Defense received $816B.</p>")
	assert.Contains(t, out, "metric: budget")
	assert.Contains(t, out, "816,000,000,000")
	assert.Contains(t, out, "DoD")
	assert.Equal(t, []string{"defense budget"}, env.srv.Queries())

	stored, err := env.container.HistoryRepo.Entries(0)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	env.container = env.build(t)
	out, err = env.run(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "defense budget")
	assert.Contains(t, out, stored[0].ID)
}

func TestRootArgumentsAreAQuestion(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "defense", "budget")
	require.NoError(t, err)
	assert.Equal(t, []string{"defense budget"}, env.srv.Queries())
}

func TestAskServiceErrorFailsCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "ask", gatewaytest.QueryServiceError)
	require.Error(t, err)
	var svcErr *domain.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, 400, svcErr.Status)
	assert.Contains(t, out, "Status: failed")
	assert.Contains(t, out, "Error: Invalid fiscal year")
	assert.Zero(t, env.container.Session.History.Len())
}

func TestAskFallbackMessageWithoutBody(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "ask", gatewaytest.QueryEmptyError)
	require.Error(t, err)
	assert.Contains(t, out, domain.FallbackErrorMessage)
}

func TestAskWritesChartFile(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "chart.svg")

	out, err := env.run(t, "ask", "defense budget", "--viz", "pie", "--chart-out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Chart written to "+path)
	assert.Contains(t, out, "Visualization (pie)")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<svg")
}

func TestAskRejectsUnknownVisualization(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "ask", "defense budget", "--viz", "radar")
	require.Error(t, err)
	assert.Empty(t, env.srv.Queries())
}

func TestAskCopiesInsights(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "ask", "defense budget", "--copy")
	require.NoError(t, err)
	assert.Contains(t, out, "Insights copied to clipboard.")
	assert.Equal(t, []string{"<p>The Department of Defense received $816B.</p>"}, env.clipboard.copied)
}

func TestHistoryRerunSubmitsAgain(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "ask", "defense budget")
	require.NoError(t, err)
	id := env.container.Session.History.Entries()[0].ID

	out, err := env.run(t, "history", "rerun", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Status: succeeded")
	assert.Equal(t, []string{"defense budget", "defense budget"}, env.srv.Queries())
	assert.Equal(t, 2, env.container.Session.History.Len())

	_, err = env.run(t, "history", "rerun", "no-such-id")
	assert.ErrorIs(t, err, domain.ErrHistoryEntryNotFound)
}

func TestHistoryRerunHonoursTimeout(t *testing.T) {
	env := newTestEnv(t)
	entry, err := env.container.Session.History.Record(gatewaytest.QuerySlow, nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = env.run(t, "history", "rerun", entry.ID, "--timeout", "50ms")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []string{gatewaytest.QuerySlow}, env.srv.Queries())
}

func TestHistoryShowUsesStoredResult(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "ask", "defense budget")
	require.NoError(t, err)
	id := env.container.Session.History.Entries()[0].ID

	out, err := env.run(t, "history", "show", id, "--viz", "line")
	require.NoError(t, err)
	assert.Contains(t, out, "ID: "+id)
	assert.Contains(t, out, "Visualization (line)")
	assert.Contains(t, out, "$816B")
	assert.Len(t, env.srv.Queries(), 1)
	assert.Equal(t, id, env.container.Session.History.SelectedID())
}

func TestHistoryClearAsksFirst(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "ask", "defense budget")
	require.NoError(t, err)

	env.prompter.answer = false
	out, err := env.run(t, "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Clear cancelled.")
	assert.Equal(t, 1, env.container.Session.History.Len())
	require.Len(t, env.prompter.asked, 1)

	out, err = env.run(t, "history", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared.")
	assert.Zero(t, env.container.Session.History.Len())
	stored, err := env.container.HistoryRepo.Entries(0)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Len(t, env.prompter.asked, 1)
}

func TestHistoryExportWritesJSONL(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "ask", "defense budget")
	require.NoError(t, err)
	dest := filepath.Join(env.dir, "export.jsonl")

	_, err = env.run(t, "history", "export", dest)
	require.NoError(t, err)
	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"text":"defense budget"`)
}

func TestLoginStatusRemoteHistoryLogout(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "history", "remote")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Empty(t, env.srv.AuthHeaders())

	out, err := env.run(t, "login", "-u", gatewaytest.Username, "-p", gatewaytest.Password)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as analyst.")

	out, err = env.run(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "present (opaque)")

	out, err = env.run(t, "history", "remote")
	require.NoError(t, err)
	assert.Contains(t, out, "q-1")
	assert.Contains(t, out, "Compare education spending between 2020 and 2022")

	out, err = env.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")
	assert.Equal(t, 1, env.srv.Logouts())

	out, err = env.run(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("BUDGETQ_PASSWORD", "")

	out, err := env.runWithInput(t, gatewaytest.Password+"\n", "login", "--username", gatewaytest.Username)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as analyst.")
}

func TestLoginRejectedCredentials(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "login", "-u", gatewaytest.Username, "-p", "wrong")
	require.Error(t, err)
	var svcErr *domain.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, 401, svcErr.Status)
	assert.Equal(t, "Invalid credentials", svcErr.Message)
}

func TestAuthStatusDecodesJWT(t *testing.T) {
	env := newTestEnv(t)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "analyst",
		"exp": time.Now().Add(2 * time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, env.container.Tokens.SetToken(token))

	out, err := env.run(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Subject: analyst")
	assert.Contains(t, out, "Expires:")
	assert.Contains(t, out, "from now")
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "register", "-u", "newbie", "-p", "pw", "--email", "n@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "User registered")

	token, err := env.container.Tokens.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = env.run(t, "register", "-u", gatewaytest.Username, "-p", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Username already exists")
}

func TestHistoryFetchPrintsRecord(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "history", "fetch", "q-1")
	require.NoError(t, err)
	assert.Contains(t, out, "id:")
	assert.Contains(t, out, "q-1")

	_, err = env.run(t, "history", "fetch", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Query not found")
}

func TestDoctorReportsChecks(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "[OK] Config file")
	assert.Contains(t, out, "[OK] Query service - healthy")
	assert.Contains(t, out, "[WARN] Auth token - not logged in")
	assert.Contains(t, out, "[OK] History")
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, env.cfgPath+"\n", out)

	out, err = env.run(t, "config", "get", "service.timeout")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	_, err = env.run(t, "config", "get", "service.nope")
	require.Error(t, err)

	out, err = env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: "+env.srv.BaseURL())

	out, err = env.run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")

	out, err = env.run(t, "config", "diff")
	require.NoError(t, err)
	assert.Contains(t, out, "BaseURL")
}

func TestExamplesAndVersion(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "examples")
	require.NoError(t, err)
	for _, q := range domain.ExampleQueries {
		assert.Contains(t, out, q)
	}

	out, err = env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "budgetq version")
	assert.Contains(t, out, "Go version:")
}
