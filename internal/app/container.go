package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/doeshing/budgetq/internal/application/config"
	"github.com/doeshing/budgetq/internal/application/doctor"
	apphistory "github.com/doeshing/budgetq/internal/application/history"
	"github.com/doeshing/budgetq/internal/application/query"
	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/infrastructure/auth"
	"github.com/doeshing/budgetq/internal/infrastructure/chart"
	configloader "github.com/doeshing/budgetq/internal/infrastructure/config"
	"github.com/doeshing/budgetq/internal/infrastructure/gateway"
	"github.com/doeshing/budgetq/internal/infrastructure/history"
	"github.com/doeshing/budgetq/internal/pkg/logger"
	"github.com/doeshing/budgetq/internal/ports"
)

// DotEnvFile is read from the working directory before the environment is consulted.
const DotEnvFile = ".env"

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config        domain.Config
	ConfigLoader  *configloader.FileLoader
	Logger        ports.Logger
	Gateway       ports.Gateway
	Tokens        *auth.FileTokenStore
	HistoryRepo   ports.HistoryRepository
	Session       *query.Session
	Renderer      ports.ChartRenderer
	DoctorService *doctor.Service
	Prompter      ports.ConfirmationPrompter
	Clipboard     ports.Clipboard
}

// Options overrides parts of the graph, mostly for tests.
type Options struct {
	Verbose    bool
	ConfigPath string
	EnvFile    string
	Logger     ports.Logger
	HTTPClient *http.Client
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	return Build(ctx, Options{Verbose: verbose, EnvFile: DotEnvFile})
}

// Build constructs the dependency graph from explicit options.
func Build(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := configloader.NewFileLoader(opts.ConfigPath, opts.EnvFile)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgLoader.Path(), err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStd(opts.Verbose)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.GetTimeout()}
	}

	tokens := auth.NewFileTokenStore(cfg.Auth.TokenFile)
	gw := gateway.New(cfg.GetBaseURL(), client, tokens, log)

	var repo ports.HistoryRepository
	if cfg.IsHistoryPersisted() {
		sqliteStore := history.NewSQLiteStore(cfg.History.DBPath, cfg.GetHistoryCapacity())
		if sqliteStore.Degraded() {
			log.Warn("history database unavailable, using jsonl file", map[string]interface{}{"path": sqliteStore.Path()})
		}
		repo = sqliteStore
	}

	session := &query.Session{
		Gateway:    gw,
		Lifecycle:  query.NewLifecycle(cfg.GetDefaultVisualization()),
		History:    apphistory.NewStore(cfg.GetHistoryCapacity()),
		Repository: repo,
		Logger:     log,
		Timeout:    cfg.GetTimeout(),
	}
	if err := session.LoadHistory(cfg.GetHistoryCapacity()); err != nil {
		log.Warn("history not restored", map[string]interface{}{"error": err.Error()})
	}

	width, height := cfg.GetChartSize()
	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Gateway:        gw,
		Tokens:         tokens,
		History:        repo,
		InspectToken:   auth.Inspect,
	}

	return &Container{
		Config:        cfg,
		ConfigLoader:  cfgLoader,
		Logger:        log,
		Gateway:       gw,
		Tokens:        tokens,
		HistoryRepo:   repo,
		Session:       session,
		Renderer:      chart.NewRenderer(width, height),
		DoctorService: doctorService,
	}, nil
}
