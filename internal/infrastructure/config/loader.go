package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/budgetq/assets"
	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/pkg/filesystem"
	"github.com/doeshing/budgetq/internal/ports"
)

// Environment variables consulted by the loader.
const (
	EnvConfigPath = "BUDGETQ_CONFIG"
	EnvBaseURL    = "BUDGETQ_API_BASE_URL"
)

// FileLoader loads YAML configuration from ~/.budgetq/config.yaml (overridable via BUDGETQ_CONFIG).
type FileLoader struct {
	overridePath string
	envFile      string
}

// NewFileLoader builds a new loader. envFile names a dotenv file read before
// the environment is consulted; missing files are ignored.
func NewFileLoader(path, envFile string) *FileLoader {
	return &FileLoader{overridePath: path, envFile: envFile}
}

// Path returns the file Load reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandHome(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	if err := l.loadEnvFile(); err != nil {
		return domain.Config{}, err
	}

	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, fmt.Errorf("create config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data = assets.DefaultConfigYAML
		if err := os.WriteFile(path, data, domain.SecureFilePermissions); err != nil {
			return domain.Config{}, fmt.Errorf("write default config: %w", err)
		}
	} else if err != nil {
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg = hydrateDefaults(cfg)
	applyEnv(&cfg)
	return cfg, nil
}

func (l *FileLoader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}
	// godotenv never overrides variables already present in the environment.
	if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", l.envFile, err)
	}
	return nil
}

// DefaultConfig parses the embedded defaults.
func DefaultConfig() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Service.BaseURL == "" {
		cfg.Service.BaseURL = domain.DefaultBaseURL
	}
	if cfg.Service.TimeoutSeconds == 0 {
		cfg.Service.TimeoutSeconds = int(domain.DefaultServiceTimeout.Seconds())
	}
	if cfg.History.Persist && cfg.History.DBPath == "" {
		cfg.History.DBPath = filepath.Join(filesystem.AppDir(), "history.db")
	}
	cfg.History.DBPath = filesystem.ExpandHome(cfg.History.DBPath)
	if cfg.Preferences.DefaultVisualization == "" {
		cfg.Preferences.DefaultVisualization = string(domain.DefaultVisualization)
	}
	if cfg.Auth.TokenFile == "" {
		cfg.Auth.TokenFile = filepath.Join(filesystem.AppDir(), "token")
	}
	cfg.Auth.TokenFile = filesystem.ExpandHome(cfg.Auth.TokenFile)
	return cfg
}

func applyEnv(cfg *domain.Config) {
	if base := strings.TrimSpace(os.Getenv(EnvBaseURL)); base != "" {
		cfg.Service.BaseURL = base
	}
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
