package domain

// Config mirrors ~/.budgetq/config.yaml.
type Config struct {
	ConfigFormatVersion string          `yaml:"config_format_version"`
	Service             ServiceSettings `yaml:"service"`
	History             HistorySettings `yaml:"history"`
	Preferences         Preferences     `yaml:"preferences"`
	Chart               ChartSettings   `yaml:"chart"`
	Auth                AuthSettings    `yaml:"auth"`
}

// ServiceSettings locates the remote query service.
type ServiceSettings struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// HistorySettings controls the local query history.
type HistorySettings struct {
	Persist    bool   `yaml:"persist"`
	DBPath     string `yaml:"db_path"`
	MaxEntries int    `yaml:"max_entries"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultVisualization string `yaml:"default_visualization"`
}

// ChartSettings sizes rendered chart files.
type ChartSettings struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Format string `yaml:"format"`
}

// AuthSettings points at the bearer token storage.
type AuthSettings struct {
	TokenFile string `yaml:"token_file"`
}
