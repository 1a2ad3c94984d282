package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied when the config file is absent or partial.
const (
	DefaultBaseURL     = "http://localhost:5000/api"
	DefaultHTTPTimeout = 60 * time.Second
	DefaultLogLevel    = "info"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Server ServerConfig  `toml:"server"`
	Output OutputConfig  `toml:"output"`
	Charts ChartsConfig  `toml:"charts"`
	Log    LoggingConfig `toml:"log"`
}

// ServerConfig maps backend connection settings.
type ServerConfig struct {
	BaseURL *string `toml:"base-url"`
	Timeout *string `toml:"timeout"`
}

// OutputConfig maps dashboard output settings.
type OutputConfig struct {
	Dir *string `toml:"dir"`
}

// LoggingConfig maps logging settings.
type LoggingConfig struct {
	Level *string `toml:"level"`
}

// ChartsConfig maps the chart vocabulary tables. Risk levels and per-metric
// category sets are data here, not code, so adding a category or a metric does
// not require a new chart function.
type ChartsConfig struct {
	RiskLevels []string      `toml:"risk-levels"`
	RiskColors []string      `toml:"risk-colors"`
	Metrics    []MetricTable `toml:"metric"`
}

// MetricTable describes one cross-tabulated metric: which JSON field its
// records carry the category value under, the category order on the x-axis,
// and the container the grouped-bar chart is drawn into.
type MetricTable struct {
	Name        string   `toml:"name"`
	Title       string   `toml:"title"`
	AxisTitle   string   `toml:"axis-title"`
	Field       string   `toml:"field"`
	Categories  []string `toml:"categories"`
	ContainerID string   `toml:"container-id"`
}

// Config is the resolved runtime configuration.
type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration
	OutputDir   string
	LogLevel    string
	Tables      Tables
}

// Tables holds the resolved chart vocabularies.
type Tables struct {
	RiskLevels []string
	RiskColors []string
	Metrics    []MetricTable
}

// DefaultTables reproduces the vocabularies the service emits today. The
// rendering pipeline treats them as data; a config file may extend them.
func DefaultTables() Tables {
	return Tables{
		RiskLevels: []string{"High Risk", "Moderate Risk", "Low Risk"},
		RiskColors: []string{"#ff6b6b", "#ffd93d", "#6bcb77"},
		Metrics: []MetricTable{
			{
				Name:        "health",
				Title:       "Health Status vs Risk Level",
				AxisTitle:   "Health Status",
				Field:       "health",
				Categories:  []string{"Critical", "Unstable", "Stable"},
				ContainerID: "healthRiskChart",
			},
			{
				Name:        "attendance",
				Title:       "Attendance vs Risk Level",
				AxisTitle:   "Attendance",
				Field:       "attendance",
				Categories:  []string{"Poor", "Good", "Excellent"},
				ContainerID: "attendanceRiskChart",
			},
			{
				Name:        "scholarship",
				Title:       "Scholarship Status vs Risk Level",
				AxisTitle:   "Scholarship Status",
				Field:       "scholarship",
				Categories:  []string{"Safe", "Uncertain", "Endangered"},
				ContainerID: "scholarshipRiskChart",
			},
		},
	}
}

// LoadFile reads a TOML config from the given path. A missing file is not an
// error; the zero FileConfig is returned instead.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return fc, nil
}

// Resolve merges a FileConfig over the defaults.
func Resolve(fc FileConfig) (Config, error) {
	cfg := Config{
		BaseURL:     DefaultBaseURL,
		HTTPTimeout: DefaultHTTPTimeout,
		OutputDir:   DefaultOutputDir(),
		LogLevel:    DefaultLogLevel,
		Tables:      DefaultTables(),
	}
	if fc.Server.BaseURL != nil && *fc.Server.BaseURL != "" {
		cfg.BaseURL = *fc.Server.BaseURL
	}
	if fc.Server.Timeout != nil && *fc.Server.Timeout != "" {
		d, err := time.ParseDuration(*fc.Server.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid server.timeout: %w", err)
		}
		if d > 0 {
			cfg.HTTPTimeout = d
		}
	}
	if fc.Output.Dir != nil && *fc.Output.Dir != "" {
		cfg.OutputDir = *fc.Output.Dir
	}
	if fc.Log.Level != nil && *fc.Log.Level != "" {
		cfg.LogLevel = *fc.Log.Level
	}
	if len(fc.Charts.RiskLevels) > 0 {
		cfg.Tables.RiskLevels = fc.Charts.RiskLevels
		// Colors follow the level list; pad with the default palette when the
		// config provides fewer colors than levels.
		cfg.Tables.RiskColors = fc.Charts.RiskColors
	}
	if len(fc.Charts.Metrics) > 0 {
		cfg.Tables.Metrics = fc.Charts.Metrics
	}
	for i := range cfg.Tables.Metrics {
		m := &cfg.Tables.Metrics[i]
		if m.Field == "" {
			m.Field = m.Name
		}
		if m.ContainerID == "" {
			m.ContainerID = m.Name + "RiskChart"
		}
	}
	return cfg, nil
}

// Load reads and resolves the config at path.
func Load(path string) (Config, error) {
	fc, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Resolve(fc)
}
