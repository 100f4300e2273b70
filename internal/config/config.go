package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// AgentConfig describes one invokable agent: the executable that speaks the
// JSON request/response protocol on stdin/stdout.
type AgentConfig struct {
	// Name is the display name shown by `maestro agents`
	Name string `yaml:"name"`

	// Enabled gates whether the agent may be invoked
	Enabled bool `yaml:"enabled"`

	// Command is the executable to spawn
	Command string `yaml:"command"`

	// Timeout is the per-agent timeout in seconds (0 = settings default)
	Timeout int `yaml:"timeout"`

	// Env is extra environment applied to the spawned process
	Env map[string]string `yaml:"env,omitempty"`

	// Capabilities is a free-form list shown by `maestro agents --verbose`
	Capabilities []string `yaml:"capabilities,omitempty"`
}

// Settings holds orchestration-wide tunables.
type Settings struct {
	// MaxParallelWorkers caps concurrent invocations in parallel batches
	MaxParallelWorkers int `yaml:"max_parallel_workers"`

	// DefaultTimeout is the task timeout in seconds when none is given
	DefaultTimeout int `yaml:"default_timeout"`

	// MetricsEnabled turns on the OTLP metrics exporter
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// MetricsEndpoint is the OTLP gRPC collector address
	MetricsEndpoint string `yaml:"metrics_endpoint"`

	// HistoryEnabled turns on the SQLite run history store
	HistoryEnabled bool `yaml:"history_enabled"`

	// HistoryPath overrides the database location (default under maestro home)
	HistoryPath string `yaml:"history_path"`
}

// Output holds reporting preferences.
type Output struct {
	// Format selects the reporter: rich, json, or table
	Format string `yaml:"format"`

	// Verbose includes result data payloads in reports
	Verbose bool `yaml:"verbose"`

	// SaveResults writes result JSON files after each command
	SaveResults bool `yaml:"save_results"`

	// ResultsDir is where saved results land
	ResultsDir string `yaml:"results_dir"`
}

// Config represents maestro configuration options, usually read from
// agents.yaml.
type Config struct {
	Agents   map[string]AgentConfig `yaml:"agents"`
	Settings Settings               `yaml:"settings"`
	Output   Output                 `yaml:"output"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Agents: map[string]AgentConfig{
			"pm": {
				Name:         "Project Manager",
				Enabled:      true,
				Command:      "maestro-agent-pm",
				Capabilities: []string{"track_tasks", "generate_report"},
			},
			"research": {
				Name:         "Research Assistant",
				Enabled:      true,
				Command:      "maestro-agent-research",
				Capabilities: []string{"analyze_document", "summarize"},
			},
			"index": {
				Name:         "Code Indexer",
				Enabled:      true,
				Command:      "maestro-agent-index",
				Capabilities: []string{"index_repository", "search"},
			},
		},
		Settings: Settings{
			MaxParallelWorkers: 3,
			DefaultTimeout:     60,
			MetricsEnabled:     false,
			MetricsEndpoint:    "localhost:4317",
			HistoryEnabled:     false,
		},
		Output: Output{
			Format:      "rich",
			Verbose:     false,
			SaveResults: false,
			ResultsDir:  "results",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns a *ConfigError.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(path, "failed to read config file", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, NewConfigError(path, "failed to parse config file", err)
	}

	// Agents from the file replace the built-in examples wholesale: a user
	// who lists agents wants exactly those agents.
	if fileCfg.Agents != nil {
		cfg.Agents = fileCfg.Agents
	}

	// Scalar settings merge over defaults. A raw-map presence check keeps
	// explicit false/zero values without clobbering unset ones.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if section, ok := rawMap["settings"].(map[string]interface{}); ok {
			mergeSettings(&cfg.Settings, fileCfg.Settings, section)
		}
		if section, ok := rawMap["output"].(map[string]interface{}); ok {
			mergeOutput(&cfg.Output, fileCfg.Output, section)
		}
	}

	return cfg, nil
}

func mergeSettings(dst *Settings, src Settings, present map[string]interface{}) {
	if _, ok := present["max_parallel_workers"]; ok {
		dst.MaxParallelWorkers = src.MaxParallelWorkers
	}
	if _, ok := present["default_timeout"]; ok {
		dst.DefaultTimeout = src.DefaultTimeout
	}
	if _, ok := present["metrics_enabled"]; ok {
		dst.MetricsEnabled = src.MetricsEnabled
	}
	if _, ok := present["metrics_endpoint"]; ok {
		dst.MetricsEndpoint = src.MetricsEndpoint
	}
	if _, ok := present["history_enabled"]; ok {
		dst.HistoryEnabled = src.HistoryEnabled
	}
	if _, ok := present["history_path"]; ok {
		dst.HistoryPath = src.HistoryPath
	}
}

func mergeOutput(dst *Output, src Output, present map[string]interface{}) {
	if _, ok := present["format"]; ok {
		dst.Format = src.Format
	}
	if _, ok := present["verbose"]; ok {
		dst.Verbose = src.Verbose
	}
	if _, ok := present["save_results"]; ok {
		dst.SaveResults = src.SaveResults
	}
	if _, ok := present["results_dir"]; ok {
		dst.ResultsDir = src.ResultsDir
	}
}

// SaveConfig writes the configuration as YAML to the specified path,
// creating parent directories as needed.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return NewConfigError(path, "failed to encode config", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return NewConfigError(path, "failed to create config directory", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return NewConfigError(path, "failed to write config file", err)
	}
	return nil
}

// Validate validates the configuration values.
// Returns a *ConfigError if any values are invalid.
func (c *Config) Validate() error {
	if c.Settings.MaxParallelWorkers < 1 {
		return NewConfigError("", fmt.Sprintf("settings.max_parallel_workers must be >= 1, got %d", c.Settings.MaxParallelWorkers), nil)
	}
	if c.Settings.DefaultTimeout < 1 {
		return NewConfigError("", fmt.Sprintf("settings.default_timeout must be >= 1, got %d", c.Settings.DefaultTimeout), nil)
	}

	validFormats := map[string]bool{
		"rich":  true,
		"json":  true,
		"table": true,
	}
	if !validFormats[c.Output.Format] {
		return NewConfigError("", fmt.Sprintf("invalid output.format %q, must be one of: rich, json, table", c.Output.Format), nil)
	}

	for key, agent := range c.Agents {
		if agent.Command == "" {
			return NewConfigError("", fmt.Sprintf("agent %q has no command", key), nil)
		}
		if agent.Timeout < 0 {
			return NewConfigError("", fmt.Sprintf("agent %q timeout must be >= 0, got %d", key, agent.Timeout), nil)
		}
	}

	if c.Settings.MetricsEnabled && c.Settings.MetricsEndpoint == "" {
		return NewConfigError("", "settings.metrics_endpoint cannot be empty when metrics are enabled", nil)
	}

	return nil
}

// AgentNames returns the configured agent keys in sorted order.
func (c *Config) AgentNames() []string {
	names := make([]string, 0, len(c.Agents))
	for name := range c.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
