package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all scenesmith configuration.
type Config struct {
	// Remote generation backend
	LLM LLMConfig `yaml:"llm"`

	// Local (self-hosted) generation backend
	Local LocalConfig `yaml:"local"`

	// Isolated syntax-check execution
	Sandbox SandboxConfig `yaml:"sandbox"`

	// GenerationRecord persistence
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Backend routing heuristic
	Routing RoutingConfig `yaml:"routing"`

	// Simplification ladder
	Repair RepairConfig `yaml:"repair"`

	// Quality scoring
	Quality QualityConfig `yaml:"quality"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the remote text-generation provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // anthropic, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// LocalConfig configures the self-hosted OpenAI-compatible server.
type LocalConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// SandboxConfig configures the isolated toolchain check.
type SandboxConfig struct {
	Python  string `yaml:"python"`  // interpreter binary, empty disables stage 2
	Timeout string `yaml:"timeout"` // per-check budget
}

// TelemetryConfig configures record persistence.
type TelemetryConfig struct {
	DatabasePath string `yaml:"database_path"` // empty = in-memory store
}

// RoutingConfig configures backend selection.
type RoutingConfig struct {
	ComplexityThreshold float64 `yaml:"complexity_threshold"`
}

// RepairConfig configures the simplification ladder.
type RepairConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// QualityConfig configures quality scoring.
type QualityConfig struct {
	SuitabilityThreshold float64 `yaml:"suitability_threshold"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ValidProviders lists the supported remote providers.
var ValidProviders = []string{"anthropic", "gemini"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet-4-20250514",
			BaseURL:  "https://api.anthropic.com",
			Timeout:  "30s",
		},
		Local: LocalConfig{
			BaseURL: "http://localhost:1234",
			Model:   "qwen2.5-coder",
			Timeout: "20s",
		},
		Sandbox: SandboxConfig{
			Python:  "python3",
			Timeout: "5s",
		},
		Telemetry: TelemetryConfig{
			DatabasePath: "scenesmith.db",
		},
		Routing: RoutingConfig{
			ComplexityThreshold: 0.45,
		},
		Repair: RepairConfig{
			MaxAttempts: 3,
		},
		Quality: QualityConfig{
			SuitabilityThreshold: 0.5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file returns the
// defaults; environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. Provider keys
// are checked lowest priority first so anthropic wins when both are set.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
	}
	if url := os.Getenv("SCENESMITH_LOCAL_URL"); url != "" {
		c.Local.BaseURL = url
	}
	if path := os.Getenv("SCENESMITH_DB"); path != "" {
		c.Telemetry.DatabasePath = path
	}
}

// GetLLMTimeout returns the remote call timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetLocalTimeout returns the local call timeout as a duration.
func (c *Config) GetLocalTimeout() time.Duration {
	d, err := time.ParseDuration(c.Local.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// GetSandboxTimeout returns the syntax-check timeout as a duration.
func (c *Config) GetSandboxTimeout() time.Duration {
	d, err := time.ParseDuration(c.Sandbox.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// Validate checks configuration consistency. A missing API key is not an
// error here: the remote backend reports it as an auth failure at call
// time and orchestration falls back to the local backend.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	if c.Routing.ComplexityThreshold < 0 || c.Routing.ComplexityThreshold > 1 {
		return fmt.Errorf("routing.complexity_threshold must be within [0,1], got %v", c.Routing.ComplexityThreshold)
	}
	if c.Quality.SuitabilityThreshold < 0 || c.Quality.SuitabilityThreshold > 1 {
		return fmt.Errorf("quality.suitability_threshold must be within [0,1], got %v", c.Quality.SuitabilityThreshold)
	}
	if c.Repair.MaxAttempts < 1 {
		return fmt.Errorf("repair.max_attempts must be at least 1, got %d", c.Repair.MaxAttempts)
	}
	return nil
}
