// Package config loads the chatbot's YAML configuration and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/petasbytes/go-chatbot/internal/provider"
	"github.com/petasbytes/go-chatbot/memory"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultPath is read when no --config flag is given.
const DefaultPath = "chatbot.yaml"

// Config holds all chatbot configuration.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Memory    MemoryConfig    `yaml:"memory"`
	Tools     ToolsConfig     `yaml:"tools"`
	Assistant AssistantConfig `yaml:"assistant"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ModelConfig selects and tunes the model client.
type ModelConfig struct {
	Provider    string  `yaml:"provider"` // anthropic, openai
	Name        string  `yaml:"name"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int64   `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"`
}

type MemoryConfig struct {
	Capacity int    `yaml:"capacity"`
	Overflow string `yaml:"overflow"` // drop_newest, drop_oldest
}

type ToolsConfig struct {
	ParallelDispatch bool   `yaml:"parallel_dispatch"`
	Timeout          string `yaml:"timeout"`
	MapsAPIKey       string `yaml:"maps_api_key"`
}

type AssistantConfig struct {
	MaxSteps     int    `yaml:"max_steps"`
	UserLocation string `yaml:"user_location"`
	ExitSentinel string `yaml:"exit_sentinel"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

type TelemetryConfig struct {
	Observe      bool   `yaml:"observe"`
	ArtifactsDir string `yaml:"artifacts_dir"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			MaxTokens:   provider.DefaultMaxTokens,
			Temperature: provider.DefaultTemperature,
			Timeout:     "120s",
		},
		Memory: MemoryConfig{
			Capacity: memory.DefaultCapacity,
			Overflow: string(memory.DropNewest),
		},
		Tools: ToolsConfig{
			Timeout: "30s",
		},
		Assistant: AssistantConfig{
			MaxSteps:     16,
			UserLocation: "Porto, Portugal",
			ExitSentinel: "quit",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			ArtifactsDir: ".agent",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A missing file
// is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. A provider key only picks
// the provider when the file left it unset.
func (c *Config) applyEnvOverrides() error {
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if c.Model.Provider == "" {
		switch {
		case anthropicKey != "":
			c.Model.Provider = provider.NameAnthropic
		case openaiKey != "":
			c.Model.Provider = provider.NameOpenAI
		default:
			c.Model.Provider = provider.NameAnthropic
		}
	}
	if c.Model.APIKey == "" {
		switch c.Model.Provider {
		case provider.NameAnthropic:
			c.Model.APIKey = anthropicKey
		case provider.NameOpenAI:
			c.Model.APIKey = openaiKey
		}
	}

	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		c.Tools.MapsAPIKey = key
	}
	if v, ok := os.LookupEnv("AGT_OBSERVE_JSON"); ok {
		c.Telemetry.Observe = v == "1"
	}
	if dir := os.Getenv("AGT_ARTIFACTS_DIR"); dir != "" {
		c.Telemetry.ArtifactsDir = dir
	}
	if v := os.Getenv("AGT_MEMORY_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: AGT_MEMORY_CAPACITY=%q is not an integer", ErrInvalidConfig, v)
		}
		c.Memory.Capacity = n
	}
	if lvl := os.Getenv("AGT_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	return nil
}

// ValidProviders lists the supported model providers.
var ValidProviders = []string{provider.NameAnthropic, provider.NameOpenAI}

// Validate reports the first setting that would stop the chatbot from starting.
func (c *Config) Validate() error {
	if !slices.Contains(ValidProviders, c.Model.Provider) {
		return fmt.Errorf("%w: model provider %q (valid: %v)", ErrInvalidConfig, c.Model.Provider, ValidProviders)
	}
	if c.Model.APIKey == "" {
		return fmt.Errorf("%w: no API key for %s (set %s)", ErrInvalidConfig, c.Model.Provider, c.apiKeyEnv())
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("%w: model.max_tokens must be positive", ErrInvalidConfig)
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("%w: model.temperature %g outside [0, 2]", ErrInvalidConfig, c.Model.Temperature)
	}
	if c.Memory.Capacity <= 0 {
		return fmt.Errorf("%w: memory.capacity must be positive", ErrInvalidConfig)
	}
	if _, err := memory.ParseOverflowPolicy(c.Memory.Overflow); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Assistant.MaxSteps <= 0 {
		return fmt.Errorf("%w: assistant.max_steps must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Assistant.ExitSentinel) == "" {
		return fmt.Errorf("%w: assistant.exit_sentinel must not be blank", ErrInvalidConfig)
	}
	for name, v := range map[string]string{"model.timeout": c.Model.Timeout, "tools.timeout": c.Tools.Timeout} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, name, v, err)
		}
	}
	return nil
}

func (c *Config) apiKeyEnv() string {
	if c.Model.Provider == provider.NameOpenAI {
		return "OPENAI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

// OverflowPolicy returns the parsed memory overflow policy, falling back to drop-newest.
func (c *Config) OverflowPolicy() memory.OverflowPolicy {
	p, err := memory.ParseOverflowPolicy(c.Memory.Overflow)
	if err != nil {
		return memory.DropNewest
	}
	return p
}

// GetModelTimeout returns the per-call model timeout. An empty value disables it.
func (c *Config) GetModelTimeout() time.Duration {
	return parseDuration(c.Model.Timeout, 120*time.Second)
}

// GetToolTimeout returns the per-invocation tool timeout. An empty value disables it.
func (c *Config) GetToolTimeout() time.Duration {
	return parseDuration(c.Tools.Timeout, 30*time.Second)
}

func parseDuration(v string, fallback time.Duration) time.Duration {
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
