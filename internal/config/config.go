// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the whole application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Sandbox SandboxConfig `mapstructure:"sandbox" yaml:"sandbox"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
	Replay  ReplayConfig  `mapstructure:"replay" yaml:"replay"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// SandboxConfig controls how replay scripts are executed.
//
// KeepTempDir is a debugging override: the scratch directory normally never
// outlives the run, but with this set it is left on disk and its path is
// logged.
type SandboxConfig struct {
	Interpreter string        `mapstructure:"interpreter" yaml:"interpreter"`
	ScriptName  string        `mapstructure:"script_name" yaml:"script_name"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	KeepTempDir bool          `mapstructure:"keep_temp_dir" yaml:"keep_temp_dir"`
	WaitDelay   time.Duration `mapstructure:"wait_delay" yaml:"wait_delay"`
}

// WithDefaults returns a copy of s with every unset field taken from the
// default sandbox configuration.
func (s SandboxConfig) WithDefaults() SandboxConfig {
	def := NewDefaultConfig().Sandbox
	if s.Interpreter == "" {
		s.Interpreter = def.Interpreter
	}
	if s.ScriptName == "" {
		s.ScriptName = def.ScriptName
	}
	if s.Timeout <= 0 {
		s.Timeout = def.Timeout
	}
	if s.WaitDelay <= 0 {
		s.WaitDelay = def.WaitDelay
	}
	return s
}

// LLMProvider names a reasoning provider.
type LLMProvider string

const (
	ProviderNone   LLMProvider = "none"
	ProviderOpenAI LLMProvider = "openai"
	ProviderOllama LLMProvider = "ollama"
	ProviderGemini LLMProvider = "gemini"
	ProviderHTTP   LLMProvider = "http"
)

// LLMConfig selects and tunes the reasoning provider. An empty provider
// means heuristic synthesis.
type LLMConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	MaxRetries  int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// Enabled reports whether a reasoning provider is configured.
func (l LLMConfig) Enabled() bool {
	p := LLMProvider(strings.ToLower(string(l.Provider)))
	return p != "" && p != ProviderNone
}

// WatchConfig tunes the log follower.
type WatchConfig struct {
	QuietPeriod         time.Duration `mapstructure:"quiet_period" yaml:"quiet_period"`
	MaxReplaysPerMinute int           `mapstructure:"max_replays_per_minute" yaml:"max_replays_per_minute"`
}

// ReplayConfig holds orchestration settings.
type ReplayConfig struct {
	DryRun      bool `mapstructure:"dry_run" yaml:"dry_run"`
	Concurrency int  `mapstructure:"concurrency" yaml:"concurrency"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "stack-replayer")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Sandbox --
	v.SetDefault("sandbox.interpreter", "node")
	v.SetDefault("sandbox.script_name", "replay.mjs")
	v.SetDefault("sandbox.timeout", "30s")
	v.SetDefault("sandbox.keep_temp_dir", false)
	v.SetDefault("sandbox.wait_delay", "2s")

	// -- LLM --
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_timeout", "60s")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.max_retries", 3)

	// -- Watch --
	v.SetDefault("watch.quiet_period", "100ms")
	v.SetDefault("watch.max_replays_per_minute", 10)

	// -- Replay --
	v.SetDefault("replay.dry_run", false)
	v.SetDefault("replay.concurrency", 4)
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Provider keys are commonly exported under their vendor names.
	_ = v.BindEnv("llm.api_key", "STACKREPLAY_LLM_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Sandbox.Validate(); err != nil {
		return fmt.Errorf("sandbox configuration invalid: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm configuration invalid: %w", err)
	}
	if c.Watch.QuietPeriod <= 0 {
		return fmt.Errorf("watch.quiet_period must be positive")
	}
	if c.Watch.MaxReplaysPerMinute < 0 {
		return fmt.Errorf("watch.max_replays_per_minute must not be negative")
	}
	if c.Replay.Concurrency <= 0 {
		return fmt.Errorf("replay.concurrency must be a positive integer")
	}
	return nil
}

// Validate checks the sandbox configuration.
func (s *SandboxConfig) Validate() error {
	if s.Interpreter == "" {
		return fmt.Errorf("interpreter is required")
	}
	if s.ScriptName == "" || strings.ContainsAny(s.ScriptName, `/\`) {
		return fmt.Errorf("script_name must be a bare file name")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if s.WaitDelay < 0 {
		return fmt.Errorf("wait_delay must not be negative")
	}
	return nil
}

// Validate checks the LLM configuration. Nothing is required in heuristic mode.
func (l *LLMConfig) Validate() error {
	if !l.Enabled() {
		return nil
	}
	switch LLMProvider(strings.ToLower(string(l.Provider))) {
	case ProviderOpenAI, ProviderOllama, ProviderGemini, ProviderHTTP:
	default:
		return fmt.Errorf("unknown provider %q", l.Provider)
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if l.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative")
	}
	if l.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	return nil
}
