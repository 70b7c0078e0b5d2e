// Package config holds conversation configuration, loaded from the
// environment and adjusted through functional options.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/ayush844/ctxwin/utils"
)

// Counter kinds selectable via CTXWIN_COUNTER.
const (
	CounterHeuristic = "heuristic"
	CounterEncoding  = "encoding"
)

// Config controls how a Conversation sizes and fills its window.
// Capacity zero means "derive from the model's context window".
type Config struct {
	Capacity        int            `env:"CTXWIN_CAPACITY" envDefault:"0" validate:"gte=0"`
	Model           string         `env:"CTXWIN_MODEL" envDefault:"gpt-4o" validate:"required"`
	Counter         string         `env:"CTXWIN_COUNTER" envDefault:"heuristic" validate:"oneof=heuristic encoding"`
	CharsPerToken   float64        `env:"CTXWIN_CHARS_PER_TOKEN" envDefault:"4" validate:"gt=0"`
	TokensPerMinute int            `env:"CTXWIN_TOKENS_PER_MINUTE" envDefault:"0" validate:"gte=0"`
	LogLevel        utils.LogLevel `env:"CTXWIN_LOG_LEVEL" envDefault:"WARN"`
}

var validate = validator.New()

// Validate checks the config against its validation rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfig returns a Config with library defaults, ignoring the
// environment.
func NewConfig() *Config {
	return &Config{
		Model:         "gpt-4o",
		Counter:       CounterHeuristic,
		CharsPerToken: 4,
		LogLevel:      utils.LogLevelWarn,
	}
}

// ConfigOption mutates a Config.
type ConfigOption func(*Config)

// SetCapacity fixes the window capacity instead of deriving it from
// the model.
func SetCapacity(capacity int) ConfigOption {
	return func(c *Config) {
		c.Capacity = capacity
	}
}

// SetModel sets the model name used for capacity lookup and encoding
// selection.
func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// SetCounter selects the counter kind: CounterHeuristic or
// CounterEncoding.
func SetCounter(kind string) ConfigOption {
	return func(c *Config) {
		c.Counter = kind
	}
}

// SetCharsPerToken adjusts the heuristic counter's ratio.
func SetCharsPerToken(ratio float64) ConfigOption {
	return func(c *Config) {
		c.CharsPerToken = ratio
	}
}

// SetTokensPerMinute enables spend pacing; zero disables it.
func SetTokensPerMinute(tpm int) ConfigOption {
	return func(c *Config) {
		c.TokensPerMinute = tpm
	}
}

// SetLogLevel sets the conversation's log level.
func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// ApplyOptions applies the given options to cfg in order.
func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}
