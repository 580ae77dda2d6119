// Package config loads and validates runtime configuration from flags,
// environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pagepull/pagepull/internal/engine"
	"github.com/pagepull/pagepull/internal/extract"
	"github.com/pagepull/pagepull/internal/session"
)

// Config is the full runtime configuration.
type Config struct {
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Render  RenderConfig  `mapstructure:"render"`
	Extract ExtractConfig `mapstructure:"extract"`
	Output  OutputConfig  `mapstructure:"output"`
}

// FetchConfig controls the HTTP transport.
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRedirects int           `mapstructure:"max_redirects" validate:"gte=0,lte=30"`

	// MaxBodySize and MaxContentSize accept human-readable sizes
	// such as "10MB". Zero means unlimited.
	MaxBodySize    string `mapstructure:"max_body_size"`
	MaxContentSize string `mapstructure:"max_content_size"`
}

// RetryConfig controls the retry loop.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=1,lte=20"`
	Strategy    string        `mapstructure:"strategy" validate:"oneof=exponential_backoff linear_progression fibonacci_sequence random_jitter"`
	BaseDelay   time.Duration `mapstructure:"base_delay" validate:"gt=0"`
}

// RenderConfig controls the headless browser fallback.
type RenderConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// ExtractConfig controls extraction limits.
type ExtractConfig struct {
	MaxTextLength int `mapstructure:"max_text_length" validate:"gte=1"`
	MaxLinks      int `mapstructure:"max_links" validate:"gte=1,lte=300"`
}

// OutputConfig controls result serialization.
type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=json jsonl yaml"`
	Pretty bool   `mapstructure:"pretty"`
	File   string `mapstructure:"file"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Fetch: FetchConfig{
			Timeout:        30 * time.Second,
			MaxRedirects:   10,
			MaxBodySize:    "10MB",
			MaxContentSize: "50MB",
		},
		Retry: RetryConfig{
			MaxAttempts: 5,
			Strategy:    "exponential_backoff",
			BaseDelay:   2 * time.Second,
		},
		Render: RenderConfig{
			Enabled: false,
			Timeout: 60 * time.Second,
		},
		Extract: ExtractConfig{
			MaxTextLength: 2_000_000,
			MaxLinks:      100,
		},
		Output: OutputConfig{
			Format: "json",
			Pretty: true,
		},
	}
}

// Load unmarshals the viper state over the defaults and validates the
// result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the size strings.
func Validate(cfg Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("invalid configuration: %s fails %q constraint",
				strings.ToLower(f.Namespace()), f.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for name, s := range map[string]string{
		"fetch.max_body_size":    cfg.Fetch.MaxBodySize,
		"fetch.max_content_size": cfg.Fetch.MaxContentSize,
	} {
		if _, err := parseSize(s); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", name, err)
		}
	}
	return nil
}

// Session converts the fetch section into transport settings.
func (c Config) Session() session.Config {
	bodySize, _ := parseSize(c.Fetch.MaxBodySize)
	return session.Config{
		Timeout:      c.Fetch.Timeout,
		MaxRedirects: c.Fetch.MaxRedirects,
		MaxBodySize:  int(bodySize),
	}
}

// Engine converts the retry and content sections into engine settings.
func (c Config) Engine() engine.Config {
	contentSize, _ := parseSize(c.Fetch.MaxContentSize)
	cfg := engine.DefaultConfig()
	cfg.MaxAttempts = c.Retry.MaxAttempts
	cfg.RetryBaseDelay = c.Retry.BaseDelay
	cfg.RetryStrategy = c.Retry.Strategy
	cfg.MaxContentSize = contentSize
	cfg.RenderEnabled = c.Render.Enabled
	cfg.Extract = extract.Config{
		MaxTextLength: c.Extract.MaxTextLength,
		MaxLinks:      c.Extract.MaxLinks,
	}
	return cfg
}

// parseSize parses a human-readable size such as "10MB". Empty and "0"
// mean unlimited.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
