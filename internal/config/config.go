// Package config loads CLI settings from a config file, environment
// variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fivetwenty-io/apicaller/internal/constants"
	"github.com/fivetwenty-io/apicaller/pkg/apicaller"
)

// EnvPrefix prefixes environment overrides, e.g. APICALLER_API_TOKEN.
const EnvPrefix = "APICALLER"

// Config is the CLI configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Output    string          `mapstructure:"output"`
}

// APIConfig describes the target API.
type APIConfig struct {
	URL         string `mapstructure:"url"`
	Token       string `mapstructure:"token"`
	AuthScheme  string `mapstructure:"auth_scheme"`
	JSON        bool   `mapstructure:"json"`
	VerifySSL   bool   `mapstructure:"verify_ssl"`
	Declaration string `mapstructure:"declaration"`
}

// HTTPConfig tunes the transport.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	RetryMax  int           `mapstructure:"retry_max"`
	UserAgent string        `mapstructure:"user_agent"`
}

// RateLimitConfig sets the minimum interval between calls.
type RateLimitConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig selects the log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// Load reads the configuration into v. An explicit configPath must exist;
// otherwise config.yml is looked up in the current directory and
// ~/.apicaller, and its absence is not an error. v may carry bound flags.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".apicaller"))
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	err = validate(&cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.declaration", "")
	v.SetDefault("api.auth_scheme", constants.AuthSchemeBearer)
	v.SetDefault("api.json", true)
	v.SetDefault("api.verify_ssl", true)

	v.SetDefault("http.timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("http.retry_max", constants.DefaultRetryMax)
	v.SetDefault("http.user_agent", constants.DefaultUserAgent)

	v.SetDefault("rate_limit.interval", constants.DefaultCallInterval)

	v.SetDefault("logging.level", constants.DefaultLogLevel)
	v.SetDefault("logging.format", constants.LogFormatConsole)
	v.SetDefault("logging.color", true)

	v.SetDefault("output", constants.FormatTable)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("%w: %s", constants.ErrInvalidLogLevel, cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		constants.LogFormatConsole: true,
		constants.LogFormatJSON:    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("%w: %s", constants.ErrInvalidLogFormat, cfg.Logging.Format)
	}

	validOutputs := map[string]bool{
		constants.FormatTable: true,
		constants.FormatJSON:  true,
		constants.FormatYAML:  true,
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, cfg.Output)
	}

	if cfg.RateLimit.Interval < 0 {
		return constants.ErrNegativeInterval
	}

	if cfg.HTTP.RetryMax < 0 {
		return constants.ErrNegativeRetryMax
	}

	return nil
}

// RequireDeclaration checks the settings needed to build a client tree.
func (c *Config) RequireDeclaration() error {
	if c.API.Declaration == "" {
		return constants.ErrDeclarationRequired
	}

	return nil
}

// Limiter returns a limiter spacing calls by rate_limit.interval.
func (c *Config) Limiter() *apicaller.Limiter {
	return apicaller.NewLimiter(c.RateLimit.Interval, nil)
}

// ClientConfig converts the settings into a client configuration. Calls use
// the process-wide limiter; see Limiter.
func (c *Config) ClientConfig(logger apicaller.Logger, metrics *apicaller.Metrics) *apicaller.Config {
	encoding := apicaller.EncodingJSON
	if !c.API.JSON {
		encoding = apicaller.EncodingForm
	}

	return &apicaller.Config{
		BaseURL:       c.API.URL,
		Token:         c.API.Token,
		AuthScheme:    c.API.AuthScheme,
		Encoding:      encoding,
		SkipTLSVerify: !c.API.VerifySSL,
		Logger:        logger,
		Metrics:       metrics,
		Debug:         strings.EqualFold(c.Logging.Level, "debug"),
		Timeout:       c.HTTP.Timeout,
		RetryMax:      c.HTTP.RetryMax,
		UserAgent:     c.HTTP.UserAgent,
	}
}
