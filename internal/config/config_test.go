package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/apicaller/internal/constants"
	"github.com/fivetwenty-io/apicaller/pkg/apicaller"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, constants.AuthSchemeBearer, cfg.API.AuthScheme)
	assert.True(t, cfg.API.JSON)
	assert.True(t, cfg.API.VerifySSL)
	assert.Equal(t, constants.DefaultHTTPTimeout, cfg.HTTP.Timeout)
	assert.Equal(t, constants.DefaultCallInterval, cfg.RateLimit.Interval)
	assert.Equal(t, constants.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, constants.FormatTable, cfg.Output)
	assert.ErrorIs(t, cfg.RequireDeclaration(), constants.ErrDeclarationRequired)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
api:
  url: https://api.example.com/
  token: abc
  auth_scheme: Token
  json: false
  verify_ssl: false
  declaration: api.yaml
http:
  timeout: 5s
  retry_max: 2
rate_limit:
  interval: 250ms
logging:
  level: debug
  format: json
output: yaml
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/", cfg.API.URL)
	assert.Equal(t, "abc", cfg.API.Token)
	assert.Equal(t, "Token", cfg.API.AuthScheme)
	assert.False(t, cfg.API.JSON)
	assert.False(t, cfg.API.VerifySSL)
	assert.Equal(t, "api.yaml", cfg.API.Declaration)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 2, cfg.HTTP.RetryMax)
	assert.Equal(t, 250*time.Millisecond, cfg.RateLimit.Interval)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "yaml", cfg.Output)
	assert.NoError(t, cfg.RequireDeclaration())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APICALLER_API_TOKEN", "from-env")
	t.Setenv("APICALLER_RATE_LIMIT_INTERVAL", "1s")

	path := writeConfig(t, "api:\n  token: from-file\n")

	cfg, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.API.Token)
	assert.Equal(t, time.Second, cfg.RateLimit.Interval)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(nil, filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			Logging: LoggingConfig{Level: "info", Format: constants.LogFormatConsole},
			Output:  constants.FormatTable,
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		expected error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "level", mutate: func(c *Config) { c.Logging.Level = "trace" }, expected: constants.ErrInvalidLogLevel},
		{name: "format", mutate: func(c *Config) { c.Logging.Format = "xml" }, expected: constants.ErrInvalidLogFormat},
		{name: "output", mutate: func(c *Config) { c.Output = "csv" }, expected: constants.ErrInvalidOutputFormat},
		{name: "interval", mutate: func(c *Config) { c.RateLimit.Interval = -time.Second }, expected: constants.ErrNegativeInterval},
		{name: "retries", mutate: func(c *Config) { c.HTTP.RetryMax = -1 }, expected: constants.ErrNegativeRetryMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.expected == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestClientConfig(t *testing.T) {
	previous := apicaller.DefaultLimiter()

	cfg := &Config{
		API: APIConfig{
			URL:        "https://api.example.com/",
			Token:      "abc",
			AuthScheme: "Token",
			JSON:       false,
			VerifySSL:  false,
		},
		HTTP:      HTTPConfig{Timeout: time.Second, RetryMax: 3},
		RateLimit: RateLimitConfig{Interval: 75 * time.Millisecond},
		Logging:   LoggingConfig{Level: "DEBUG"},
	}

	client := cfg.ClientConfig(nil, nil)

	assert.Equal(t, "https://api.example.com/", client.BaseURL)
	assert.Equal(t, "abc", client.Token)
	assert.Equal(t, "Token", client.AuthScheme)
	assert.Equal(t, apicaller.EncodingForm, client.Encoding)
	assert.True(t, client.SkipTLSVerify)
	assert.True(t, client.Debug)
	assert.Equal(t, 3, client.RetryMax)
	assert.Nil(t, client.Limiter)
	assert.Same(t, previous, apicaller.DefaultLimiter(), "conversion must not replace the shared limiter")
	assert.Equal(t, 75*time.Millisecond, cfg.Limiter().Interval())
}
