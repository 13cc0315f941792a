// Package config loads CLI settings from an optional HCL file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"

	"github.com/enea-iemap/iemap-mi/pkg/iemap"
	"github.com/enea-iemap/iemap-mi/pkg/tokencache"
)

// Environment variables that override file settings.
const (
	EnvBaseURL   = "IEMAP_BASE_URL"
	EnvUsername  = "IEMAP_USERNAME"
	EnvPassword  = "IEMAP_PASSWORD"
	EnvTokenFile = "IEMAP_TOKEN_FILE"
	EnvLogLevel  = "IEMAP_LOG_LEVEL"
	EnvTLSVerify = "IEMAP_TLS_VERIFY"
)

// Config is the CLI configuration.
type Config struct {
	BaseURL   string `hcl:"base_url,optional"`
	Timeout   string `hcl:"timeout,optional"`
	TLSVerify *bool  `hcl:"tls_verify,optional"`
	TokenFile string `hcl:"token_file,optional"`
	LogLevel  string `hcl:"log_level,optional"`

	// Credentials are only read from the environment.
	Username string
	Password string
}

// Loader reads configuration. The zero value uses the OS filesystem and
// environment.
type Loader struct {
	Fs        afero.Fs
	LookupEnv func(string) (string, bool)
}

// Load decodes path, when non-empty, and applies environment overrides.
func (l Loader) Load(path string) (*Config, error) {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := &Config{}
	if path != "" {
		src, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := hclsimple.Decode(path, src, nil, cfg); err != nil {
			return nil, fmt.Errorf("error decoding config file: %w", err)
		}
	}

	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := lookup(EnvTokenFile); ok && v != "" {
		cfg.TokenFile = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvTLSVerify); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", EnvTLSVerify, v, err)
		}
		cfg.TLSVerify = &b
	}
	if v, ok := lookup(EnvUsername); ok {
		cfg.Username = v
	}
	if v, ok := lookup(EnvPassword); ok {
		cfg.Password = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that can be checked without a network call.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err))
		} else if d <= 0 {
			result = multierror.Append(result, fmt.Errorf("timeout must be positive"))
		}
	}
	if c.LogLevel != "" && hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	return result.ErrorOrNil()
}

// Level returns the configured log level, Info when unset.
func (c *Config) Level() hclog.Level {
	if c.LogLevel == "" {
		return hclog.Info
	}
	return hclog.LevelFromString(c.LogLevel)
}

// ClientConfig converts the settings into a client configuration.
func (c *Config) ClientConfig(logger hclog.Logger) (*iemap.Config, error) {
	cfg := iemap.DefaultConfig()
	cfg.Logger = logger
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	if c.TLSVerify != nil {
		cfg.TLSVerify = c.TLSVerify
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
		cfg.Timeout = d
	}
	return cfg, cfg.Validate()
}

// TokenPath returns the token cache location, the default when unset.
func (c *Config) TokenPath() (string, error) {
	if c.TokenFile != "" {
		return c.TokenFile, nil
	}
	return tokencache.DefaultPath()
}
