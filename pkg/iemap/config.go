package iemap

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// DefaultBaseURL is the public IEMAP REST endpoint.
const DefaultBaseURL = "https://iemap.enea.it/rest"

// Config contains configuration for the IEMAP client.
type Config struct {
	// BaseURL is the REST root of the platform.
	// Default: https://iemap.enea.it/rest
	BaseURL string

	// TLSVerify controls TLS certificate verification.
	// Set to false only for testing against self-signed certs.
	TLSVerify *bool

	// Timeout for a single request, including an upload.
	// Default: 60 seconds
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Logger receives request diagnostics. Default: null logger.
	Logger hclog.Logger

	// Fs is used to read files for upload. Default: the OS filesystem.
	Fs afero.Fs

	// HTTPClient overrides the client built from the settings above.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		BaseURL:   DefaultBaseURL,
		TLSVerify: &tlsVerify,
		Timeout:   60 * time.Second,
		UserAgent: "iemap-mi-go",
	}
}

// applyDefaults fills unset fields from DefaultConfig.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
	if c.Fs == nil {
		c.Fs = afero.NewOsFs()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("base_url must include a host")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}

	return nil
}

// NewHTTPClient creates the HTTP client used for all requests.
func (c *Config) NewHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
