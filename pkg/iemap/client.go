package iemap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/enea-iemap/iemap-mi/pkg/models"
)

// Endpoints, relative to Config.BaseURL.
const (
	loginPath       = "auth/jwt/login"
	projectListPath = "api/v1/project/list/"
	projectAddPath  = "api/v1/project/add"
	projectFilePath = "api/v1/project/add/file/"
	statsPath       = "api/v1/stats"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 64 << 10

// Client is the entry point to the platform. Its handlers share one Session,
// so a successful Authenticate is visible to all of them.
type Client struct {
	Projects *ProjectHandler
	Stats    *StatsHandler

	session *Session
	api     *apiClient
	logger  hclog.Logger
}

// NewClient creates a client. A nil cfg uses DefaultConfig. cfg is not
// modified.
func NewClient(in *Config) (*Client, error) {
	if in == nil {
		in = DefaultConfig()
	}
	c := *in
	cfg := &c
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	session := NewSession()
	api := &apiClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    cfg.NewHTTPClient(),
		session:   session,
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger.Named("http"),
	}

	return &Client{
		Projects: &ProjectHandler{
			api:    api,
			fs:     cfg.Fs,
			logger: cfg.Logger.Named("project-handler"),
		},
		Stats: &StatsHandler{
			api:    api,
			logger: cfg.Logger.Named("stats-handler"),
		},
		session: session,
		api:     api,
		logger:  cfg.Logger,
	}, nil
}

// Session returns the session shared by the client's handlers.
func (c *Client) Session() *Session {
	return c.session
}

// Authenticate exchanges credentials for a bearer token. Empty credentials
// are rejected without contacting the platform. On failure the session keeps
// whatever state it had and the error is an *AuthenticationError (or a
// *models.ValidationError for bad input).
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	auth := models.AuthData{Username: username, Password: password}
	if err := models.ValidationErrorFrom(auth.Validate()); err != nil {
		return err
	}

	var tok models.TokenResponse
	err := c.api.do(ctx, request{
		method: http.MethodPost,
		path:   loginPath,
		body:   auth,
		anon:   true,
	}, &tok)
	if err != nil {
		return &AuthenticationError{Err: err}
	}
	if tok.AccessToken == "" {
		return &AuthenticationError{Err: errors.New("login response did not contain an access token")}
	}

	c.session.SetToken(tok.AccessToken, tok.TokenType)
	c.logger.Info("authenticated", "username", username)
	return nil
}

// apiClient performs single JSON exchanges against the platform.
type apiClient struct {
	baseURL   string
	client    *http.Client
	session   *Session
	userAgent string
	logger    hclog.Logger
}

type request struct {
	method string
	path   string
	query  url.Values

	// body is JSON-encoded unless it is an io.Reader, which is sent as is
	// with contentType.
	body        any
	contentType string

	// anon skips the Authorization header.
	anon bool
}

// buildURL constructs a URL with query parameters.
func (a *apiClient) buildURL(path string, query url.Values) string {
	u := a.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do executes one HTTP request and decodes a 2xx JSON response into result.
// There is no retry: any failure is returned as a *TransportError.
func (a *apiClient) do(ctx context.Context, r request, result any) error {
	endpoint := a.buildURL(r.path, r.query)

	var bodyReader io.Reader
	contentType := r.contentType
	switch b := r.body.(type) {
	case nil:
	case io.Reader:
		bodyReader = b
	default:
		bodyBytes, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !r.anon {
		a.session.apply(req)
	}

	a.logger.Debug("sending request",
		"method", r.method,
		"path", r.path,
		"request_id", requestID,
	)

	resp, err := a.client.Do(req)
	if err != nil {
		return &TransportError{Method: r.method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	a.logger.Debug("received response",
		"method", r.method,
		"path", r.path,
		"request_id", requestID,
		"status", resp.StatusCode,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{
			Method:     r.method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: r.method, URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
