package iemap

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enea-iemap/iemap-mi/pkg/models"
)

// recordedRequest is what the fake platform saw.
type recordedRequest struct {
	Method        string
	Path          string
	Query         map[string][]string
	Authorization string
	ContentType   string
	Body          []byte
}

// fakePlatform emulates the IEMAP REST API.
type fakePlatform struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest

	token       string
	loginStatus int
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	f := &fakePlatform{t: t, token: signedToken(t, time.Now().Add(time.Hour))}

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/auth/jwt/login", f.handleLogin)
	mux.HandleFunc("/rest/api/v1/project/list/", f.handleList)
	mux.HandleFunc("/rest/api/v1/project/add", f.handleAdd)
	mux.HandleFunc("/rest/api/v1/project/add/file/", f.handleFile)
	mux.HandleFunc("/rest/api/v1/stats", f.handleStats)

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		f.mu.Unlock()

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakePlatform) URL() string {
	return f.server.URL + "/rest"
}

func (f *fakePlatform) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakePlatform) requireBearer(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Unauthorized"}`))
		return false
	}
	return true
}

func (f *fakePlatform) handleLogin(w http.ResponseWriter, r *http.Request) {
	if f.loginStatus != 0 {
		w.WriteHeader(f.loginStatus)
		_, _ = w.Write([]byte(`{"detail":"LOGIN_BAD_CREDENTIALS"}`))
		return
	}
	var auth models.AuthData
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&auth))
	writeJSON(w, models.TokenResponse{AccessToken: f.token, TokenType: "bearer"})
}

func (f *fakePlatform) handleList(w http.ResponseWriter, r *http.Request) {
	if !f.requireBearer(w, r) {
		return
	}
	writeJSON(w, map[string]any{
		"skip": 10, "page_size": 10, "page_number": 2, "page_tot": 3, "number_docs": 25,
		"data": []any{map[string]any{"_id": "abc", "material": map[string]any{"formula": "SiO2"}}},
	})
}

func (f *fakePlatform) handleAdd(w http.ResponseWriter, r *http.Request) {
	if !f.requireBearer(w, r) {
		return
	}
	writeJSON(w, models.CreateProjectResponse{InsertedID: "66b1", Status: "ok"})
}

func (f *fakePlatform) handleFile(w http.ResponseWriter, r *http.Request) {
	if !f.requireBearer(w, r) {
		return
	}
	writeJSON(w, map[string]any{"status": "uploaded"})
}

func (f *fakePlatform) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"data": map[string]any{
		"totalProj": 40, "totalUsers": 7, "totalUsersRegistered": 19,
		"countProj":  []any{map[string]any{"affiliation": "ENEA", "n": 40}},
		"countFiles": []any{map[string]any{"affiliation": "ENEA", "n": 112}},
	}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(exp),
		Audience:  jwt.ClaimStrings{"fastapi-users:auth"},
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newTestClient(t *testing.T, f *fakePlatform, fs afero.Fs) *Client {
	t.Helper()
	client, err := NewClient(&Config{
		BaseURL: f.URL(),
		Timeout: 5 * time.Second,
		Logger:  hclog.NewNullLogger(),
		Fs:      fs,
	})
	require.NoError(t, err)
	return client
}

func testRequest() *models.CreateProjectRequest {
	return &models.CreateProjectRequest{
		Project:    models.Project{Name: "Silica", Label: "SIO", Description: "Amorphous silica"},
		Material:   models.Material{Formula: "SiO2"},
		Process:    models.Process{Method: "MD", Agent: models.Agent{Name: "LAMMPS"}},
		Parameters: []models.Parameter{{Name: "T", Value: models.NumberValue(300), Unit: "K"}},
		Properties: []models.Property{{Name: "density", Value: models.NumberValue(2.2), Unit: "g/cm3"}},
	}
}

func TestNewClient_Config(t *testing.T) {
	_, err := NewClient(&Config{BaseURL: "ftp://example.org"})
	assert.ErrorContains(t, err, "http or https")

	client, err := NewClient(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.api.baseURL)
	assert.False(t, client.Session().Authenticated())
}

func TestNewClient_LeavesConfigUntouched(t *testing.T) {
	cfg := &Config{BaseURL: "https://iemap.example.org/rest"}
	client, err := NewClient(cfg)
	require.NoError(t, err)

	assert.Equal(t, &Config{BaseURL: "https://iemap.example.org/rest"}, cfg)
	assert.Equal(t, DefaultConfig().Timeout, client.api.client.Timeout)
}

func TestClient_Authenticate(t *testing.T) {
	f := newFakePlatform(t)
	client := newTestClient(t, f, afero.NewMemMapFs())
	ctx := context.Background()

	require.NoError(t, client.Authenticate(ctx, "someone@enea.it", "s3cret"))
	assert.True(t, client.Session().Authenticated())
	assert.Equal(t, f.token, client.Session().AccessToken())

	reqs := f.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/rest/auth/jwt/login", reqs[0].Path)
	assert.Empty(t, reqs[0].Authorization)
	assert.JSONEq(t, `{"username":"someone@enea.it","password":"s3cret"}`, string(reqs[0].Body))

	claims, err := client.Session().Claims()
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), client.Session().Expiry(), time.Minute)

	tok, err := client.Session().Token()
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.Type())
}

func TestClient_AuthenticateFailure(t *testing.T) {
	f := newFakePlatform(t)
	f.loginStatus = http.StatusBadRequest
	client := newTestClient(t, f, afero.NewMemMapFs())

	err := client.Authenticate(context.Background(), "someone@enea.it", "wrong")
	require.Error(t, err)

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusBadRequest, transportErr.StatusCode)
	assert.Contains(t, transportErr.Body, "LOGIN_BAD_CREDENTIALS")

	assert.False(t, client.Session().Authenticated())
	_, err = client.Session().Token()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClient_AuthenticateRejectsEmptyCredentials(t *testing.T) {
	f := newFakePlatform(t)
	client := newTestClient(t, f, afero.NewMemMapFs())

	err := client.Authenticate(context.Background(), "", "")
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"password", "username"}, verr.Paths())
	assert.Empty(t, f.Requests())
}

func TestClient_AuthorizationHeaderSharedAcrossHandlers(t *testing.T) {
	f := newFakePlatform(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/data.csv", []byte("a,b\n1,2\n"), 0o644))
	client := newTestClient(t, f, fs)
	ctx := context.Background()

	// Anonymous: stats works, no header is sent, protected endpoints fail.
	_, err := client.Stats.Get(ctx)
	require.NoError(t, err)
	_, err = client.Projects.List(ctx, 10, 1)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusUnauthorized, transportErr.StatusCode)

	for _, r := range f.Requests() {
		assert.Empty(t, r.Authorization, "%s %s", r.Method, r.Path)
	}

	require.NoError(t, client.Authenticate(ctx, "someone@enea.it", "s3cret"))
	before := len(f.Requests())

	_, err = client.Projects.List(ctx, 10, 2)
	require.NoError(t, err)
	_, err = client.Projects.Create(ctx, testRequest())
	require.NoError(t, err)
	_, err = client.Projects.AddFile(ctx, "66b1", "/data/data.csv", "")
	require.NoError(t, err)
	_, err = client.Stats.Get(ctx)
	require.NoError(t, err)

	after := f.Requests()[before:]
	require.Len(t, after, 4)
	for _, r := range after {
		assert.Equal(t, "Bearer "+f.token, r.Authorization, "%s %s", r.Method, r.Path)
	}
}

func TestClient_ReauthenticationReplacesToken(t *testing.T) {
	f := newFakePlatform(t)
	client := newTestClient(t, f, afero.NewMemMapFs())
	ctx := context.Background()

	require.NoError(t, client.Authenticate(ctx, "someone@enea.it", "s3cret"))
	first := client.Session().AccessToken()

	f.token = signedToken(t, time.Now().Add(2*time.Hour))
	require.NoError(t, client.Authenticate(ctx, "someone@enea.it", "s3cret"))
	assert.NotEqual(t, first, client.Session().AccessToken())

	_, err := client.Projects.List(ctx, 5, 1)
	require.NoError(t, err)
}

func TestClient_ConnectionFailure(t *testing.T) {
	f := newFakePlatform(t)
	client := newTestClient(t, f, afero.NewMemMapFs())
	f.server.Close()

	_, err := client.Stats.Get(context.Background())
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.StatusCode)
	assert.Error(t, transportErr.Err)
}

func TestSession_SetToken(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Authenticated())
	assert.True(t, s.Expiry().IsZero())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	s.apply(req)
	assert.Empty(t, req.Header.Get("Authorization"))

	s.SetToken("opaque-token", "")
	assert.True(t, s.Authenticated())
	assert.True(t, s.Expiry().IsZero())

	s.apply(req)
	assert.Equal(t, "Bearer opaque-token", req.Header.Get("Authorization"))

	_, err := s.Claims()
	assert.Error(t, err)

	s.SetToken("", "")
	assert.False(t, s.Authenticated())
}
