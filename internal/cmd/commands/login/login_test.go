package login

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enea-iemap/iemap-mi/internal/cmd/base"
	"github.com/enea-iemap/iemap-mi/internal/config"
	"github.com/enea-iemap/iemap-mi/pkg/models"
	"github.com/enea-iemap/iemap-mi/pkg/tokencache"
)

func newCommand(t *testing.T, vars map[string]string) (*base.Command, *cli.MockUi, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	ui := cli.NewMockUi()
	return &base.Command{
		Log: hclog.NewNullLogger(),
		UI:  ui,
		Fs:  fs,
		LookupEnv: func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		},
	}, ui, fs
}

func loginServer(t *testing.T, password string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var auth models.AuthData
		require.NoError(t, json.NewDecoder(r.Body).Decode(&auth))
		if r.URL.Path != "/auth/jwt/login" || auth.Password != password {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"LOGIN_BAD_CREDENTIALS"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"opaque","token_type":"bearer"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginCommand_PromptsForPassword(t *testing.T) {
	srv := loginServer(t, "s3cret")
	b, ui, fs := newCommand(t, map[string]string{
		config.EnvBaseURL:   srv.URL,
		config.EnvTokenFile: "/home/u/.iemap/token",
	})
	ui.InputReader = strings.NewReader("s3cret\n")

	code := (&Command{Command: b}).Run([]string{"-username", "someone@enea.it"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Contains(t, ui.OutputWriter.String(), "Logged in as someone@enea.it")

	tok, err := tokencache.New(fs, "/home/u/.iemap/token").Load()
	require.NoError(t, err)
	assert.Equal(t, "opaque", tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)

	code = (&LogoutCommand{Command: b}).Run(nil)
	require.Equal(t, 0, code)
	_, err = tokencache.New(fs, "/home/u/.iemap/token").Load()
	assert.ErrorIs(t, err, tokencache.ErrNoToken)
}

func TestLoginCommand_CredentialsFromEnvironment(t *testing.T) {
	srv := loginServer(t, "s3cret")
	b, ui, _ := newCommand(t, map[string]string{
		config.EnvBaseURL:   srv.URL,
		config.EnvTokenFile: "/token",
		config.EnvUsername:  "someone@enea.it",
		config.EnvPassword:  "s3cret",
	})

	code := (&Command{Command: b}).Run(nil)
	require.Equal(t, 0, code, ui.ErrorWriter.String())
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	srv := loginServer(t, "s3cret")
	b, ui, fs := newCommand(t, map[string]string{
		config.EnvBaseURL:   srv.URL,
		config.EnvTokenFile: "/token",
		config.EnvUsername:  "someone@enea.it",
		config.EnvPassword:  "wrong",
	})

	code := (&Command{Command: b}).Run(nil)
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "error logging in")

	exists, err := afero.Exists(fs, "/token")
	require.NoError(t, err)
	assert.False(t, exists)
}
