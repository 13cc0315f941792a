// Package tokencache persists an IEMAP bearer token between CLI invocations.
package tokencache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/enea-iemap/iemap-mi/pkg/iemap"
	"github.com/enea-iemap/iemap-mi/pkg/models"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

var (
	// ErrNoToken is returned by Load when nothing has been saved yet.
	ErrNoToken = errors.New("no cached token")

	// ErrTokenExpired is returned by Load when the cached token's exp claim
	// has passed.
	ErrTokenExpired = errors.New("cached token has expired")
)

// DefaultPath returns $HOME/.iemap/token.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error finding home directory: %w", err)
	}
	return filepath.Join(home, ".iemap", "token"), nil
}

// Cache reads and writes a single token file.
type Cache struct {
	fs   afero.Fs
	path string

	// now is swapped in tests.
	now func() time.Time
}

// New returns a cache backed by fs. A nil fs means the OS filesystem.
func New(fs afero.Fs, path string) *Cache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Cache{fs: fs, path: path, now: time.Now}
}

// Path returns the token file location.
func (c *Cache) Path() string {
	return c.path
}

// Save writes the token with owner-only permissions, creating the parent
// directory when needed.
func (c *Cache) Save(tok models.TokenResponse) error {
	if tok.AccessToken == "" {
		return fmt.Errorf("refusing to cache an empty token")
	}

	if err := c.fs.MkdirAll(filepath.Dir(c.path), dirMode); err != nil {
		return fmt.Errorf("error creating token directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("error encoding token: %w", err)
	}
	if err := afero.WriteFile(c.fs, c.path, data, fileMode); err != nil {
		return fmt.Errorf("error writing token file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := c.fs.Chmod(c.path, fileMode); err != nil {
		return fmt.Errorf("error setting token file permissions: %w", err)
	}
	return nil
}

// Load reads the cached token. Tokens without a decodable exp claim are
// returned as is and left for the platform to judge.
func (c *Cache) Load() (models.TokenResponse, error) {
	var tok models.TokenResponse

	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tok, ErrNoToken
		}
		return tok, fmt.Errorf("error reading token file: %w", err)
	}
	if err := json.Unmarshal(data, &tok); err != nil {
		return tok, fmt.Errorf("error decoding token file %q: %w", c.path, err)
	}
	if tok.AccessToken == "" {
		return tok, ErrNoToken
	}

	if claims, err := iemap.ParseClaims(tok.AccessToken); err == nil && claims.ExpiresAt != nil {
		if !c.now().Before(claims.ExpiresAt.Time) {
			return tok, ErrTokenExpired
		}
	}
	return tok, nil
}

// Clear removes the token file. A missing file is not an error.
func (c *Cache) Clear() error {
	if err := c.fs.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error removing token file: %w", err)
	}
	return nil
}

// Restore loads the cached token into session. It returns false when no
// usable token was found.
func (c *Cache) Restore(session *iemap.Session) (bool, error) {
	tok, err := c.Load()
	switch {
	case errors.Is(err, ErrNoToken), errors.Is(err, ErrTokenExpired):
		return false, nil
	case err != nil:
		return false, err
	}
	session.SetToken(tok.AccessToken, tok.TokenType)
	return true, nil
}
