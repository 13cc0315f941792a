package iemap

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Session holds the bearer token shared by every handler of a Client. It is
// either anonymous (no token) or authenticated; a new login replaces the
// token wholesale. There is no logout: expiry is enforced by the platform.
//
// Session is safe for concurrent use. A request reads the token once, so a
// request in flight during re-authentication completes with the token it
// read.
type Session struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

var _ oauth2.TokenSource = (*Session)(nil)

// NewSession returns an anonymous session.
func NewSession() *Session {
	return &Session{}
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil
}

// Token implements oauth2.TokenSource. It returns ErrNotAuthenticated while
// the session is anonymous.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil, ErrNotAuthenticated
	}
	tok := *s.token
	return &tok, nil
}

// AccessToken returns the raw bearer token, or "" when anonymous.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// SetToken replaces the held token. An empty access token makes the session
// anonymous again.
func (s *Session) SetToken(accessToken, tokenType string) {
	var tok *oauth2.Token
	if accessToken != "" {
		tok = &oauth2.Token{
			AccessToken: accessToken,
			TokenType:   tokenType,
		}
		if claims, err := ParseClaims(accessToken); err == nil && claims.ExpiresAt != nil {
			tok.Expiry = claims.ExpiresAt.Time
		}
	}

	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

// Expiry returns the token expiry decoded from its claims; zero when
// anonymous or when the token carries no exp claim.
func (s *Session) Expiry() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return time.Time{}
	}
	return s.token.Expiry
}

// Claims decodes the held token without verifying its signature. It is meant
// for diagnostics only.
func (s *Session) Claims() (*jwt.RegisteredClaims, error) {
	tok := s.AccessToken()
	if tok == "" {
		return nil, ErrNotAuthenticated
	}
	return ParseClaims(tok)
}

// apply sets the Authorization header when a token is held and leaves the
// request untouched otherwise.
func (s *Session) apply(req *http.Request) {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()

	if tok != nil {
		tok.SetAuthHeader(req)
	}
}

// ParseClaims decodes the registered claims of a JWT without verifying it.
func ParseClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("error decoding token claims: %w", err)
	}
	return claims, nil
}
