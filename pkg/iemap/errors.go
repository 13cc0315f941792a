package iemap

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFileType matches any *UnsupportedFileTypeError.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNotAuthenticated is returned by Session.Token before a successful
	// login.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// TransportError is a failed HTTP exchange: either the platform answered
// with a non-2xx status, or the request never completed (Err is set).
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: API returned status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: API returned status %d: %s", e.Method, e.URL, e.StatusCode, body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthenticationError is a TransportError raised by the login exchange.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// UnsupportedFileTypeError is returned, before any request is made, when a
// file's extension is not accepted by the platform.
type UnsupportedFileTypeError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFileTypeError) Error() string {
	ext := e.Extension
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("file %q: extension %s is not allowed (allowed: %s)",
		e.Path, ext, strings.Join(AllowedFileExtensions, ", "))
}

func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType
}
