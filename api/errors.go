package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthentication is returned when login credentials are rejected.
	ErrAuthentication = errors.New("invalid credentials")

	// ErrSessionExpired is returned when an authorized call is rejected with
	// 401 or 403. The caller owns clearing the session.
	ErrSessionExpired = errors.New("session expired")

	// ErrConflict is returned when signup names an existing user.
	ErrConflict = errors.New("username already exists")

	// ErrNetwork is returned when the server cannot be reached.
	ErrNetwork = errors.New("unable to connect to server")
)

// StatusError is a non-2xx response not covered by a sentinel error.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// StatusCode returns the HTTP status of err if it is a StatusError.
func StatusCode(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code, true
	}
	return 0, false
}
