package dashboard

import (
	"errors"

	"github.com/amonks/taskdash/api"
)

// Describe returns the user-facing message for an error from a dashboard
// operation.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrAuthentication):
		return "Invalid credentials"
	case errors.Is(err, api.ErrConflict):
		return "Username already exists"
	case errors.Is(err, api.ErrSessionExpired):
		return "Session expired. Please log in again."
	case errors.Is(err, ErrNotLoggedIn):
		return "Not logged in. Run `taskdash login` first."
	case errors.Is(err, api.ErrNetwork):
		return "Unable to connect to server. Try again later."
	default:
		return err.Error()
	}
}

// NeedsLogin reports whether err means the user has to sign in again.
func NeedsLogin(err error) bool {
	return errors.Is(err, api.ErrSessionExpired) || errors.Is(err, ErrNotLoggedIn)
}
