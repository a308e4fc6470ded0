package cli

import (
	"errors"

	"github.com/dmitrijs2005/gophdesk/internal/common"
)

// userMessage translates an error returned by a command into the text shown
// to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrDuplicateUsername):
		return "This user name is already registered"
	case errors.Is(err, common.ErrUnknownUser):
		return "Unknown user"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Wrong password or PIN"
	case errors.Is(err, common.ErrNotAuthenticated):
		return "Please log in first"
	case errors.Is(err, common.ErrStorageUnavailable):
		return "Storage is unavailable, nothing was changed"
	case errors.Is(err, common.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, errSecretMismatch):
		return "Passwords do not match"
	default:
		return "Error: " + err.Error()
	}
}
