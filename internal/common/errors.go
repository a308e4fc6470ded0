// Package common defines shared constants and sentinel errors used across
// the credential, session and storage layers of gophdesk. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound         = errors.New("not found")
	ErrorAlreadyExists    = errors.New("already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Credential errors.
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")

	// Session errors.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
)
