// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Request errors.
	ErrIncompleteRequest = errors.New("request body incomplete")

	// Credential errors.
	ErrUserExists       = errors.New("user already exists")
	ErrUserNotFound     = errors.New("user does not exist")
	ErrPasswordMismatch = errors.New("password mismatch")

	// Auth errors.
	ErrMissingAuthHeader = errors.New("authorization header not found")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrForbidden         = errors.New("forbidden")

	// Profile validation errors.
	ErrProfileIncomplete = errors.New("profile incomplete")
	ErrProfileNotStrings = errors.New("profile fields must be strings")
	ErrInvalidDOB        = errors.New("invalid date of birth")
	ErrDOBInFuture       = errors.New("date of birth in the future")

	// Lookup errors.
	ErrInvalidPersonID      = errors.New("invalid person id")
	ErrQueryParamsForbidden = errors.New("query parameters are not permitted")
)
