// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type ErrorType

	// Message is the client-side description of the failure.
	Message string

	// Detail is the backend's "detail" field, when the response carried one.
	// For conflicts this is the server message shown to the user.
	Detail string

	// Status is the HTTP status code, 0 for transport-level failures.
	Status int

	Cause error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel client errors by type so errors.Is works against
// ErrUnauthorized and friends regardless of message or status.
func (e *ClientError) Is(target error) bool {
	var other *ClientError
	if errors.As(target, &other) {
		return e.Type == other.Type
	}
	return false
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeAuth
	ErrTypeConflict
	ErrTypeValidation
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeNotFound
)

// Sentinel errors for easy checking.
var (
	ErrUnauthorized = &ClientError{Type: ErrTypeAuth, Message: "authentication required"}
	ErrConflict     = &ClientError{Type: ErrTypeConflict, Message: "conversation conflict"}
	ErrNotFound     = &ClientError{Type: ErrTypeNotFound, Message: "resource not found"}
	ErrConnection   = &ClientError{Type: ErrTypeConnection, Message: "backend unreachable"}
)

// =============================================================================
// AUTH FAILURE RECOGNITION
// =============================================================================

// authDetails are the backend detail strings that mean the token itself is
// bad. Only these trigger a global logout; any other 401/403 is surfaced as
// an ordinary failure. The strings come from the backend verbatim.
var authDetails = map[string]bool{
	"Token inválido":    true,
	"Token expirado":    true,
	"Not authenticated": true,
	"Claims inválidos":  true,
}

// isAuthFailure reports whether a status/detail pair is a token failure.
func isAuthFailure(status int, detail string) bool {
	if status != 401 && status != 403 {
		return false
	}
	return authDetails[detail]
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsAuth checks if an error is a token failure requiring logout.
func IsAuth(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeAuth
	}
	return false
}

// IsConflict checks if an error is a conversation conflict (HTTP 409).
func IsConflict(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeConflict
	}
	return false
}

// IsNotFound checks if an error is a missing-resource error.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotFound
	}
	return false
}

// IsValidation checks if an error is a request the backend rejected as
// malformed or disallowed.
func IsValidation(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeValidation
	}
	return false
}

// Detail returns the backend detail string carried by an error, or "".
func Detail(err error) string {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Detail
	}
	return ""
}
