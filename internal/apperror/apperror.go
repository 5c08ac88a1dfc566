// Package apperror defines the typed failures returned by the domain layers.
//
// Each domain check returns an *AppError carrying a stable machine-readable
// code (USERNAME_EXISTS, KEY_NOT_FOUND, ...) and a human-readable message.
// The HTTP layer is the only place these are translated to status codes —
// services and repositories never touch net/http.
//
// The Err field holds one of the sentinel kinds below so callers can branch
// with errors.Is without string-matching codes:
//
//	errors.Is(err, apperror.ErrNotFound)  → true for any 404-class failure
package apperror

import "errors"

// Sentinel kinds. These drive the HTTP status mapping at the boundary:
// validation → 400, unauthorized → 401, not found → 404. Anything that is
// not an *AppError is treated as an internal fault (500).
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Stable error codes exposed in the error envelope. Clients are expected to
// branch on these, so they never change even if the messages are reworded.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeInvalidPassword     = "INVALID_PASSWORD"
	CodeInvalidAge          = "INVALID_AGE"
	CodeGenderRequired      = "GENDER_REQUIRED"
	CodeMissingFields       = "MISSING_FIELDS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeInvalidKey          = "INVALID_KEY"
	CodeInvalidValue        = "INVALID_VALUE"
	CodeKeyExists           = "KEY_EXISTS"
	CodeKeyNotFound         = "KEY_NOT_FOUND"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// AppError is a domain failure with a stable code.
type AppError struct {
	Err     error  // sentinel kind (ErrValidation, ErrUnauthorized, ErrNotFound)
	Code    string // stable machine-readable code
	Message string // human-readable description, safe to show clients
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation returns a 400-class failure (malformed or conflicting input).
func Validation(code, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    code,
		Message: message,
	}
}

// Unauthorized returns a 401-class failure. The message never says which
// part of the check failed (unknown user vs wrong password, expired vs
// tampered token).
func Unauthorized(code, message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Code:    code,
		Message: message,
	}
}

// NotFound returns a 404-class failure.
func NotFound(code, message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    code,
		Message: message,
	}
}
