package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog"
)

// ServerErrorMessage is the only message clients see for internal failures.
const ServerErrorMessage = "There's been a problem processing your request. Please try again or contact support"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   bool        `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Kind classifies an AppError and decides its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
)

// Status maps the kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the typed failure returned by services.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Validation builds a 400 error.
func Validation(message string, details interface{}) *AppError {
	return &AppError{Kind: KindValidation, Code: ErrCodeValidationFailed, Message: message, Details: details}
}

// NotFound builds a 404 error.
func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict builds a 409 error with a specific code.
func Conflict(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

// Unauthorized builds a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// Forbidden builds a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: ErrCodeForbidden, Message: message}
}

// Internal wraps a persistence or infrastructure failure.
func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: ErrCodeInternalError, Message: message, Err: err}
}

// WithCode overrides the machine readable code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// As extracts an *AppError from err. Plain errors are treated as internal.
func As(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("unexpected error", err)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}

// RespondAppError maps any error returned by a service onto the JSON error envelope.
// Internal errors are logged and replaced with a generic message.
func RespondAppError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	appErr := As(err)
	if appErr.Kind == KindInternal {
		logger.Error().Err(appErr).Msg("request failed")
		write(w, http.StatusInternalServerError, ErrorResponse{
			Error:   true,
			Code:    ErrCodeInternalError,
			Message: ServerErrorMessage,
		})
		return
	}
	write(w, appErr.Kind.Status(), ErrorResponse{
		Error:   true,
		Code:    appErr.Code,
		Message: appErr.Message,
		Errors:  appErr.Details,
	})
}

// RespondError writes a standardized error response to the HTTP response writer
func RespondError(w http.ResponseWriter, status int, code, message string) {
	write(w, status, ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
	})
}

// RespondValidationError writes a 400 with per-field violations
func RespondValidationError(w http.ResponseWriter, message string, violations interface{}) {
	write(w, http.StatusBadRequest, ErrorResponse{
		Error:   true,
		Code:    ErrCodeValidationFailed,
		Message: message,
		Errors:  violations,
	})
}

// RespondUnauthorized writes an unauthorized error response
func RespondUnauthorized(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusUnauthorized, code, message)
}

func write(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
