package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can use errors.Is against a constructor result.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// ErrInvalidPhoneNumber is returned when a phone number cannot be parsed
// or is not a valid number for its region.
func ErrInvalidPhoneNumber(err error) *AppError {
	return Wrap("VAL_001", "Invalid phone number", http.StatusBadRequest, err)
}

// Validation returns a VAL_002 validation error with a custom message.
func Validation(message string) *AppError {
	return New("VAL_002", message, http.StatusBadRequest)
}

// ErrPayloadTooLarge is returned when a request body exceeds the size limit.
func ErrPayloadTooLarge() *AppError {
	return New("VAL_003", "Request body too large", http.StatusRequestEntityTooLarge)
}

func ErrUnsupportedMediaType() *AppError {
	return New("VAL_004", "Content-Type must be application/json", http.StatusUnsupportedMediaType)
}

// ---- Storage (STO) ----

func ErrNotFound(entity string) *AppError {
	return New("STO_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrConflict(entity string) *AppError {
	return New("STO_002", fmt.Sprintf("%s already exists", entity), http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrStoreUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Store unavailable", http.StatusServiceUnavailable, err)
}

func ErrNotImplemented(operation string) *AppError {
	return New("SYS_004", fmt.Sprintf("%s is not implemented", operation), http.StatusNotImplemented)
}
