package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Message categories understood by the presentation layer.
const (
	CategoryError   = "error"
	CategorySuccess = "success"
	CategoryInfo    = "info"
	CategoryWarning = "warning"
)

// Error codes.
const (
	CodeValidation      = "VALIDATION_FAILED"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeNotFound        = "NOT_FOUND"
	CodeStorage         = "STORAGE_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
)

const storageMessage = "Something went wrong. Please try again."

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	Category   string
	HTTPStatus int
	Redirect   string
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithRedirect returns a copy of the error pointing the caller at a neutral page.
func (e *DomainError) WithRedirect(path string) *DomainError {
	clone := *e
	clone.Redirect = path
	return &clone
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message, category string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Category: category, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, CategoryError, http.StatusBadRequest, details)
}

// NewAuthenticationError never reveals which credential was wrong.
func NewAuthenticationError() error {
	return NewDomainError(CodeUnauthenticated, "Invalid email or password.", CategoryError, http.StatusUnauthorized, nil)
}

// LoginPath is where unauthenticated visitors are sent; it must match the
// registered login route.
const LoginPath = "/auth/login"

func NewLoginRequired() error {
	return NewDomainError(CodeUnauthenticated, "Please log in to access this page.", CategoryError, http.StatusUnauthorized, nil).
		WithRedirect(LoginPath)
}

func NewAuthorizationError(message string) error {
	return NewDomainError(CodeForbidden, message, CategoryError, http.StatusForbidden, nil).WithRedirect("/")
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, CategoryInfo, http.StatusConflict, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Category:   CategoryError,
		HTTPStatus: http.StatusNotFound,
		Redirect:   "/",
		Details:    details,
	}
}

func NewRateLimited(message string) error {
	return NewDomainError(CodeRateLimited, message, CategoryWarning, http.StatusTooManyRequests, nil)
}

// NewStorageError hides the cause behind a generic retry message.
func NewStorageError(err error) error {
	return &DomainError{
		Code:       CodeStorage,
		Message:    storageMessage,
		Category:   CategoryError,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	de, _ := NewStorageError(err).(*DomainError)
	return de
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

func MapError(err error) error {
	return ToDomainError(err)
}
