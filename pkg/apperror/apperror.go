package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kinds. Usecases wrap one of these so handlers can map errors to a status with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrDependency      = errors.New("dependency failure")
)

// Error carries a client-facing message, its kind and an optional internal cause
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: ErrUnauthenticated, Message: msg}
}

// Dependency wraps a failure of the store or an external provider
func Dependency(msg string, cause error) error {
	return &Error{Kind: ErrDependency, Message: msg, Cause: cause}
}

// Status maps an error to its HTTP status. Unknown errors are 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text of err
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

var showDetails = true

// SetShowDetails controls whether Respond includes the internal cause. Off in production.
func SetShowDetails(show bool) {
	showDetails = show
}

// Respond writes the uniform {"error": ...} body and attaches err to the gin context for logging
func Respond(c *gin.Context, err error) {
	_ = c.Error(err)
	body := gin.H{"error": Message(err)}
	if showDetails {
		var appErr *Error
		if errors.As(err, &appErr) && appErr.Cause != nil {
			body["details"] = appErr.Cause.Error()
		} else if appErr == nil {
			body["details"] = err.Error()
		}
	}
	c.AbortWithStatusJSON(Status(err), body)
}
