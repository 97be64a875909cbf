// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrSignatureRequired = errors.New("signature required")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func NewAppError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func InvalidInputError(message string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_INPUT",
		Message: message,
		cause:   ErrInvalidInput,
	}
}

func NotFoundError(resource string) *AppError {
	return &AppError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: resource + " not found",
		cause:   ErrNotFound,
	}
}

func UnauthorizedError(message string) *AppError {
	return &AppError{
		Status:  http.StatusUnauthorized,
		Code:    "UNAUTHORIZED",
		Message: message,
		cause:   ErrUnauthorized,
	}
}

func ForbiddenError(message string) *AppError {
	return &AppError{
		Status:  http.StatusForbidden,
		Code:    "FORBIDDEN",
		Message: message,
		cause:   ErrForbidden,
	}
}

func SignatureRequiredError() *AppError {
	return &AppError{
		Status:  http.StatusUnauthorized,
		Code:    "SIGNATURE_REQUIRED",
		Message: "missing webhook signature header",
		cause:   ErrSignatureRequired,
	}
}

func InvalidSignatureError() *AppError {
	return &AppError{
		Status:  http.StatusUnauthorized,
		Code:    "INVALID_SIGNATURE",
		Message: "webhook signature verification failed",
		cause:   ErrInvalidSignature,
	}
}

func MalformedPayloadError(message string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    "MALFORMED_PAYLOAD",
		Message: message,
		cause:   ErrMalformedPayload,
	}
}

func RateLimitedError(retryAfterSecs int) *AppError {
	return &AppError{
		Status: http.StatusTooManyRequests,
		Code:   "RATE_LIMITED",
		Message: fmt.Sprintf(
			"rate limit exceeded, retry after %d seconds",
			retryAfterSecs,
		),
		cause: ErrRateLimited,
	}
}

func FormatValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "invalid request"
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, formatFieldError(fieldErr))
	}

	return strings.Join(messages, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
