// Package errors provides the console's error taxonomy
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ConsoleError is the base interface for all console errors
type ConsoleError interface {
	error
	HTTPStatus() int
	Code() string
}

// BaseError is the base implementation of ConsoleError
type BaseError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"code"`
	Details    string `json:"details,omitempty"`
}

func (e *BaseError) Error() string {
	return e.Message
}

func (e *BaseError) HTTPStatus() int {
	return e.StatusCode
}

func (e *BaseError) Code() string {
	return e.ErrorCode
}

// AuthError represents a missing, invalid or expired admin session
type AuthError struct {
	BaseError
}

func NewAuthError(message string) *AuthError {
	if message == "" {
		message = "authentication required"
	}
	return &AuthError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusUnauthorized,
			ErrorCode:  "UNAUTHORIZED",
		},
	}
}

// RequestError is a non-2xx response from the backend
type RequestError struct {
	BaseError
	Status int
	Body   []byte
}

func NewRequestError(status int, body []byte) *RequestError {
	msg := serverMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &RequestError{
		BaseError: BaseError{
			Message:    msg,
			StatusCode: http.StatusBadGateway,
			ErrorCode:  "REQUEST_FAILED",
		},
		Status: status,
		Body:   body,
	}
}

// ServerMessage returns the message the backend put in the body, if any
func (e *RequestError) ServerMessage() string {
	return serverMessage(e.Body)
}

// NetworkError means the transport failed before a response arrived
type NetworkError struct {
	BaseError
	Err error
}

func NewNetworkError(err error) *NetworkError {
	return &NetworkError{
		BaseError: BaseError{
			Message:    "network error: " + err.Error(),
			StatusCode: http.StatusBadGateway,
			ErrorCode:  "NETWORK_ERROR",
		},
		Err: err,
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError represents a client-side form check failure
type ValidationError struct {
	BaseError
	Field string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "VALIDATION_ERROR",
		},
		Field: field,
	}
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	BaseError
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s not found", resource),
			StatusCode: http.StatusNotFound,
			ErrorCode:  "NOT_FOUND",
		},
		Resource: resource,
	}
}

// InternalError represents an internal server error
type InternalError struct {
	BaseError
	OriginalError error
}

func NewInternalError(original error) *InternalError {
	return &InternalError{
		BaseError: BaseError{
			Message:    "internal server error",
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  "INTERNAL_ERROR",
		},
		OriginalError: original,
	}
}

func (e *InternalError) Unwrap() error {
	return e.OriginalError
}

// BadRequestError represents a generic bad request error
type BadRequestError struct {
	BaseError
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "BAD_REQUEST",
		},
	}
}

// RateLimitError rejects an operation until RetryAfter has passed
type RateLimitError struct {
	BaseError
	RetryAfter time.Duration
}

func NewRateLimitError(retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("too many attempts, try again in %s", retryAfter.Round(time.Second)),
			StatusCode: http.StatusTooManyRequests,
			ErrorCode:  "RATE_LIMITED",
		},
		RetryAfter: retryAfter,
	}
}

// IsAuth reports whether err means the admin session is gone:
// an AuthError or a backend 401.
func IsAuth(err error) bool {
	var ae *AuthError
	if stderrors.As(err, &ae) {
		return true
	}
	var re *RequestError
	if stderrors.As(err, &re) {
		return re.Status == http.StatusUnauthorized
	}
	return false
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// UserMessage converts err into text suitable for a notice
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ne *NetworkError
	if stderrors.As(err, &ne) {
		return "Network error, please try again"
	}
	var re *RequestError
	if stderrors.As(err, &re) {
		return re.Message
	}
	var ce ConsoleError
	if stderrors.As(err, &ce) {
		return ce.Error()
	}
	return "unexpected error"
}

// ToHTTPError converts any error to an appropriate HTTP response
func ToHTTPError(err error) (int, map[string]interface{}) {
	if err == nil {
		return http.StatusOK, nil
	}

	var ce ConsoleError
	if stderrors.As(err, &ce) {
		return ce.HTTPStatus(), map[string]interface{}{
			"error":   ce.Code(),
			"message": ce.Error(),
		}
	}

	return http.StatusInternalServerError, map[string]interface{}{
		"error":   "INTERNAL_ERROR",
		"message": "internal server error",
	}
}

// serverMessage pulls a human readable message out of a JSON error body.
// FastAPI puts it in "detail", which is either a string or a list of
// {"msg": ...} objects.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(raw, &list); err == nil {
			msgs := make([]string, 0, len(list))
			for _, item := range list {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return ""
}
