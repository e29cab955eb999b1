package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/hiredoor/internal/schemas"
)

// GenericErrorMessage is shown when no better user-facing message is available.
const GenericErrorMessage = "Something went wrong. Please try again."

// ErrUnauthorized is wrapped by every error produced from a 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a structured error returned by the backend.
type Error struct {
	StatusCode  int
	Code        string
	Message     string
	UserMessage string
	Path        string
	Timestamp   string
	Body        string
}

func (e *Error) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
	case e.Body != "":
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API error (%d)", e.StatusCode)
}

// errorEnvelope is the backend's error body: {"success": false, "error": {...}}.
type errorEnvelope struct {
	Success bool `json:"success"`
	Error   *struct {
		Code        string `json:"code"`
		Message     string `json:"message"`
		UserMessage string `json:"userMessage"`
		Timestamp   string `json:"timestamp"`
		Path        string `json:"path"`
	} `json:"error"`
}

// TransportError is a failure to reach the backend or read its response.
type TransportError struct {
	Method string
	Path   string
	Cause  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s %s failed: %v", e.Method, e.Path, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// fieldMessages are user-facing messages for request fields that fail validation.
var fieldMessages = map[string]string{
	"URL":          "Please enter a valid job URL.",
	"JobURL":       "Please enter a valid job URL.",
	"ContactEmail": "Please enter a valid email address.",
	"Text":         "Resume text seems too short. Please paste your full resume.",
}

// UserMessage extracts a message suitable for showing to the user from any error
// returned by this package. Structured API errors use the backend's userMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.UserMessage != "" {
			return apiErr.UserMessage
		}
		return GenericErrorMessage
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return "Unable to reach the server. Please check your connection and try again."
	}

	// A response that breaks the schema is a backend fault, not something the user can fix.
	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		return GenericErrorMessage
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		field := validationErrs[0].Field()
		if msg, ok := fieldMessages[field]; ok {
			return msg
		}
		return fmt.Sprintf("%s is invalid.", strings.ToLower(field))
	}

	return err.Error()
}
