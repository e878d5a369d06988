package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrNotConfigured is returned by the factory when no model credential is set.
// Callers treat it as "run without refinement", not as a failure.
var ErrNotConfigured = errors.New("llm not configured")

// ErrorType says which part of the model setup or call failed. It is logged
// with every refinement fallback.
type ErrorType string

const (
	ErrorTypeNone      ErrorType = ""
	ErrorTypeEndpoint  ErrorType = "endpoint"
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeModel     ErrorType = "model"
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeTimeout   ErrorType = "timeout"
	ErrorTypeEmpty     ErrorType = "empty_response"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error is a classified model failure. Model calls are never retried, so
// there is no retryability flag: the type only drives logging.
type Error struct {
	Type       ErrorType
	Message    string
	Cause      error
	StatusCode int    // HTTP status when the provider reported one
	Model      string // Model name if known
	Endpoint   string // Endpoint URL if known; only its host is printed
}

func (e *Error) Error() string {
	parts := []string{string(e.Type)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, "model="+e.Model)
	}
	if host := endpointHost(e.Endpoint); host != "" {
		parts = append(parts, "endpoint="+host)
	}
	parts = append(parts, e.Message)

	msg := strings.Join(parts, " ")
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// endpointHost reduces an endpoint to its host so keys in query strings never
// reach error messages.
func endpointHost(endpoint string) string {
	if endpoint == "" {
		return ""
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error.
func NewError(errType ErrorType, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// emptyResponseError reports a successful call that produced no text.
func emptyResponseError(message, model, endpoint string) *Error {
	return &Error{Type: ErrorTypeEmpty, Message: message, Model: model, Endpoint: endpoint}
}

// statusPattern finds the HTTP status in go-openai ("status code: 401") and
// go-anthropic ("status 529") error strings.
var statusPattern = regexp.MustCompile(`status(?: code)?:? (\d{3})\b`)

// classifyRule maps a provider error to a type. Rules are checked in order.
type classifyRule struct {
	errType ErrorType
	message string
	status  []int
	phrases []string // matched against the lowercased error text
	match   func(err error, lower string) bool
}

var classifyRules = []classifyRule{
	{
		errType: ErrorTypeAuth, message: "authentication failed",
		status:  []int{401, 403},
		phrases: []string{"unauthorized", "invalid api key", "api key not valid", "invalid x-api-key", "incorrect api key"},
	},
	{
		errType: ErrorTypeModel, message: "model not found",
		match: func(_ error, lower string) bool {
			return strings.Contains(lower, "model") &&
				(strings.Contains(lower, "not found") || strings.Contains(lower, "does not exist"))
		},
	},
	{errType: ErrorTypeEndpoint, message: "endpoint not found", status: []int{404}},
	{
		errType: ErrorTypeTimeout, message: "request timeout",
		phrases: []string{"timeout", "deadline exceeded"},
		match: func(err error, _ string) bool {
			return errors.Is(err, context.DeadlineExceeded)
		},
	},
	{
		errType: ErrorTypeRateLimit, message: "rate limited",
		status:  []int{429},
		phrases: []string{"rate limit", "resource_exhausted", "overloaded"},
	},
	{
		errType: ErrorTypeEndpoint, message: "connection failed",
		phrases: []string{"connection refused", "no such host"},
	},
	{errType: ErrorTypeEndpoint, message: "server error", status: []int{500, 502, 503, 504, 529}},
}

func (r classifyRule) matches(err error, status int, lower string) bool {
	for _, s := range r.status {
		if s == status {
			return true
		}
	}
	for _, p := range r.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return r.match != nil && r.match(err, lower)
}

// ClassifyError returns err as a classified *Error. An *Error anywhere in the
// chain is returned as is.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	status := 0
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		status, _ = strconv.Atoi(m[1])
	}
	lower := strings.ToLower(err.Error())

	for _, rule := range classifyRules {
		if rule.matches(err, status, lower) {
			return &Error{Type: rule.errType, Message: rule.message, Cause: err, StatusCode: status}
		}
	}
	return &Error{Type: ErrorTypeUnknown, Message: "llm error", Cause: err, StatusCode: status}
}

// TypeOf returns the ErrorType of a classified error, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}
