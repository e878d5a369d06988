// Package audit provides security audit logging for SIEM consumption.
// Events are logged as structured JSON under the "security_audit" logger.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/logging"
	"github.com/Ezzyro/Airtable-Test/pkg/middleware"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventInjectionAttempt is logged when libinjection flags a requested identifier.
	EventInjectionAttempt SecurityEventType = "injection_attempt"
	// EventInputValidation is logged when a request identifier fails validation.
	EventInputValidation SecurityEventType = "input_validation_failure"
)

// SecurityEvent is an auditable event with the request context needed for triage.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	RequestID string            `json:"request_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// InjectionDetails describes a rejected identifier.
type InjectionDetails struct {
	Operation   string `json:"operation"` // e.g. "process", "approve"
	Field       string `json:"field"`
	Value       string `json:"value"` // truncated
	Fingerprint string `json:"fingerprint"`
}

// SecurityAuditor logs security events.
type SecurityAuditor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSecurityAuditor creates a security auditor with a dedicated logger namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit"), now: time.Now}
}

// LogInjectionAttempt records an identifier rejected by the injection check.
// Logged at ERROR with "critical" severity.
func (a *SecurityAuditor) LogInjectionAttempt(ctx context.Context, details InjectionDetails, clientIP string) {
	details.Value = logging.TruncateString(details.Value, logging.MaxTextLogLength)
	event := a.event(ctx, EventInjectionAttempt, "critical", details, clientIP)

	a.logger.Error("Injection attempt detected",
		zap.String("event_json", marshalEvent(event)),
		zap.String("request_id", event.RequestID),
		zap.String("operation", details.Operation),
		zap.String("field", details.Field),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("client_ip", clientIP),
		zap.String("severity", event.Severity),
	)
}

// LogInputValidation records an identifier that failed validation. These are
// usually caller mistakes, so they log at WARN.
func (a *SecurityAuditor) LogInputValidation(ctx context.Context, operation, errorMessage, clientIP string) {
	event := a.event(ctx, EventInputValidation, "warning", map[string]string{
		"operation": operation,
		"error":     errorMessage,
	}, clientIP)

	a.logger.Warn("Input validation failed",
		zap.String("event_json", marshalEvent(event)),
		zap.String("request_id", event.RequestID),
		zap.String("operation", operation),
		zap.String("error", errorMessage),
		zap.String("client_ip", clientIP),
		zap.String("severity", event.Severity),
	)
}

// AuditRequestError logs err when it is an injection rejection or a
// validation failure, and reports whether it logged. field names the
// identifier that was checked.
func (a *SecurityAuditor) AuditRequestError(ctx context.Context, err error, operation, field, clientIP string) bool {
	var injErr *tabular.InjectionError
	switch {
	case errors.As(err, &injErr):
		a.LogInjectionAttempt(ctx, InjectionDetails{
			Operation:   operation,
			Field:       field,
			Value:       injErr.Value,
			Fingerprint: injErr.Fingerprint,
		}, clientIP)
		return true
	case errors.Is(err, apperrors.ErrInvalidInput):
		a.LogInputValidation(ctx, operation, err.Error(), clientIP)
		return true
	default:
		return false
	}
}

func (a *SecurityAuditor) event(ctx context.Context, eventType SecurityEventType, severity string, details any, clientIP string) SecurityEvent {
	return SecurityEvent{
		Timestamp: a.now().UTC(),
		EventType: eventType,
		RequestID: middleware.RequestIDFromContext(ctx),
		ClientIP:  clientIP,
		Details:   details,
		Severity:  severity,
	}
}

// marshalEvent serializes known types; the error is unreachable.
func marshalEvent(event SecurityEvent) string {
	b, _ := json.Marshal(event)
	return string(b)
}
