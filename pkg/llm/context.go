package llm

import (
	"context"
	"net/http"
)

type contextKey string

const (
	runIDContextKey contextKey = "llm_run_id"

	// requestIDHeader carries the pipeline run ID to the model endpoint so
	// provider-side logs can be correlated with ours.
	requestIDHeader = "X-Request-Id"
)

// WithRunID returns a context carrying the pipeline run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDContextKey, runID)
}

// RunIDFromContext returns the run ID, or "" when none is set.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDContextKey).(string); ok {
		return id
	}
	return ""
}

// contextAwareTransport sets X-Request-Id from the request context.
type contextAwareTransport struct {
	base http.RoundTripper
}

func (t *contextAwareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	runID := RunIDFromContext(req.Context())
	if runID == "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set(requestIDHeader, runID)
	return t.base.RoundTrip(clone)
}
