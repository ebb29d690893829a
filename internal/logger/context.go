package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context
type LogContext struct {
	TraceID     string // OpenTelemetry trace ID
	SpanID      string // OpenTelemetry span ID
	RequestID   string // HTTP request ID (chi middleware.RequestID)
	Route       string // Matched route pattern
	Namespace   string // Namespace slug in scope for the request
	Repository  string // Repository slug in scope for the request
	PrincipalID string // Authenticated principal ID, empty if anonymous
	ClientIP    string // Client IP address (without port)
	StartTime   time.Time
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithRoute returns a copy with the matched route pattern set
func (lc *LogContext) WithRoute(route string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Route = route
	}
	return clone
}

// WithRepo returns a copy with the namespace/repository scope set
func (lc *LogContext) WithRepo(namespace, repo string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Namespace = namespace
		clone.Repository = repo
	}
	return clone
}

// WithPrincipal returns a copy with the authenticated principal set
func (lc *LogContext) WithPrincipal(principalID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.PrincipalID = principalID
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
