package tracing

import (
	"context"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Instrumentation targets.
const (
	TargetEcho    = "echo"
	TargetHTTP    = "http"
	TargetMongoDB = "mongodb"
	TargetDNS     = "dns"
)

// Instrumentation scope names of the tracers behind each target.
const (
	ScopeEcho    = "blogapi/internal/middleware"
	ScopeHTTP    = otelhttp.ScopeName
	ScopeMongoDB = "blogapi/internal/repository"
	ScopeDNS     = "blogapi/internal/repository/resolver"
)

var targetScopes = map[string]string{
	TargetEcho:    ScopeEcho,
	TargetHTTP:    ScopeHTTP,
	TargetMongoDB: ScopeMongoDB,
	TargetDNS:     ScopeDNS,
}

// DefaultInstrumentations turns everything on except name resolution.
func DefaultInstrumentations() map[string]bool {
	return map[string]bool{
		TargetEcho:    true,
		TargetHTTP:    true,
		TargetMongoDB: true,
		TargetDNS:     false,
	}
}

// scopeFilter drops ended spans whose instrumentation scope belongs to a
// disabled target before they reach the exporter.
type scopeFilter struct {
	next     sdktrace.SpanProcessor
	disabled map[string]struct{}
}

func newScopeFilter(next sdktrace.SpanProcessor, targets map[string]bool) *scopeFilter {
	disabled := make(map[string]struct{})
	for target, scope := range targetScopes {
		if enabled, ok := targets[target]; ok && !enabled {
			disabled[scope] = struct{}{}
		}
	}
	return &scopeFilter{next: next, disabled: disabled}
}

func (f *scopeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.next.OnStart(parent, s)
}

func (f *scopeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	if _, drop := f.disabled[s.InstrumentationScope().Name]; drop {
		return
	}
	f.next.OnEnd(s)
}

func (f *scopeFilter) Shutdown(ctx context.Context) error {
	return f.next.Shutdown(ctx)
}

func (f *scopeFilter) ForceFlush(ctx context.Context) error {
	return f.next.ForceFlush(ctx)
}
