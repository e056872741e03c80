package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"blogapi/internal/tracing"
)

// Tracing opens a span per routed request named after the route template and
// renames the enclosing transport span the same way.
func Tracing(tp trace.TracerProvider) echo.MiddlewareFunc {
	tracer := tp.Tracer(tracing.ScopeEcho)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route := RouteLabel(c)
			name := req.Method + " " + route

			transport := trace.SpanFromContext(req.Context())
			transport.SetName(name)
			transport.SetAttributes(semconv.HTTPRoute(route))

			ctx, span := tracer.Start(req.Context(), name,
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(req.Method),
					semconv.HTTPRoute(route),
				),
			)
			defer span.End()
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			status := c.Response().Status
			if err != nil {
				span.RecordError(err)
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			span.SetAttributes(semconv.HTTPResponseStatusCode(status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			return err
		}
	}
}
