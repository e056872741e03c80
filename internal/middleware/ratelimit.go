package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"blogapi/internal/config"
)

const (
	bypassHeader      = "X-Rate-Limit-Bypass"
	retryAfterSeconds = 1
)

type limitedResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after"`
}

// RateLimit applies a per-client-IP token bucket. Probe endpoints and callers
// presenting the bypass secret are never limited.
func RateLimit(cfg *config.RateLimitConfig, logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: limiterSkipper(cfg.BypassSecret),
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RPS),
			Burst:     cfg.Burst,
			ExpiresIn: time.Duration(cfg.ExpireMinutes) * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, ip string, _ error) error {
			logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("route", RouteLabel(c)))
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
			return c.JSON(http.StatusTooManyRequests, limitedResponse{
				Error:      "rate limit exceeded",
				RetryAfter: retryAfterSeconds,
			})
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.Error("failed to identify client for rate limiting", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		},
	})
}

func limiterSkipper(secret string) middleware.Skipper {
	want := []byte(secret)
	return func(c echo.Context) bool {
		if isProbe(c) {
			return true
		}
		if secret == "" {
			return false
		}
		got := []byte(c.Request().Header.Get(bypassHeader))
		return subtle.ConstantTimeCompare(got, want) == 1
	}
}

// isProbe reports whether the request targets /health or /metrics.
func isProbe(c echo.Context) bool {
	switch c.Request().URL.Path {
	case "/health", "/metrics":
		return true
	}
	return false
}
