package middleware

import (
	"crypto/subtle"
	"net/http"
	"net/http/pprof"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"blogapi/internal/config"
)

const (
	PprofPrefix     = "/debug/pprof"
	pprofAuthHeader = "X-Pprof-Secret"
)

var errPprofUnauthorized = map[string]string{"error": "unauthorized"}

// pprofHandlers are the profiler endpoints that are not named runtime profiles.
var pprofHandlers = map[string]http.HandlerFunc{
	"cmdline": pprof.Cmdline,
	"profile": pprof.Profile,
	"symbol":  pprof.Symbol,
	"trace":   pprof.Trace,
}

// Pprof mounts the runtime profiler under PprofPrefix when cfg.Enabled. With
// a secret configured every request must carry it in X-Pprof-Secret.
func Pprof(e *echo.Echo, cfg *config.PprofConfig, logger *zap.Logger) {
	if !cfg.Enabled {
		return
	}
	if cfg.Secret == "" {
		logger.Warn("pprof endpoints are exposed without a secret")
	}

	g := e.Group(PprofPrefix, pprofAuth(cfg.Secret))
	g.GET("/", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	g.GET("/:profile", servePprof)
	g.POST("/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
}

// servePprof dispatches on the profile name so the route label stays
// /debug/pprof/:profile for every profile.
func servePprof(c echo.Context) error {
	name := c.Param("profile")
	if h, ok := pprofHandlers[name]; ok {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
	pprof.Handler(name).ServeHTTP(c.Response(), c.Request())
	return nil
}

// pprofAuth requires the shared secret in X-Pprof-Secret. An empty secret
// disables the check.
func pprofAuth(secret string) echo.MiddlewareFunc {
	want := []byte(secret)
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper:   func(echo.Context) bool { return secret == "" },
		KeyLookup: "header:" + pprofAuthHeader,
		Validator: func(key string, _ echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), want) == 1, nil
		},
		ErrorHandler: func(_ error, c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, errPprofUnauthorized)
		},
	})
}
