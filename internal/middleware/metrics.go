package middleware

//go:generate go tool mockery

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"blogapi/internal/metrics"
)

type HTTPRecorder interface {
	RecordHTTP(m metrics.HTTPMetric)
}

// requestTimer is the per-request instrumentation state. stop runs its
// callback at most once no matter how many terminal paths reach it.
type requestTimer struct {
	start time.Time
	once  sync.Once
}

func startTimer() *requestTimer {
	return &requestTimer{start: time.Now()}
}

func (t *requestTimer) stop(record func(elapsed time.Duration)) {
	t.once.Do(func() {
		record(time.Since(t.start))
	})
}

// Metrics times every request and hands the outcome to recorder exactly once.
// Handler errors are resolved through the echo error handler first so the
// recorded status code is the one the client sees.
func Metrics(recorder HTTPRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			timer := startTimer()
			finish := func(statusCode int) {
				timer.stop(func(elapsed time.Duration) {
					recorder.RecordHTTP(metrics.HTTPMetric{
						Method:     c.Request().Method,
						Route:      RouteLabel(c),
						StatusCode: statusCode,
						Duration:   elapsed,
					})
				})
			}

			defer func() {
				if r := recover(); r != nil {
					finish(http.StatusInternalServerError)
					panic(r)
				}
			}()

			if err := next(c); err != nil {
				c.Error(err)
			}
			finish(c.Response().Status)
			return nil
		}
	}
}

// RouteLabel returns the matched route template, or the literal path when the
// router matched nothing.
func RouteLabel(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return c.Request().URL.Path
}
