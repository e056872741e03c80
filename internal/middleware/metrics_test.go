package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogapi/internal/metrics"
	"blogapi/internal/middleware"
	"blogapi/internal/middleware/mocks"
)

const objectID = "507f1f77bcf86cd799439011"

func captureOnce(t *testing.T) (*mocks.MockHTTPRecorder, *metrics.HTTPMetric) {
	rec := mocks.NewMockHTTPRecorder(t)

	var captured metrics.HTTPMetric
	rec.EXPECT().RecordHTTP(mock.Anything).
		Run(func(m metrics.HTTPMetric) {
			captured = m
		}).Return().Once()

	return rec, &captured
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	resp := httptest.NewRecorder()
	e.ServeHTTP(resp, req)
	return resp
}

func TestMetrics_SuccessfulRequest(t *testing.T) {
	rec, captured := captureOnce(t)

	e := echo.New()
	e.Use(middleware.Metrics(rec))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	serve(e, http.MethodGet, "/health")

	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "/health", captured.Route)
	assert.Equal(t, http.StatusOK, captured.StatusCode)
	assert.GreaterOrEqual(t, captured.Duration, time.Duration(0))
}

func TestMetrics_RouteTemplate(t *testing.T) {
	rec, captured := captureOnce(t)

	e := echo.New()
	e.Use(middleware.Metrics(rec))
	e.GET("/users/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Param("id"))
	})

	serve(e, http.MethodGet, "/users/"+objectID)

	assert.Equal(t, "/users/:id", captured.Route)
}

func TestMetrics_UnmatchedRouteUsesLiteralPath(t *testing.T) {
	rec, captured := captureOnce(t)

	e := echo.New()
	e.Use(middleware.Metrics(rec))
	e.GET("/users/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	resp := serve(e, http.MethodGet, "/nope")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "/nope", captured.Route)
	assert.Equal(t, http.StatusNotFound, captured.StatusCode)
}

func TestMetrics_HandlerErrorsResolveStatusFirst(t *testing.T) {
	tests := []struct {
		name       string
		handlerErr error
		wantStatus int
	}{
		{"plain error", errors.New("something went wrong"), http.StatusInternalServerError},
		{"http error", echo.NewHTTPError(http.StatusNotFound, "not found"), http.StatusNotFound},
		{"canceled by client", context.Canceled, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, captured := captureOnce(t)

			e := echo.New()
			e.Use(middleware.Metrics(rec))
			e.GET("/users/:id", func(echo.Context) error {
				return tt.handlerErr
			})

			resp := serve(e, http.MethodGet, "/users/"+objectID)

			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Equal(t, tt.wantStatus, captured.StatusCode)
		})
	}
}

func TestMetrics_PanicRecordedOnce(t *testing.T) {
	rec, captured := captureOnce(t)

	e := echo.New()
	e.Use(middleware.Metrics(rec))
	e.GET("/boom", func(echo.Context) error {
		panic("boom")
	})

	assert.Panics(t, func() {
		serve(e, http.MethodGet, "/boom")
	})
	assert.Equal(t, http.StatusInternalServerError, captured.StatusCode)
	assert.Equal(t, "/boom", captured.Route)
}

func TestMetrics_DifferentMethods(t *testing.T) {
	methods := []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			rec, captured := captureOnce(t)

			e := echo.New()
			e.Use(middleware.Metrics(rec))
			e.Add(method, "/users/:id", func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})

			serve(e, method, "/users/"+objectID)

			require.NotZero(t, captured.Method)
			assert.Equal(t, method, captured.Method)
		})
	}
}

func TestMetrics_ConcurrentRequestsCountedExactlyOnce(t *testing.T) {
	reg, err := metrics.NewRegistry(zap.NewNop())
	require.NoError(t, err)

	e := echo.New()
	e.Use(middleware.Metrics(reg))
	e.GET("/users/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.DELETE("/users/:id", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound)
	})

	const n = 100
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			method := http.MethodGet
			if i%4 == 0 {
				method = http.MethodDelete
			}
			serve(e, method, "/users/"+objectID)
		}()
	}
	wg.Wait()

	expected := `
# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total{method="DELETE",route="/users/:id",status_code="404"} 25
http_requests_total{method="GET",route="/users/:id",status_code="200"} 75
`
	require.NoError(t, testutil.GatherAndCompare(reg.Gatherer(), strings.NewReader(expected), metrics.RequestsTotalName))

	expectedErrors := `
# HELP http_errors_total Total number of HTTP errors
# TYPE http_errors_total counter
http_errors_total{method="DELETE",route="/users/:id",status_code="404"} 25
`
	require.NoError(t, testutil.GatherAndCompare(reg.Gatherer(), strings.NewReader(expectedErrors), metrics.ErrorsTotalName))
}

func TestRouteLabel_FallsBackToLiteralPath(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/uploads/cat.png", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "/uploads/cat.png", middleware.RouteLabel(c))

	c.SetPath("/uploads/*")
	assert.Equal(t, "/uploads/*", middleware.RouteLabel(c))
}
