package view_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"blogapi/internal/view"
)

func newServer(showDetail bool) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = view.NewErrorHandler(showDetail, zap.NewNop()).Handle
	e.GET("/users", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/fail", func(echo.Context) error {
		return fmt.Errorf("failed to find user: %w", errors.New("connection refused"))
	})
	e.GET("/written", func(c echo.Context) error {
		_ = c.String(http.StatusAccepted, "partial")
		return errors.New("too late")
	})
	return e
}

func request(e *echo.Echo, method, target, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if accept != "" {
		req.Header.Set(echo.HeaderAccept, accept)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestErrorHandler_NotFoundHTML(t *testing.T) {
	rec := request(newServer(false), http.MethodGet, "/missing", "text/html")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "<h1>Not Found</h1>")
	assert.Contains(t, rec.Body.String(), "<h2>404</h2>")
	assert.NotContains(t, rec.Body.String(), "<pre>")
}

func TestErrorHandler_MethodNotAllowedJSON(t *testing.T) {
	rec := request(newServer(false), http.MethodPatch, "/users", echo.MIMEApplicationJSON)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method Not Allowed"}`, rec.Body.String())
}

func TestErrorHandler_DetailOnlyWhenEnabled(t *testing.T) {
	tests := []struct {
		name       string
		showDetail bool
		accept     string
		want       string
		notWant    string
	}{
		{"production html", false, "text/html", "<h1>Internal Server Error</h1>", "connection refused"},
		{"development html", true, "text/html", "<pre>failed to find user: connection refused</pre>", ""},
		{"production json", false, echo.MIMEApplicationJSON, `"error":"Internal Server Error"`, "detail"},
		{"development json", true, echo.MIMEApplicationJSON, `"detail":"failed to find user: connection refused"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(newServer(tt.showDetail), http.MethodGet, "/fail", tt.accept)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, rec.Body.String(), tt.notWant)
			}
		})
	}
}

func TestErrorHandler_EscapesMessage(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = view.NewErrorHandler(false, zap.NewNop()).Handle
	e.GET("/xss", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "<script>alert(1)</script>")
	})

	rec := request(e, http.MethodGet, "/xss", "text/html")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestErrorHandler_HeadHasNoBody(t *testing.T) {
	rec := request(newServer(false), http.MethodHead, "/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorHandler_CommittedResponseUntouched(t *testing.T) {
	rec := request(newServer(true), http.MethodGet, "/written", "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}
