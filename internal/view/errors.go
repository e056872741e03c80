package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

//go:embed templates/error.html
var templates embed.FS

var errorTemplate = template.Must(template.ParseFS(templates, "templates/error.html"))

type errorPage struct {
	Status  int
	Message string
	Detail  string
}

// ErrorHandler renders framework-level errors (unknown routes, wrong methods,
// panics, unhandled handler errors). Clients that accept JSON get
// {"error": message}; everyone else gets the HTML error page. The underlying
// error is only included when showDetail is set.
type ErrorHandler struct {
	showDetail bool
	logger     *zap.Logger
}

func NewErrorHandler(showDetail bool, logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{showDetail: showDetail, logger: logger}
}

func (h *ErrorHandler) Handle(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	page := h.page(err)
	if page.Status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
	}

	var writeErr error
	switch {
	case c.Request().Method == http.MethodHead:
		writeErr = c.NoContent(page.Status)
	case wantsJSON(c.Request()):
		body := map[string]string{"error": page.Message}
		if page.Detail != "" {
			body["detail"] = page.Detail
		}
		writeErr = c.JSON(page.Status, body)
	default:
		writeErr = h.renderHTML(c, page)
	}

	if writeErr != nil {
		h.logger.Warn("failed to write error response", zap.Error(writeErr))
	}
}

func (h *ErrorHandler) page(err error) errorPage {
	page := errorPage{
		Status:  http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		page.Status = he.Code
		page.Message = fmt.Sprint(he.Message)
		if he.Internal != nil && h.showDetail {
			page.Detail = he.Internal.Error()
		}
		return page
	}

	if h.showDetail {
		page.Detail = err.Error()
	}
	return page
}

func (h *ErrorHandler) renderHTML(c echo.Context, page errorPage) error {
	var buf bytes.Buffer
	if err := errorTemplate.Execute(&buf, page); err != nil {
		return fmt.Errorf("failed to render error page: %w", err)
	}
	return c.HTMLBlob(page.Status, buf.Bytes())
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get(echo.HeaderAccept)
	if strings.Contains(accept, echo.MIMEApplicationJSON) {
		return true
	}
	return accept == "" && strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}
