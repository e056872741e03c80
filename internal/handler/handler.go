package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"blogapi/internal/domain"
	"blogapi/internal/service"
	"blogapi/internal/validation"
)

var (
	errInvalidBody  = map[string]string{"error": "invalid request body"}
	errUserNotFound = map[string]string{"error": "user not found"}
	errEmptyUpdate  = map[string]string{"error": "no fields to update"}
	errListFailed   = map[string]string{"error": "failed to list users"}
	errGetFailed    = map[string]string{"error": "failed to get user"}
	errCreateFailed = map[string]string{"error": "failed to create user"}
	errUpdateFailed = map[string]string{"error": "failed to update user"}
	errDeleteFailed = map[string]string{"error": "failed to delete user"}
	respHealthOK    = map[string]string{"status": "ok"}
)

const msgValidationFailed = "validation failed"

// Banner is the body of GET /.
type Banner struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}

type Handler struct {
	users     UserService
	validator UserValidator
	metrics   http.Handler
	service   string
	logger    *zap.Logger
}

func New(
	users UserService,
	validator UserValidator,
	metrics http.Handler,
	serviceName string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:     users,
		validator: validator,
		metrics:   metrics,
		service:   serviceName,
		logger:    logger,
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(h.metrics))

	users := e.Group("/users")
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)
}

func (h *Handler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, Banner{Service: h.service, Status: "ok"})
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, respHealthOK)
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errListFailed)
	}
	return c.JSON(http.StatusOK, domain.ListUsersResponse{Users: users})
}

func (h *Handler) GetUser(c echo.Context) error {
	u, err := h.users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errUserNotFound)
		}
		h.logger.Error("failed to get user", zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errGetFailed)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req domain.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Debug("failed to bind request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, errInvalidBody)
	}

	if err := h.validator.ValidateCreate(req); err != nil {
		return h.handleValidationError(c, err)
	}

	u, err := h.users.Create(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errCreateFailed)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	var req domain.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Debug("failed to bind request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, errInvalidBody)
	}

	if err := h.validator.ValidateUpdate(req); err != nil {
		return h.handleValidationError(c, err)
	}

	u, err := h.users.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errUserNotFound)
		}
		h.logger.Error("failed to update user", zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errUpdateFailed)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errUserNotFound)
		}
		h.logger.Error("failed to delete user", zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errDeleteFailed)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) handleValidationError(c echo.Context, err error) error {
	if errors.Is(err, validation.ErrEmptyUpdate) {
		return c.JSON(http.StatusBadRequest, errEmptyUpdate)
	}

	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, h.formatFieldErrors(verr))
	}
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msgValidationFailed})
}

func (h *Handler) formatFieldErrors(err *validation.ValidationError) map[string]any {
	errs := make([]map[string]string, len(err.Errors))
	for i, e := range err.Errors {
		errs[i] = map[string]string{
			"field": e.Field,
			"error": e.Error(),
		}
	}
	return map[string]any{"error": msgValidationFailed, "errors": errs}
}
