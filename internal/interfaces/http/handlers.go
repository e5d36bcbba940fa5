package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/voucher-flow/internal/application/service"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/domain/form"
	"github.com/garyjia/voucher-flow/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	// Fields carries per-field validation messages
	Fields map[string]string `json:"fields,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}

	token, user, err := h.services.Auth.Login(c.Request.Context(), req.Identifier, req.Password, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    LoginResponse{Token: token, User: user},
	})
}

// Me handles GET /api/me
func (h *Handlers) Me(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := service.CurrentUser(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	balance, err := h.services.Ledger.Balance(ctx, user.PIN)
	if err != nil {
		h.respondError(c, err)
		return
	}
	count, err := h.services.Cart.Count(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    MeResponse{User: user, Balance: balance, CartCount: count},
	})
}

// bind decodes the JSON body into req and answers 400 on failure
func (h *Handlers) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Info("Invalid request body", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// respondError maps service errors to HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	var submitErr *form.SubmitError
	var validationErrs form.ValidationErrors

	switch {
	case errors.As(err, &submitErr):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: submitErr.Message, Fields: submitErr.Errors.ByField()})
		return
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error(), Fields: validationErrs.ByField()})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, Response{Success: false, Error: "internal server error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case service.IsAuthError(err):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrVoucherNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrUnknownVoucherType):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrGuardFailed),
		errors.Is(err, workflow.ErrInvalidState),
		errors.Is(err, service.ErrCodeAlreadyGenerated),
		errors.Is(err, service.ErrNotReturned),
		errors.Is(err, service.ErrNotPaid),
		errors.Is(err, service.ErrNotApproved),
		errors.Is(err, service.ErrAlreadyAudited):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidApproval),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrNotPettyCash),
		errors.Is(err, service.ErrCodeMismatch),
		errors.Is(err, service.ErrEmptyBatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// mayViewPIN reports whether user may read data owned by pin
func mayViewPIN(user *entity.User, pin string) bool {
	return user.PIN == pin || user.Role != entity.RoleUser
}
