// Package http provides the REST adapter for the voucher services.
// It is a thin layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/voucher-flow/internal/application/service"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services are the application services exposed over HTTP
type Services struct {
	Auth          service.AuthService
	Forms         service.FormService
	Cart          service.CartService
	Vouchers      service.VoucherService
	Ledger        service.LedgerService
	Notifications service.NotificationService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := NewHandlers(s.services, s.logger)

	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api")
	api.POST("/auth/login", h.Login)

	authed := api.Group("", authMiddleware(s.services.Auth))
	{
		authed.GET("/me", h.Me)

		authed.GET("/voucher-types", h.ListVoucherTypes)
		authed.GET("/voucher-types/:id", h.GetVoucherType)
		authed.POST("/voucher-types/:id/form", h.DescribeForm)
		authed.POST("/voucher-types/:id/validate", h.ValidateForm)

		authed.GET("/cart", h.ListCart)
		authed.POST("/cart", h.AddToCart)
		authed.DELETE("/cart", h.ClearCart)
		authed.PATCH("/cart/:id", h.EditCartItem)
		authed.DELETE("/cart/:id", h.RemoveCartItem)
		authed.POST("/cart/submit", h.SubmitCart)

		authed.GET("/vouchers", h.ListVouchers)
		authed.GET("/vouchers/:id", h.GetVoucher)
		authed.POST("/vouchers/:id/status", requireRole(entity.RoleMentor, entity.RolePayment), h.SetVoucherStatus)
		authed.POST("/vouchers/:id/petty-cash/approve", requireRole(entity.RoleMentor), h.ApprovePettyCash)
		authed.POST("/vouchers/:id/petty-cash/code", h.GeneratePettyCashCode)
		authed.POST("/vouchers/:id/pay", requireRole(entity.RolePayment), h.PayPettyCash)
		authed.POST("/vouchers/:id/audit", requireRole(entity.RoleAudit), h.AuditVoucher)
		authed.POST("/vouchers/:id/resubmit", h.ResubmitVoucher)
		authed.POST("/vouchers/:id/corrected", h.MarkCorrected)

		authed.GET("/ledger/:pin", h.GetLedger)
		authed.GET("/ledger/:pin/export", h.ExportLedger)
		authed.POST("/ledger/:pin/payments", requireRole(entity.RolePayment), h.RecordPayment)

		authed.GET("/notifications/codes", h.ListCodes)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
