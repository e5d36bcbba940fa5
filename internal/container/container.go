package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/voucher-flow/internal/application/dispatcher"
	"github.com/garyjia/voucher-flow/internal/application/port"
	"github.com/garyjia/voucher-flow/internal/application/service"
	"github.com/garyjia/voucher-flow/internal/domain/catalog"
	"github.com/garyjia/voucher-flow/internal/infrastructure/persistence/sqlite"
	httpapi "github.com/garyjia/voucher-flow/internal/interfaces/http"
	"github.com/garyjia/voucher-flow/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// It follows Clean Architecture principles with ordered initialization
// and reverse-order teardown.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	database     *database.DB
	db           *sqlite.DB
	repositories *RepositoryBundle

	// Application
	catalog    *catalog.Catalog
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	// Interfaces
	server *httpapi.Server

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Voucher      port.VoucherRepository
	Ledger       port.LedgerRepository
	User         port.UserRepository
	Notification port.NotificationRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Auth         service.AuthService
	Cart         service.CartService
	Form         service.FormService
	Ledger       service.LedgerService
	Notification service.NotificationService
	Voucher      service.VoucherService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database and repositories
// 2. Voucher catalog
// 3. Event dispatcher
// 4. Application services and the seeded staff directory
// 5. HTTP server
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	cat, err := ProvideCatalog(c.config.CatalogPath, c.logger)
	if err != nil {
		return err
	}
	c.catalog = cat

	if c.dispatcher, err = ProvideDispatcher(c.logger); err != nil {
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	c.logger.Info("Dispatcher initialized")

	if err := c.initServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	c.server = httpapi.NewServer(httpapi.ServerConfig{
		Host:         c.config.Server.Host,
		Port:         c.config.Server.Port,
		ReadTimeout:  c.config.Server.ReadTimeout,
		WriteTimeout: c.config.Server.WriteTimeout,
	}, httpapi.Services{
		Auth:          c.services.Auth,
		Forms:         c.services.Form,
		Cart:          c.services.Cart,
		Vouchers:      c.services.Voucher,
		Ledger:        c.services.Ledger,
		Notifications: c.services.Notification,
	}, &zapLoggerAdapter{logger: c.logger})

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			c.logger.Error("Failed to stop HTTP server", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	if c.database != nil {
		if err := c.database.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	check := func(name string, ok bool, message string) {
		status.Components[name] = ComponentHealth{Healthy: ok, Message: message}
		if !ok {
			status.Overall = false
		}
	}

	switch {
	case c.database == nil:
		check("database", false, "not initialized")
	default:
		if err := c.database.Ping(); err != nil {
			check("database", false, fmt.Sprintf("ping failed: %v", err))
		} else {
			check("database", true, "")
		}
	}

	check("repositories", c.repositories != nil, notInitialized(c.repositories != nil))
	check("catalog", c.catalog != nil, notInitialized(c.catalog != nil))
	check("dispatcher", c.dispatcher != nil, notInitialized(c.dispatcher != nil))
	check("services", c.services != nil, notInitialized(c.services != nil))

	return status
}

func notInitialized(ok bool) string {
	if ok {
		return ""
	}
	return "not initialized"
}

func (c *Container) initDatabase() error {
	bundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}

	c.database = bundle.DB
	c.db = bundle.TransactionMgr

	repos, err := ProvideRepositories(c.db, c.logger)
	if err != nil {
		c.database.Close()
		return err
	}

	c.repositories = repos
	return nil
}

func (c *Container) initServices(ctx context.Context) error {
	services, err := ProvideServices(&ServiceDeps{
		Repos:      c.repositories,
		TxManager:  c.db,
		Catalog:    c.catalog,
		Dispatcher: c.dispatcher,
		Auth:       c.config.Auth,
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services

	if c.config.SeedUsers {
		if err := services.Auth.Seed(ctx, service.DefaultSeedUsers()); err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
	}
	return nil
}

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.db
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Catalog returns the voucher type catalog.
func (c *Container) Catalog() *catalog.Catalog {
	return c.catalog
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Server returns the HTTP server.
func (c *Container) Server() *httpapi.Server {
	return c.server
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the key-value Logger interfaces of
// the service, dispatcher and http packages.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...any) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...any) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
