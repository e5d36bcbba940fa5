package container

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/garyjia/voucher-flow/internal/application/dispatcher"
	"github.com/garyjia/voucher-flow/internal/application/service"
	"github.com/garyjia/voucher-flow/internal/domain/catalog"
	"github.com/garyjia/voucher-flow/internal/domain/event"
	"github.com/garyjia/voucher-flow/internal/infrastructure/persistence/repository"
	"github.com/garyjia/voucher-flow/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/voucher-flow/migrations"
	"github.com/garyjia/voucher-flow/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// ProvideDatabase opens the database and runs the embedded migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Voucher:      repository.NewVoucherRepository(db.DB, logger),
		Ledger:       repository.NewLedgerRepository(db, logger),
		User:         repository.NewUserRepository(db.DB, logger),
		Notification: repository.NewNotificationRepository(db.DB, logger),
	}, nil
}

// ProvideCatalog loads the voucher type catalog.
func ProvideCatalog(path string, logger *zap.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	source := path
	if source == "" {
		source = "built-in"
	}
	logger.Info("Voucher catalog loaded",
		zap.String("source", source),
		zap.Int("voucher_types", len(cat.Flatten())),
		zap.Int("branches", len(cat.Branches())),
	)
	return cat, nil
}

// ProvideDispatcher creates the event dispatcher and subscribes the
// lifecycle event log.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	d := dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: logger}))
	d.SubscribeAll("event-log", func(_ context.Context, evt *event.Event) error {
		logger.Info("Voucher event",
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.Type.String()),
			zap.String("voucher_id", evt.VoucherID),
			zap.String("actor_pin", evt.ActorPIN),
			zap.String("correlation_id", evt.CorrelationID),
			zap.Any("payload", evt.Payload),
		)
		return nil
	})
	return d, nil
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  *sqlite.DB
	Catalog    *catalog.Catalog
	Dispatcher dispatcher.Dispatcher
	Auth       AuthConfig
	Logger     *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil || deps.TxManager == nil || deps.Catalog == nil {
		return nil, fmt.Errorf("service dependencies are incomplete")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	logger := &zapLoggerAdapter{logger: deps.Logger}

	cart := service.NewCartService(deps.Catalog, logger)
	ledger := service.NewLedgerService(deps.Repos.Ledger, deps.Repos.User, deps.Catalog, logger)
	notifications := service.NewNotificationService(deps.Repos.Notification, logger)

	return &ServiceBundle{
		Auth: service.NewAuthService(deps.Repos.User, service.AuthConfig{
			Secret:   deps.Auth.Secret,
			Issuer:   deps.Auth.Issuer,
			TokenTTL: deps.Auth.TokenTTL,
		}, logger),
		Cart:         cart,
		Form:         service.NewFormService(deps.Catalog, cart, logger),
		Ledger:       ledger,
		Notification: notifications,
		Voucher: service.NewVoucherService(service.VoucherDeps{
			Vouchers:      deps.Repos.Voucher,
			LedgerEntries: deps.Repos.Ledger,
			Ledger:        ledger,
			Notifications: notifications,
			Cart:          cart,
			Catalog:       deps.Catalog,
			TxManager:     deps.TxManager,
			Dispatcher:    deps.Dispatcher,
		}, logger),
	}, nil
}
