package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/voucher-flow/internal/application/dispatcher"
	"github.com/garyjia/voucher-flow/internal/domain/catalog"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/domain/event"
	"github.com/garyjia/voucher-flow/internal/infrastructure/persistence/repository"
	"github.com/garyjia/voucher-flow/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/voucher-flow/migrations"
	"github.com/garyjia/voucher-flow/pkg/database"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type eventRecorder struct {
	mu     sync.Mutex
	events []*event.Event
}

func (r *eventRecorder) handle(_ context.Context, evt *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *eventRecorder) types() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db            *sqlite.DB
	catalog       *catalog.Catalog
	users         *repository.UserRepository
	auth          AuthService
	cart          CartService
	forms         FormService
	ledger        LedgerService
	notifications NotificationService
	vouchers      VoucherService
	recorder      *eventRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()

	raw, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "service.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	require.NoError(t, database.NewMigrator(raw, logger).Run(migrations.FS))

	db := sqlite.NewDB(raw.DB, logger)
	cat, err := catalog.Default()
	require.NoError(t, err)

	f := &fixture{db: db, catalog: cat, recorder: &eventRecorder{}}
	f.users = repository.NewUserRepository(db.DB, logger)
	ledgerRepo := repository.NewLedgerRepository(db, logger)

	f.auth = NewAuthService(f.users, AuthConfig{Secret: "test-secret", Issuer: "voucher-flow"}, nopLogger{})
	f.cart = NewCartService(cat, nopLogger{})
	f.forms = NewFormService(cat, f.cart, nopLogger{})
	f.ledger = NewLedgerService(ledgerRepo, f.users, cat, nopLogger{})
	f.notifications = NewNotificationService(repository.NewNotificationRepository(db.DB, logger), nopLogger{})

	d := dispatcher.NewDispatcher()
	d.SubscribeAll("recorder", f.recorder.handle)

	f.vouchers = NewVoucherService(VoucherDeps{
		Vouchers:      repository.NewVoucherRepository(db.DB, logger),
		LedgerEntries: ledgerRepo,
		Ledger:        f.ledger,
		Notifications: f.notifications,
		Cart:          f.cart,
		Catalog:       cat,
		TxManager:     db,
		Dispatcher:    d,
	}, nopLogger{})

	return f
}

// as returns a context authenticated as the user with pin
func (f *fixture) as(t *testing.T, pin string, role entity.Role) context.Context {
	t.Helper()
	u := &entity.User{PIN: pin, Name: "ব্যবহারকারী " + pin, Username: "u" + pin, Role: role, CreatedAt: time.Now()}
	require.NoError(t, f.users.Upsert(context.Background(), u))
	return WithCurrentUser(context.Background(), u)
}

func (f *fixture) submit(t *testing.T, ctx context.Context, voucherTypeID string, data map[string]any) *entity.Voucher {
	t.Helper()
	item, _, err := f.forms.SubmitToCart(ctx, voucherTypeID, data)
	require.NoError(t, err)
	vouchers, err := f.vouchers.SubmitCart(ctx, []string{item.ID})
	require.NoError(t, err)
	require.Len(t, vouchers, 1)
	return vouchers[0]
}

func adjustmentData(amount any) map[string]any {
	return map[string]any{
		"branch":      "br-001",
		"expenseDate": "2025-02-03",
		"description": "খাতা ও কলম",
		"amount":      amount,
	}
}

func demandData(amount any) map[string]any {
	return map[string]any{
		"branch":     "br-002",
		"purpose":    "অনুষ্ঠানের খরচ",
		"amount":     amount,
		"dateNeeded": "2025-01-30",
	}
}
