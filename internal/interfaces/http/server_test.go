package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/voucher-flow/internal/application/dispatcher"
	"github.com/garyjia/voucher-flow/internal/application/service"
	"github.com/garyjia/voucher-flow/internal/domain/catalog"
	"github.com/garyjia/voucher-flow/internal/infrastructure/persistence/repository"
	"github.com/garyjia/voucher-flow/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/voucher-flow/migrations"
	"github.com/garyjia/voucher-flow/pkg/database"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	zl := zap.NewNop()

	raw, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "http.db")}, zl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	require.NoError(t, database.NewMigrator(raw, zl).Run(migrations.FS))
	db := sqlite.NewDB(raw.DB, zl)

	cat, err := catalog.Default()
	require.NoError(t, err)

	users := repository.NewUserRepository(db.DB, zl)
	ledgerRepo := repository.NewLedgerRepository(db, zl)
	auth := service.NewAuthService(users, service.AuthConfig{Secret: "http-test"}, nopLogger{})
	require.NoError(t, auth.Seed(context.Background(), service.DefaultSeedUsers()))

	cart := service.NewCartService(cat, nopLogger{})
	ledger := service.NewLedgerService(ledgerRepo, users, cat, nopLogger{})
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db.DB, zl), nopLogger{})
	vouchers := service.NewVoucherService(service.VoucherDeps{
		Vouchers:      repository.NewVoucherRepository(db.DB, zl),
		LedgerEntries: ledgerRepo,
		Ledger:        ledger,
		Notifications: notifications,
		Cart:          cart,
		Catalog:       cat,
		TxManager:     db,
		Dispatcher:    dispatcher.NewDispatcher(),
	}, nopLogger{})

	return NewServer(DefaultServerConfig(), Services{
		Auth:          auth,
		Forms:         service.NewFormService(cat, cart, nopLogger{}),
		Cart:          cart,
		Vouchers:      vouchers,
		Ledger:        ledger,
		Notifications: notifications,
	}, nopLogger{})
}

type apiResponse struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

func call(t *testing.T, s *Server, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var resp apiResponse
	if w.Header().Get("Content-Type") != xlsxContentType {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func login(t *testing.T, s *Server, pin string) string {
	t.Helper()
	w, resp := call(t, s, http.MethodPost, "/api/auth/login", "", obj{"identifier": pin, "password": pin})
	require.Equal(t, http.StatusOK, w.Code, resp.Error)

	var data LoginResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.Token
}

type obj = map[string]any

func TestHealthAndAuth(t *testing.T) {
	s := newTestServer(t)

	w, resp := call(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, _ = call(t, s, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(t, s, http.MethodGet, "/api/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/auth/login", "", obj{"identifier": "1001", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/auth/login", "", obj{"identifier": "1001", "password": "1001", "role": "audit"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/auth/login", "", obj{"identifier": "1001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := login(t, s, "1001")
	w, resp = call(t, s, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me MeResponse
	require.NoError(t, json.Unmarshal(resp.Data, &me))
	assert.Equal(t, "1001", me.User.PIN)
	assert.Zero(t, me.CartCount)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "1001")

	w, _ := call(t, s, http.MethodGet, "/api/voucher-types", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, s, http.MethodGet, "/api/voucher-types/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp := call(t, s, http.MethodPost, "/api/voucher-types/conveyance/form", token, obj{"values": obj{"meal": "দুপুর"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), "mealAmount")

	w, resp = call(t, s, http.MethodPost, "/api/voucher-types/conveyance/validate", token, obj{"values": obj{}})
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "amount")
}

func TestVoucherFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	user := login(t, s, "1001")
	other := login(t, s, "1002")
	mentor := login(t, s, "2001")
	payment := login(t, s, "3001")
	audit := login(t, s, "4001")

	w, resp := call(t, s, http.MethodPost, "/api/cart", user, obj{
		"voucher_type_id": "petty-cash-adjustment",
		"values":          obj{"branch": "br-001"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Fields, "amount")

	w, resp = call(t, s, http.MethodPost, "/api/cart", user, obj{
		"voucher_type_id": "petty-cash-adjustment",
		"values": obj{
			"branch":      "br-001",
			"expenseDate": "2025-02-03",
			"description": "খাতা",
			"amount":      "৩০০",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)

	w, resp = call(t, s, http.MethodPost, "/api/cart/submit", user, nil)
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)
	var submitted []VoucherResponse
	require.NoError(t, json.Unmarshal(resp.Data, &submitted))
	require.Len(t, submitted, 1)
	id := submitted[0].ID

	w, _ = call(t, s, http.MethodPost, "/api/cart/submit", user, obj{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "an empty cart has nothing to submit")

	w, _ = call(t, s, http.MethodGet, "/api/vouchers/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/status", user, obj{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/status", mentor, obj{"status": "paid"})
	assert.Equal(t, http.StatusForbidden, w.Code, "mentors do not pay")

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/status", payment, obj{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/status", mentor, obj{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/status", mentor, obj{"status": "approved"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/audit", audit, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, resp = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/status", payment, obj{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code)
	var paid VoucherResponse
	require.NoError(t, json.Unmarshal(resp.Data, &paid))
	assert.Equal(t, "paid", string(paid.Status))
	assert.Empty(t, paid.AllowedTransitions)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/audit", audit, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/audit", audit, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "a voucher is audited once")

	w, resp = call(t, s, http.MethodGet, "/api/vouchers?status=paid", mentor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), id)

	w, resp = call(t, s, http.MethodGet, "/api/vouchers?submitter=1001", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(resp.Data), id, "users only list their own vouchers")

	w, resp = call(t, s, http.MethodGet, "/api/ledger/1001", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger LedgerResponse
	require.NoError(t, json.Unmarshal(resp.Data, &ledger))
	assert.Equal(t, -300.0, ledger.Balance)

	w, _ = call(t, s, http.MethodGet, "/api/ledger/1001", other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = call(t, s, http.MethodGet, "/api/ledger/1001/export", payment, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())
}

func TestPettyCashOverHTTP(t *testing.T) {
	s := newTestServer(t)
	user := login(t, s, "1001")
	mentor := login(t, s, "2001")
	payment := login(t, s, "3001")

	w, resp := call(t, s, http.MethodPost, "/api/cart", user, obj{
		"voucher_type_id": "petty-cash-demand",
		"values":          obj{"branch": "br-002", "purpose": "অনুষ্ঠান", "amount": 1000, "dateNeeded": "2025-01-30"},
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)

	w, resp = call(t, s, http.MethodPost, "/api/cart/submit", user, obj{})
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)
	var submitted []VoucherResponse
	require.NoError(t, json.Unmarshal(resp.Data, &submitted))
	id := submitted[0].ID

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/petty-cash/approve", user, obj{"amount": 800, "expected_adjustment_date": "2025-02-01"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/petty-cash/approve", mentor, obj{"amount": 0, "expected_adjustment_date": "2025-02-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/petty-cash/approve", mentor, obj{"amount": 800, "expected_adjustment_date": "2025-02-01"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/petty-cash/code", user, nil)
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)
	var code CodeResponse
	require.NoError(t, json.Unmarshal(resp.Data, &code))

	w, resp = call(t, s, http.MethodGet, "/api/notifications/codes", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), code.Code)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/pay", payment, obj{"code": "0000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, s, http.MethodPost, "/api/vouchers/"+id+"/pay", payment, obj{"code": code.Code})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = call(t, s, http.MethodPost, "/api/ledger/1001/payments", payment, obj{"amount": 200, "branch": "br-002"})
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)

	w, _ = call(t, s, http.MethodPost, "/api/ledger/1001/payments", user, obj{"amount": 200, "branch": "br-002"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = call(t, s, http.MethodGet, "/api/ledger/1001", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger LedgerResponse
	require.NoError(t, json.Unmarshal(resp.Data, &ledger))
	assert.Equal(t, 1000.0, ledger.Balance)
	assert.Len(t, ledger.Entries, 2)
}
