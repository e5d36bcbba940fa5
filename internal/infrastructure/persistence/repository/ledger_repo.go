package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/voucher-flow/internal/application/port"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/infrastructure/persistence/sqlite"
)

// LedgerRepository implements port.LedgerRepository
type LedgerRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *sqlite.DB, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

const ledgerColumns = `id, user_pin, entry_date, branch, type, debit, credit, balance, description, voucher_id, kind`

// Append inserts entry and rewrites the balance of every entry of its PIN
func (r *LedgerRepository) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context) error {
		conn := sqlite.Conn(ctx, r.db.DB)

		result, err := conn.ExecContext(ctx, `
			INSERT INTO ledger_entries (user_pin, entry_date, branch, type, debit, credit, balance, description, voucher_id, kind)
			VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
			entry.UserPIN, entry.Date, entry.Branch, entry.Type,
			entry.Debit, entry.Credit, entry.Description, entry.VoucherID, entry.Kind,
		)
		if err != nil {
			r.logger.Error("Failed to append ledger entry", zap.String("user_pin", entry.UserPIN), zap.Error(err))
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}
		if entry.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		entries, err := r.ListByPIN(ctx, entry.UserPIN)
		if err != nil {
			return err
		}
		entity.RecomputeBalances(entries)

		for _, e := range entries {
			if _, err := conn.ExecContext(ctx,
				`UPDATE ledger_entries SET balance = ? WHERE id = ?`, e.Balance, e.ID,
			); err != nil {
				return fmt.Errorf("failed to update balance of entry %d: %w", e.ID, err)
			}
			if e.ID == entry.ID {
				entry.Balance = e.Balance
			}
		}
		return nil
	})
}

// ListByPIN returns the ledger of pin in append order
func (r *LedgerRepository) ListByPIN(ctx context.Context, pin string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE user_pin = ? ORDER BY id ASC`

	rows, err := sqlite.Conn(ctx, r.db.DB).QueryContext(ctx, query, pin)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger of %s: %w", pin, err)
	}
	defer rows.Close()

	entries := make([]*entity.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HasEntry reports whether voucherID produced an entry of kind
func (r *LedgerRepository) HasEntry(ctx context.Context, voucherID string, kind entity.LedgerKind) (bool, error) {
	var n int
	err := sqlite.Conn(ctx, r.db.DB).QueryRowContext(ctx,
		`SELECT COUNT(1) FROM ledger_entries WHERE voucher_id = ? AND kind = ?`, voucherID, kind,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger entry: %w", err)
	}
	return n > 0, nil
}

// FindByVoucher returns the first entry of kind for voucherID
func (r *LedgerRepository) FindByVoucher(ctx context.Context, voucherID string, kind entity.LedgerKind) (*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE voucher_id = ? AND kind = ? ORDER BY id ASC LIMIT 1`

	e, err := scanLedgerEntry(sqlite.Conn(ctx, r.db.DB).QueryRowContext(ctx, query, voucherID, kind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entry: %w", err)
	}
	return e, nil
}

func scanLedgerEntry(row rowScanner) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	err := row.Scan(
		&e.ID,
		&e.UserPIN,
		&e.Date,
		&e.Branch,
		&e.Type,
		&e.Debit,
		&e.Credit,
		&e.Balance,
		&e.Description,
		&e.VoucherID,
		&e.Kind,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Verify interface compliance
var _ port.LedgerRepository = (*LedgerRepository)(nil)
