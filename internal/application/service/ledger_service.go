package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/voucher-flow/internal/application/port"
	"github.com/garyjia/voucher-flow/internal/domain/catalog"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/pkg/utils"
)

// LedgerService manages the per-PIN petty cash ledgers. A positive balance
// means the user owes the institution; a negative one means the institution
// owes the user.
type LedgerService interface {
	Append(ctx context.Context, pin string, entry *entity.LedgerEntry) error
	Balance(ctx context.Context, pin string) (float64, error)
	Ledger(ctx context.Context, pin string) ([]*entity.LedgerEntry, error)
	// RecordAdHocPayment books a direct disbursement made outside the
	// voucher pipeline
	RecordAdHocPayment(ctx context.Context, pin string, amount float64, branch, description string) (*entity.LedgerEntry, error)
	// ExportStatement renders the ledger of pin as an xlsx workbook
	ExportStatement(ctx context.Context, pin string) ([]byte, error)
}

type ledgerServiceImpl struct {
	repo    port.LedgerRepository
	users   port.UserRepository
	catalog *catalog.Catalog
	logger  Logger
	now     func() time.Time
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(repo port.LedgerRepository, users port.UserRepository, cat *catalog.Catalog, logger Logger) LedgerService {
	return &ledgerServiceImpl{
		repo:    repo,
		users:   users,
		catalog: cat,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *ledgerServiceImpl) Append(ctx context.Context, pin string, entry *entity.LedgerEntry) error {
	entry.UserPIN = pin
	if entry.Date.IsZero() {
		entry.Date = s.now()
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to append ledger entry", "pin", pin, "kind", entry.Kind, "error", err)
		return err
	}

	s.logger.Info("Ledger entry appended",
		"pin", pin,
		"kind", entry.Kind,
		"voucher_id", entry.VoucherID,
		"debit", entry.Debit,
		"credit", entry.Credit,
		"balance", entry.Balance,
	)
	return nil
}

func (s *ledgerServiceImpl) Balance(ctx context.Context, pin string) (float64, error) {
	entries, err := s.repo.ListByPIN(ctx, pin)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	return entries[len(entries)-1].Balance, nil
}

func (s *ledgerServiceImpl) Ledger(ctx context.Context, pin string) ([]*entity.LedgerEntry, error) {
	return s.repo.ListByPIN(ctx, pin)
}

func (s *ledgerServiceImpl) RecordAdHocPayment(ctx context.Context, pin string, amount float64, branch, description string) (*entity.LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	user, err := s.users.GetByPIN(ctx, pin)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, pin)
	}

	entry := &entity.LedgerEntry{
		Branch:      branch,
		Type:        "সরাসরি প্রদান",
		Debit:       amount,
		Description: description,
		Kind:        entity.LedgerKindAdHoc,
	}
	if err := s.Append(ctx, user.PIN, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

const statementSheet = "লেজার"

var statementHeader = []any{"তারিখ", "শাখা", "ধরন", "বিবরণ", "ডেবিট", "ক্রেডিট", "ব্যালেন্স"}

func (s *ledgerServiceImpl) ExportStatement(ctx context.Context, pin string) ([]byte, error) {
	user, err := s.users.GetByPIN(ctx, pin)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, pin)
	}

	entries, err := s.repo.ListByPIN(ctx, pin)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), statementSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	title := fmt.Sprintf("পেটি ক্যাশ লেজার: %s (পিন %s)", user.Name, user.PIN)
	if err := f.SetCellValue(statementSheet, "A1", title); err != nil {
		return nil, fmt.Errorf("failed to write title: %w", err)
	}
	if err := f.SetSheetRow(statementSheet, "A3", &statementHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range entries {
		row := []any{
			e.Date.Format("2006-01-02"),
			s.catalog.BranchName(e.Branch),
			e.Type,
			e.Description,
			utils.FormatTaka(e.Debit),
			utils.FormatTaka(e.Credit),
			utils.FormatTaka(e.Balance),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(statementSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	var balance float64
	if len(entries) > 0 {
		balance = entries[len(entries)-1].Balance
	}
	totalCell, err := excelize.CoordinatesToCellName(6, len(entries)+5)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(statementSheet, totalCell, &[]any{"বর্তমান ব্যালেন্স", utils.FormatTaka(balance)}); err != nil {
		return nil, fmt.Errorf("failed to write balance: %w", err)
	}
	if err := f.SetColWidth(statementSheet, "A", "G", 18); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render statement: %w", err)
	}

	s.logger.Info("Ledger statement exported", "pin", pin, "entries", len(entries))
	return buf.Bytes(), nil
}
