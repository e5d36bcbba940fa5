package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/voucher-flow/internal/application/port"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/infrastructure/persistence/sqlite"
)

// VoucherRepository implements port.VoucherRepository
type VoucherRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVoucherRepository creates a new voucher repository
func NewVoucherRepository(db *sql.DB, logger *zap.Logger) *VoucherRepository {
	return &VoucherRepository{
		db:     db,
		logger: logger,
	}
}

const voucherColumns = `
	id, voucher_type_id, voucher_heading, voucher_number, data, created_at,
	original_voucher_id, correction_count, status, comment,
	submitted_by_pin, submitted_by_name, submitted_by_mobile,
	submitted_by_department, submitted_by_designation, submitted_by_role,
	submitted_at, updated_at, approved_amount, expected_adjustment_date,
	petty_cash_code, is_code_generated, audited_by, audited_at`

// Create inserts a submitted voucher
func (r *VoucherRepository) Create(ctx context.Context, v *entity.Voucher) error {
	data, err := json.Marshal(v.Data)
	if err != nil {
		return fmt.Errorf("failed to encode voucher data: %w", err)
	}

	query := `INSERT INTO vouchers (` + voucherColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = sqlite.Conn(ctx, r.db).ExecContext(ctx, query,
		v.ID,
		v.VoucherTypeID,
		v.VoucherHeading,
		v.VoucherNumber,
		string(data),
		v.CreatedAt,
		v.OriginalVoucherID,
		v.CorrectionCount,
		v.Status,
		v.Comment,
		v.Submitter.PIN,
		v.Submitter.Name,
		v.Submitter.Mobile,
		v.Submitter.Department,
		v.Submitter.Designation,
		v.Submitter.Role,
		v.SubmittedAt,
		v.UpdatedAt,
		nullFloat(v.ApprovedAmount),
		nullTime(v.ExpectedAdjustmentDate),
		v.PettyCashCode,
		v.IsCodeGenerated,
		v.AuditedBy,
		nullTime(v.AuditedAt),
	)
	if err != nil {
		r.logger.Error("Failed to create voucher", zap.String("voucher_id", v.ID), zap.Error(err))
		return fmt.Errorf("failed to create voucher: %w", err)
	}
	return nil
}

// Get retrieves a voucher by id
func (r *VoucherRepository) Get(ctx context.Context, id string) (*entity.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = ?`

	v, err := scanVoucher(sqlite.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voucher %s: %w", id, err)
	}
	return v, nil
}

// List returns the vouchers matching filter in submission order
func (r *VoucherRepository) List(ctx context.Context, filter port.VoucherFilter) ([]*entity.Voucher, error) {
	var (
		where []string
		args  []any
	)
	if filter.SubmitterPIN != "" {
		where = append(where, "submitted_by_pin = ?")
		args = append(args, filter.SubmitterPIN)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.VoucherTypeID != "" {
		where = append(where, "voucher_type_id = ?")
		args = append(args, filter.VoucherTypeID)
	}
	if filter.ExcludeCorrected {
		where = append(where, "status <> ?")
		args = append(args, entity.StatusCorrectedByUser)
	}

	query := `SELECT ` + voucherColumns + ` FROM vouchers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY submitted_at ASC, id ASC"

	rows, err := sqlite.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}
	defer rows.Close()

	vouchers := make([]*entity.Voucher, 0)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

// UpdateStatus sets status and comment
func (r *VoucherRepository) UpdateStatus(ctx context.Context, id string, status entity.Status, comment string) error {
	return r.update(ctx, id, "status = ?, comment = ?", status, comment)
}

// SetPettyCashApproval stores the approved amount and adjustment date
func (r *VoucherRepository) SetPettyCashApproval(ctx context.Context, id string, amount float64, adjustmentDate time.Time) error {
	return r.update(ctx, id, "approved_amount = ?, expected_adjustment_date = ?", amount, adjustmentDate)
}

// SetPettyCashCode stores code and flags it generated, unless a code was
// generated before
func (r *VoucherRepository) SetPettyCashCode(ctx context.Context, id, code string) (bool, error) {
	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, `
		UPDATE vouchers SET petty_cash_code = ?, is_code_generated = 1, updated_at = ?
		WHERE id = ? AND is_code_generated = 0`, code, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to set petty cash code", zap.String("voucher_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to set petty cash code of %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	v, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, fmt.Errorf("voucher %s: %w", id, sql.ErrNoRows)
	}
	return false, nil
}

// MarkAudited records the audit check
func (r *VoucherRepository) MarkAudited(ctx context.Context, id, auditorPIN string, at time.Time) error {
	return r.update(ctx, id, "audited_by = ?, audited_at = ?", auditorPIN, at)
}

func (r *VoucherRepository) update(ctx context.Context, id, set string, args ...any) error {
	query := `UPDATE vouchers SET ` + set + `, updated_at = ? WHERE id = ?`
	args = append(args, time.Now(), id)

	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update voucher", zap.String("voucher_id", id), zap.Error(err))
		return fmt.Errorf("failed to update voucher %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("voucher %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoucher(row rowScanner) (*entity.Voucher, error) {
	var (
		v              entity.Voucher
		data           string
		approvedAmount sql.NullFloat64
		adjustmentDate sql.NullTime
		auditedAt      sql.NullTime
	)

	err := row.Scan(
		&v.ID,
		&v.VoucherTypeID,
		&v.VoucherHeading,
		&v.VoucherNumber,
		&data,
		&v.CreatedAt,
		&v.OriginalVoucherID,
		&v.CorrectionCount,
		&v.Status,
		&v.Comment,
		&v.Submitter.PIN,
		&v.Submitter.Name,
		&v.Submitter.Mobile,
		&v.Submitter.Department,
		&v.Submitter.Designation,
		&v.Submitter.Role,
		&v.SubmittedAt,
		&v.UpdatedAt,
		&approvedAmount,
		&adjustmentDate,
		&v.PettyCashCode,
		&v.IsCodeGenerated,
		&v.AuditedBy,
		&auditedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Data = make(map[string]any)
	if err := json.Unmarshal([]byte(data), &v.Data); err != nil {
		return nil, fmt.Errorf("failed to decode voucher data: %w", err)
	}
	if approvedAmount.Valid {
		v.ApprovedAmount = &approvedAmount.Float64
	}
	if adjustmentDate.Valid {
		v.ExpectedAdjustmentDate = &adjustmentDate.Time
	}
	if auditedAt.Valid {
		v.AuditedAt = &auditedAt.Time
	}
	return &v, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Verify interface compliance
var _ port.VoucherRepository = (*VoucherRepository)(nil)
