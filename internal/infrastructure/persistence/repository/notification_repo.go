package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/voucher-flow/internal/application/port"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/infrastructure/persistence/sqlite"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new code inbox repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a code notification
func (r *NotificationRepository) Create(ctx context.Context, n *entity.CodeNotification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO code_notifications (user_pin, voucher_id, code, amount, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserPIN, n.VoucherID, n.Code, n.Amount, n.Used, n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create code notification", zap.String("user_pin", n.UserPIN), zap.Error(err))
		return fmt.Errorf("failed to create code notification: %w", err)
	}

	if n.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	return nil
}

// ListByPIN returns the inbox of pin, newest first
func (r *NotificationRepository) ListByPIN(ctx context.Context, pin string) ([]*entity.CodeNotification, error) {
	rows, err := sqlite.Conn(ctx, r.db).QueryContext(ctx, `
		SELECT id, user_pin, voucher_id, code, amount, used, created_at, used_at
		FROM code_notifications
		WHERE user_pin = ?
		ORDER BY id DESC`, pin)
	if err != nil {
		return nil, fmt.Errorf("failed to list code notifications: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.CodeNotification, 0)
	for rows.Next() {
		var (
			n      entity.CodeNotification
			usedAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.UserPIN, &n.VoucherID, &n.Code, &n.Amount, &n.Used, &n.CreatedAt, &usedAt); err != nil {
			return nil, fmt.Errorf("failed to scan code notification: %w", err)
		}
		if usedAt.Valid {
			n.UsedAt = &usedAt.Time
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// MarkUsed consumes the unused notification of pin for voucherID holding code
func (r *NotificationRepository) MarkUsed(ctx context.Context, pin, voucherID, code string, at time.Time) (bool, error) {
	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, `
		UPDATE code_notifications SET used = 1, used_at = ?
		WHERE id = (
			SELECT id FROM code_notifications
			WHERE user_pin = ? AND voucher_id = ? AND code = ? AND used = 0
			ORDER BY id DESC LIMIT 1
		)`, at, pin, voucherID, code)
	if err != nil {
		return false, fmt.Errorf("failed to mark code used: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
