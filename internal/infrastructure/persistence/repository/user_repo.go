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

// UserRepository implements port.UserRepository
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `pin, name, username, mobile_number, department, designation, password_hash, role, created_at`

// Upsert inserts u or replaces the profile stored under its PIN
func (r *UserRepository) Upsert(ctx context.Context, u *entity.User) error {
	_, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO users (pin, name, username, mobile_number, department, designation, password_hash, role)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pin) DO UPDATE SET
			name = excluded.name,
			username = excluded.username,
			mobile_number = excluded.mobile_number,
			department = excluded.department,
			designation = excluded.designation,
			password_hash = excluded.password_hash,
			role = excluded.role`,
		u.PIN, u.Name, u.Username, u.MobileNumber, u.Department, u.Designation, u.PasswordHash, u.Role,
	)
	if err != nil {
		r.logger.Error("Failed to upsert user", zap.String("pin", u.PIN), zap.Error(err))
		return fmt.Errorf("failed to upsert user %s: %w", u.PIN, err)
	}
	return nil
}

// GetByPIN retrieves a user by PIN
func (r *UserRepository) GetByPIN(ctx context.Context, pin string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE pin = ?`, pin)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// List returns every user ordered by PIN
func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := sqlite.Conn(ctx, r.db).QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY pin`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u, err := scanUser(sqlite.Conn(ctx, r.db).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		u         entity.User
		createdAt sql.NullTime
	)
	err := row.Scan(
		&u.PIN,
		&u.Name,
		&u.Username,
		&u.MobileNumber,
		&u.Department,
		&u.Designation,
		&u.PasswordHash,
		&u.Role,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = createdAt.Time
	return &u, nil
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
