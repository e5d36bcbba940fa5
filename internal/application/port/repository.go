package port

import (
	"context"
	"time"

	"github.com/garyjia/voucher-flow/internal/domain/entity"
)

// VoucherFilter narrows voucher listings. Zero fields match everything.
type VoucherFilter struct {
	SubmitterPIN  string
	Status        entity.Status
	VoucherTypeID string
	// ExcludeCorrected hides corrected_by_user tombstones
	ExcludeCorrected bool
}

// VoucherRepository persists submitted vouchers. Get returns (nil, nil) when
// the voucher does not exist.
type VoucherRepository interface {
	Create(ctx context.Context, v *entity.Voucher) error
	Get(ctx context.Context, id string) (*entity.Voucher, error)
	List(ctx context.Context, filter VoucherFilter) ([]*entity.Voucher, error)
	UpdateStatus(ctx context.Context, id string, status entity.Status, comment string) error
	SetPettyCashApproval(ctx context.Context, id string, amount float64, adjustmentDate time.Time) error
	// SetPettyCashCode stores the code and flags it generated. It reports
	// false and leaves the voucher untouched when a code already exists.
	SetPettyCashCode(ctx context.Context, id, code string) (bool, error)
	MarkAudited(ctx context.Context, id, auditorPIN string, at time.Time) error
}

// LedgerRepository persists the per-PIN petty cash ledgers
type LedgerRepository interface {
	// Append stores entry and recomputes every balance of its PIN from the
	// first entry, atomically.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	ListByPIN(ctx context.Context, pin string) ([]*entity.LedgerEntry, error)
	// HasEntry reports whether voucherID already produced an entry of kind
	HasEntry(ctx context.Context, voucherID string, kind entity.LedgerKind) (bool, error)
	// FindByVoucher returns the first entry of kind for voucherID or nil
	FindByVoucher(ctx context.Context, voucherID string, kind entity.LedgerKind) (*entity.LedgerEntry, error)
}

// UserRepository reads and seeds user profiles. Lookups return (nil, nil)
// on a miss.
type UserRepository interface {
	Upsert(ctx context.Context, u *entity.User) error
	GetByPIN(ctx context.Context, pin string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
}

// NotificationRepository is the generated code inbox
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.CodeNotification) error
	ListByPIN(ctx context.Context, pin string) ([]*entity.CodeNotification, error)
	// MarkUsed flags the unused notification of voucherID holding code;
	// false when none
	MarkUsed(ctx context.Context, pin, voucherID, code string, at time.Time) (bool, error)
}

// TransactionManager runs fn inside one database transaction carried by ctx
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
