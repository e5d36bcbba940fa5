package entity

// Status is the lifecycle state of a submitted voucher
type Status string

const (
	StatusPending         Status = "pending"
	StatusApproved        Status = "approved"
	StatusSentBack        Status = "sent_back"
	StatusRejected        Status = "rejected"
	StatusPaid            Status = "paid"
	StatusCorrectedByUser Status = "corrected_by_user"
)

// IsValid reports whether s is one of the known statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusSentBack, StatusRejected, StatusPaid, StatusCorrectedByUser:
		return true
	}
	return false
}

// IsReturned reports whether the voucher was sent back or rejected
func (s Status) IsReturned() bool {
	return s == StatusSentBack || s == StatusRejected
}

// Role is the approval-pipeline role of a user
type Role string

const (
	RoleUser    Role = "user"
	RoleMentor  Role = "mentor"
	RolePayment Role = "payment"
	RoleAudit   Role = "audit"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleMentor, RolePayment, RoleAudit:
		return true
	}
	return false
}

// Voucher type ids with special lifecycle handling
const (
	VoucherTypePettyCashDemand     = "petty-cash-demand"
	VoucherTypePettyCashAdjustment = "petty-cash-adjustment"
)

// LedgerKind identifies which lifecycle step produced a ledger entry
type LedgerKind string

const (
	LedgerKindWithdrawal LedgerKind = "withdrawal" // petty cash paid out
	LedgerKindAdjustment LedgerKind = "adjustment" // expense voucher counted against the balance
	LedgerKindReversal   LedgerKind = "reversal"   // adjustment undone on send back / reject
	LedgerKindAdHoc      LedgerKind = "ad_hoc"     // direct disbursement by the payment role
)

// NotAvailable is shown in place of reference data that cannot be resolved
const NotAvailable = "N/A"
