package event

// Type identifies a voucher lifecycle event
type Type string

const (
	TypeVoucherSubmitted       Type = "voucher.submitted"
	TypeVoucherStatusChanged   Type = "voucher.status_changed"
	TypeVoucherPaid            Type = "voucher.paid"
	TypePettyCashApproved      Type = "petty_cash.approved"
	TypePettyCashCodeGenerated Type = "petty_cash.code_generated"
)

func (t Type) String() string {
	return string(t)
}

// IsValid reports whether t is one of the defined event types
func (t Type) IsValid() bool {
	switch t {
	case TypeVoucherSubmitted,
		TypeVoucherStatusChanged,
		TypeVoucherPaid,
		TypePettyCashApproved,
		TypePettyCashCodeGenerated:
		return true
	default:
		return false
	}
}
