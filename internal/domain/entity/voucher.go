package entity

import "time"

// CartItem is a drafted voucher waiting for bulk submission
type CartItem struct {
	ID                string         `json:"id"`
	VoucherTypeID     string         `json:"voucher_type_id"`
	VoucherHeading    string         `json:"voucher_heading"`
	VoucherNumber     string         `json:"voucher_number"`
	Data              map[string]any `json:"data"`
	CreatedAt         time.Time      `json:"created_at"`
	OriginalVoucherID string         `json:"original_voucher_id,omitempty"`
	CorrectionCount   int            `json:"correction_count"`
}

// IsPettyCashDemand reports whether the item requests a petty cash advance
func (c *CartItem) IsPettyCashDemand() bool {
	return c.VoucherTypeID == VoucherTypePettyCashDemand
}

// Submitter is the snapshot of the submitting user taken at submission time.
// It is never re-derived from the user profile.
type Submitter struct {
	PIN         string `json:"pin"`
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Role        Role   `json:"role"`
}

// Voucher is a submitted voucher moving through the approval pipeline
type Voucher struct {
	CartItem

	Status      Status    `json:"status"`
	Comment     string    `json:"comment,omitempty"`
	Submitter   Submitter `json:"submitter"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Petty cash extension, meaningful for petty-cash-demand vouchers only
	ApprovedAmount         *float64   `json:"approved_amount,omitempty"`
	ExpectedAdjustmentDate *time.Time `json:"expected_adjustment_date,omitempty"`
	PettyCashCode          string     `json:"-"`
	IsCodeGenerated        bool       `json:"is_code_generated"`

	AuditedBy string     `json:"audited_by,omitempty"`
	AuditedAt *time.Time `json:"audited_at,omitempty"`
}

// Amount returns the approved amount or zero
func (v *Voucher) Amount() float64 {
	if v.ApprovedAmount == nil {
		return 0
	}
	return *v.ApprovedAmount
}
