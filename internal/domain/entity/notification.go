package entity

import "time"

// CodeNotification delivers a generated petty cash code to its owner's inbox
type CodeNotification struct {
	ID        int64      `json:"id"`
	UserPIN   string     `json:"user_pin"`
	VoucherID string     `json:"voucher_id"`
	Code      string     `json:"code"`
	Amount    float64    `json:"amount"`
	Used      bool       `json:"used"`
	CreatedAt time.Time  `json:"created_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}
