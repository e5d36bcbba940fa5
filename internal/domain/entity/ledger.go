package entity

import "time"

// LedgerEntry is one row of a user's petty cash ledger. Balance is derived
// and recomputed over the whole sequence on every append.
type LedgerEntry struct {
	ID          int64      `json:"id"`
	UserPIN     string     `json:"user_pin"`
	Date        time.Time  `json:"date"`
	Branch      string     `json:"branch"`
	Type        string     `json:"type"`
	Debit       float64    `json:"debit"`
	Credit      float64    `json:"credit"`
	Balance     float64    `json:"balance"`
	Description string     `json:"description"`
	VoucherID   string     `json:"voucher_id,omitempty"`
	Kind        LedgerKind `json:"kind"`
}

// RecomputeBalances rewrites Balance of every entry from the start of the
// sequence: balance[i] = balance[i-1] + debit[i] - credit[i].
func RecomputeBalances(entries []*LedgerEntry) {
	var running float64
	for _, e := range entries {
		running += e.Debit - e.Credit
		e.Balance = running
	}
}
