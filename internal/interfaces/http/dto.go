package http

import (
	"github.com/garyjia/voucher-flow/internal/domain/catalog"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/domain/form"
)

// LoginRequest is the body of POST /api/auth/login. Identifier is a PIN or
// a username.
type LoginRequest struct {
	Identifier string      `json:"identifier" binding:"required"`
	Password   string      `json:"password" binding:"required"`
	Role       entity.Role `json:"role" binding:"omitempty,oneof=user mentor payment audit"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

type MeResponse struct {
	User      *entity.User `json:"user"`
	Balance   float64      `json:"balance"`
	CartCount int          `json:"cart_count"`
}

// FormRequest carries the current values of a voucher form
type FormRequest struct {
	Values form.Values `json:"values"`
}

type AddToCartRequest struct {
	VoucherTypeID string      `json:"voucher_type_id" binding:"required"`
	Values        form.Values `json:"values" binding:"required"`
}

type AddToCartResponse struct {
	Item *entity.CartItem `json:"item"`
	// Reset holds fresh defaults for the next entry
	Reset form.Values `json:"reset"`
}

type SubmitCartRequest struct {
	IDs []string `json:"ids" binding:"omitempty,dive,required"`
}

type StatusRequest struct {
	Status  entity.Status `json:"status" binding:"required,oneof=approved sent_back rejected paid"`
	Comment string        `json:"comment" binding:"max=1000"`
}

type ApprovePettyCashRequest struct {
	Amount         float64 `json:"amount"`
	AdjustmentDate string  `json:"expected_adjustment_date" binding:"required"`
}

type PayRequest struct {
	Code string `json:"code" binding:"required,len=4"`
}

type CodeResponse struct {
	Code string `json:"code"`
}

type PaymentRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Branch      string  `json:"branch" binding:"required"`
	Description string  `json:"description" binding:"max=500"`
}

type VoucherTypeResponse struct {
	catalog.Definition
	// Defaults holds the empty values of every field
	Defaults form.Values `json:"defaults,omitempty"`
}

type VoucherResponse struct {
	*entity.Voucher
	AllowedTransitions []entity.Status `json:"allowed_transitions"`
}

type LedgerResponse struct {
	PIN     string                `json:"pin"`
	Balance float64               `json:"balance"`
	Entries []*entity.LedgerEntry `json:"entries"`
}
