package service

import "errors"

var (
	ErrUnauthenticated      = errors.New("no authenticated user")
	ErrForbidden            = errors.New("operation not allowed for this user")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrVoucherNotFound      = errors.New("voucher not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrUnknownVoucherType   = errors.New("unknown voucher type")
	ErrEmptyBatch           = errors.New("nothing to submit")
	ErrInvalidApproval      = errors.New("approved amount must be positive and an adjustment date is required")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrNotPettyCash         = errors.New("voucher is not a petty cash demand")
	ErrCodeAlreadyGenerated = errors.New("petty cash code already generated")
	ErrCodeMismatch         = errors.New("petty cash code does not match")
	ErrNotReturned          = errors.New("voucher was not sent back or rejected")
	ErrNotPaid              = errors.New("voucher is not paid")
	ErrNotApproved          = errors.New("voucher is not approved")
	ErrAlreadyAudited       = errors.New("voucher is already audited")
)
