package models

import "errors"

// Domain errors. All of them are recoverable at the handler boundary: the
// caller gets a message and the stored state is guaranteed unchanged.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidTransition   = errors.New("invalid order transition")
	ErrDuplicateCommission = errors.New("commission already recorded for this order and artist")
	ErrAlreadyReleased     = errors.New("commission already released")
	ErrAlreadyApproved     = errors.New("withdraw request already approved")
	ErrAlreadyRejected     = errors.New("withdraw request already rejected")
	ErrCommissionReversed  = errors.New("commission was reversed by a refund")
	ErrInsufficientBalance = errors.New("insufficient withdrawable balance")
	ErrNotFound            = errors.New("record not found")
	ErrForbidden           = errors.New("actor not permitted for this operation")
)
