package models

import (
	"time"
)

// Transaction is an append-only ledger entry. Rows whose status is
// completed, failed or cancelled are frozen; corrections append new rows
// (e.g. a refund), history is never edited.
type Transaction struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	Reference    string            `json:"reference" gorm:"unique;not null"`
	ArtistID     uint              `json:"artist_id" gorm:"index"` // 0 for customer-side entries
	Type         TransactionType   `json:"type" gorm:"type:varchar(32);not null;index"`
	Amount       int64             `json:"amount" gorm:"not null"`
	Status       TransactionStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	OrderID      *uint             `json:"order_id,omitempty" gorm:"index"`
	CommissionID *uint             `json:"commission_id,omitempty" gorm:"index"`
	WithdrawID   *uint             `json:"withdraw_id,omitempty" gorm:"index"`
	CreatedAt    time.Time         `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

type TransactionType string

const (
	TxCommissionPending  TransactionType = "commission_pending"
	TxCommissionReleased TransactionType = "commission_released"
	TxWithdrawPending    TransactionType = "withdraw_pending"
	TxWithdrawCompleted  TransactionType = "withdraw_completed"
	TxWithdrawRejected   TransactionType = "withdraw_rejected"
	TxPaymentReceived    TransactionType = "payment_received"
	TxRefund             TransactionType = "refund"
)

type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusFailed    TransactionStatus = "failed"
	TxStatusCancelled TransactionStatus = "cancelled"
)
