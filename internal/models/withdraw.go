package models

import (
	"time"
)

// WithdrawRequest asks to convert available wallet balance into a bank
// payout. A pending request reserves its amount against the balance.
// Resolution by an admin happens exactly once and is irreversible; a
// rejected request can only be superseded by a new one.
type WithdrawRequest struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	ArtistID          uint           `json:"artist_id" gorm:"not null;index"`
	Amount            int64          `json:"amount" gorm:"not null"`
	BankName          string         `json:"bank_name" gorm:"not null"`
	BankAccountName   string         `json:"bank_account_name" gorm:"not null"`
	BankAccountNumber string         `json:"bank_account_number" gorm:"not null"`
	Status            WithdrawStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	RejectReason      string         `json:"reject_reason"`
	ResolvedAt        *time.Time     `json:"resolved_at"`
	ResolvedBy        uint           `json:"resolved_by"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (WithdrawRequest) TableName() string {
	return "withdraw_requests"
}

type WithdrawStatus string

const (
	WithdrawPending  WithdrawStatus = "pending"
	WithdrawApproved WithdrawStatus = "approved"
	WithdrawRejected WithdrawStatus = "rejected"
)
