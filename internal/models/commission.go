package models

import (
	"time"
)

// CommissionRecord is the settlement split for one artist's slice of one
// order, created when the order is paid. Immutable once written except for
// two one-way marks: IsPaid flips to true when the customer confirms
// delivery, ReversedAt is set if an admin refund reverses the commission
// before release.
type CommissionRecord struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	OrderID            uint       `json:"order_id" gorm:"not null;index;index:idx_commission_order_artist,unique"`
	ArtistID           uint       `json:"artist_id" gorm:"not null;index;index:idx_commission_order_artist,unique"`
	GrossAmount        int64      `json:"gross_amount" gorm:"not null"` // item total, shipping excluded
	CommissionRate     float64    `json:"commission_rate" gorm:"not null"`
	PlatformCommission int64      `json:"platform_commission" gorm:"not null"`
	ArtistEarning      int64      `json:"artist_earning" gorm:"not null"`
	IsPaid             bool       `json:"is_paid" gorm:"not null;default:false;index"`
	ReversedAt         *time.Time `json:"reversed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (CommissionRecord) TableName() string {
	return "commission_records"
}
