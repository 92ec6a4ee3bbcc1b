package models

import (
	"time"
)

// PlatformSetting stores named platform rates and knobs editable by admins.
type PlatformSetting struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SettingName string    `json:"setting_name" gorm:"unique;not null"` // commission_rate, payment_timeout_hours
	Value       float64   `json:"value"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	SettingCommissionRate      = "commission_rate"
	SettingPaymentTimeoutHours = "payment_timeout_hours"
)
