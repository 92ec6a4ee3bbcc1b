package models

import (
	"time"
)

// OrderItem is one product line in an order. ArtistID is denormalized from
// the product so commission splitting and artisan ownership checks do not
// need a catalog join.
type OrderItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;index"`
	ProductID uint      `json:"product_id" gorm:"not null"`
	ArtistID  uint      `json:"artist_id" gorm:"not null;index"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitPrice int64     `json:"unit_price" gorm:"not null"`
	Subtotal  int64     `json:"subtotal" gorm:"not null"` // quantity * unit_price
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
