package models

import (
	"time"
)

// Order is the status-bearing fulfillment record. Amounts are VND, so there
// is no minor unit. TotalAmount is fixed at creation; only Status and the
// transition timestamps change afterwards. Orders are never deleted:
// cancelled orders stay behind as terminal audit records.
type Order struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	OrderCode    string      `json:"order_code" gorm:"unique;not null"`
	CustomerID   uint        `json:"customer_id" gorm:"not null;index"`
	ShippingFee  int64       `json:"shipping_fee" gorm:"not null"`
	TotalAmount  int64       `json:"total_amount" gorm:"not null"` // sum(items) + shipping fee
	Status       OrderStatus `json:"status" gorm:"type:varchar(32);not null;default:'waiting_for_payment';index"`
	PaidAt       *time.Time  `json:"paid_at"`
	ProcessingAt *time.Time  `json:"processing_at"`
	ShippingAt   *time.Time  `json:"shipping_at"`
	DeliveredAt  *time.Time  `json:"delivered_at"`
	CancelledAt  *time.Time  `json:"cancelled_at"`
	RefundedAt   *time.Time  `json:"refunded_at"`
	CreatedAt    time.Time   `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderStatus is the one canonical casing for order states. Raw strings from
// the outside are normalized once at the boundary via ParseOrderStatus.
type OrderStatus string

const (
	StatusWaitingForPayment OrderStatus = "waiting_for_payment"
	StatusPaid              OrderStatus = "paid"
	StatusProcessing        OrderStatus = "processing"
	StatusShipping          OrderStatus = "shipping"
	StatusDelivered         OrderStatus = "delivered"
	StatusCancelled         OrderStatus = "cancelled"
	StatusRefunded          OrderStatus = "refunded"
)

// AllowedTransitions maps a current status to the statuses reachable from it.
// Delivered, cancelled and refunded are terminal except for the refund
// dispute path. Role gating is enforced separately by the order service.
var AllowedTransitions = map[OrderStatus][]OrderStatus{
	StatusWaitingForPayment: {StatusPaid, StatusCancelled},
	StatusPaid:              {StatusProcessing, StatusCancelled},
	StatusProcessing:        {StatusShipping},
	StatusShipping:          {StatusDelivered},
	StatusDelivered:         {StatusRefunded},
	StatusCancelled:         {StatusRefunded},
	StatusRefunded:          {},
}

// CanTransition reports whether from → to appears in the transition table.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no forward fulfillment progress is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

var orderStatuses = map[string]OrderStatus{
	string(StatusWaitingForPayment): StatusWaitingForPayment,
	string(StatusPaid):              StatusPaid,
	string(StatusProcessing):        StatusProcessing,
	string(StatusShipping):          StatusShipping,
	string(StatusDelivered):         StatusDelivered,
	string(StatusCancelled):         StatusCancelled,
	string(StatusRefunded):          StatusRefunded,
}

// ParseOrderStatus normalizes a raw status string to the canonical enum.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s, ok := orderStatuses[raw]
	return s, ok
}
