package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// statusTransitions holds the only legal status changes. Transitions are
// driven by the admin or the payment collaborator, never inferred from stock.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusDelivered, StatusCancelled},
}

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CartLine is one product reference in a placement request. The customization
// payload is opaque to placement logic and is copied verbatim into the
// resulting order item.
type CartLine struct {
	ProductID     string        `json:"product_id" validate:"required"`
	Quantity      int           `json:"quantity" validate:"required,gt=0"`
	Customization Customization `json:"customization"`
}

// OrderItem is a single line within a placed order. ProductName and UnitPrice
// are snapshots taken at order time; later product edits or deletion do not
// change them.
type OrderItem struct {
	ID            uint            `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID       string          `json:"-" gorm:"index;type:varchar(36)"`
	ProductID     string          `json:"product_id" gorm:"type:varchar(36)"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"` // Price at the time of order
	Customization Customization   `json:"customization" gorm:"embedded;embeddedPrefix:custom_"`
}

// Subtotal is unit price at order time multiplied by quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a placed customer order. Items and TotalAmount are
// immutable after creation; Status is the only field that changes.
type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string          `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_orders_user_idem_key"`
	UserEmail   string          `json:"user_email" gorm:"type:varchar(255)"`
	Items       []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2)"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20)"`
	// IdempotencyKey shares a unique index with UserID so a key only
	// collides for the same user.
	IdempotencyKey string    `json:"-" gorm:"type:varchar(64);uniqueIndex:idx_orders_user_idem_key"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
