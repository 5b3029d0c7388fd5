package models

import "time"

// CartItem is a pre-order staging entry: a product plus its chosen
// customization, parked until checkout converts the cart into an order.
type CartItem struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string        `json:"user_id" gorm:"index;type:varchar(36)"`
	ProductID     string        `json:"product_id" gorm:"type:varchar(36)" validate:"required"`
	Quantity      int           `json:"quantity" validate:"required,gt=0"`
	Customization Customization `json:"customization" gorm:"embedded;embeddedPrefix:custom_"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Line converts the staged item into a placement cart line.
func (c CartItem) Line() CartLine {
	return CartLine{
		ProductID:     c.ProductID,
		Quantity:      c.Quantity,
		Customization: c.Customization,
	}
}
