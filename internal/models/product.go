package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a wallet model in the catalog.
//
// Stock is mutated only by admin edits and by order placement (decrement) or
// cancellation (restock). It never goes negative: a decrement that would cross
// zero fails the whole placement.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	Category    string          `json:"category" validate:"omitempty,max=100"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"image_url,omitempty" validate:"omitempty,url"`
	gorm.Model  // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
