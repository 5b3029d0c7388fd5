package models

import "gorm.io/gorm"

// Customization is the personalization chosen for one wallet. Placement
// treats it as an opaque payload: it is snapshotted onto the order item and
// does not affect pricing.
type Customization struct {
	NameOnWallet string `json:"name_on_wallet,omitempty" validate:"omitempty,max=30"`
	Color        string `json:"color,omitempty"`
	Design       string `json:"design,omitempty"`
	LeatherType  string `json:"leather_type,omitempty"`
	Charm        string `json:"charm,omitempty"`
	Gift         bool   `json:"gift,omitempty"`
}

// CustomizationOption is one admin-managed choice offered by the storefront
// customizer (a color, a design, a leather type or a charm).
type CustomizationOption struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Category   string `json:"category" gorm:"type:varchar(50)" validate:"required,oneof=color design leather charm"`
	Name       string `json:"name" gorm:"type:varchar(100)" validate:"required,min=1,max=100"`
	gorm.Model // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
