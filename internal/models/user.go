package models

import "gorm.io/gorm"

// Roles recognized in token claims. RolePayment identifies the trusted
// payment collaborator, not an interactive account.
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RolePayment = "payment"
)

// User represents a customer or admin account.
//
// Role is authoritative here and in the signed token claim. It is never
// inferred from the email text.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(20);default:user" validate:"omitempty,oneof=user admin"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Actor is the authenticated identity attached to a request, carried
// explicitly into service calls instead of living in process-wide state.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
