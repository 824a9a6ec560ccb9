package models

import "gorm.io/gorm"

// User roles. Any value other than RoleAdmin carries no privilege.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a customer account. Role is only ever elevated through
// the bootstrap promotion path.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(16);default:customer"`
	gorm.Model        // CreatedAt, UpdatedAt, DeletedAt
}
