package repositories

import (
	"kasuwa/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	// UpdateRole sets the role of the account with the given email.
	// Returns models.ErrNotFound if no such account exists.
	UpdateRole(email, role string) error
}
