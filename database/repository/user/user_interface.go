package userRepo

import (
	"errors"

	"roombooking/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already taken")
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by their unique ID.
	GetByID(id string) (*models.User, error)
	// GetByUsername retrieves a user by their login name.
	GetByUsername(username string) (*models.User, error)
	// Create inserts a new user record and assigns its ID.
	Create(user *models.User) error
}
