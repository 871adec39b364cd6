package repositories

import (
	"errors"

	"pasar/internal/models"
)

// ErrUserNotFound is returned by user lookups when no account matches.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByNickname(nickname string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}
