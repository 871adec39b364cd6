package repositories

import (
	"errors"

	"pasar/internal/models"
)

// ErrPostNotFound is returned by lookups when no post matches. Callers use it
// to tell a missing listing apart from a store fault.
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the interface for post data access.
//
// UpdateOwned and DeleteOwned filter on both the post id and the owner id in a
// single statement and report the affected row count, so a write only takes
// effect if the ownership condition still holds at write time.
type PostRepository interface {
	Create(post *models.Post) error
	GetAll(order string) ([]models.Post, error)
	GetByID(productID string) (*models.Post, error)
	UpdateOwned(productID, userID string, fields map[string]interface{}) (int64, error)
	DeleteOwned(productID, userID string) (int64, error)
}
