package repositories

import (
	"errors"
	"fmt"

	"pasar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// Create inserts a new post. A product ID is assigned when absent; timestamps
// are assigned by the store.
func (r *GORMPostRepository) Create(post *models.Post) error {
	if post.ProductID == "" {
		post.ProductID = uuid.New().String()
	}
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetAll retrieves all posts with their owner preloaded, ordered by creation
// time. order must already be resolved to "asc" or "desc"; callers validate it
// before reaching the repository.
func (r *GORMPostRepository) GetAll(order string) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Preload("User").Order("created_at " + order).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", err)
	}
	return posts, nil
}

// GetByID retrieves a single post with its owner preloaded.
func (r *GORMPostRepository) GetByID(productID string) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("User").First(&post, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post with ID %s: %w", productID, ErrPostNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %s: %w", productID, err)
	}
	return &post, nil
}

// UpdateOwned applies fields to the post only when both the id and the owner
// match at write time. Returns the number of rows changed.
func (r *GORMPostRepository) UpdateOwned(productID, userID string, fields map[string]interface{}) (int64, error) {
	res := r.db.Model(&models.Post{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update post %s: %w", productID, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteOwned removes the post only when both the id and the owner match.
// Returns the number of rows removed.
func (r *GORMPostRepository) DeleteOwned(productID, userID string) (int64, error) {
	res := r.db.Where("product_id = ? AND user_id = ?", productID, userID).Delete(&models.Post{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete post %s: %w", productID, res.Error)
	}
	return res.RowsAffected, nil
}
