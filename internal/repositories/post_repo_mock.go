package repositories

import (
	"sort"
	"sync"
	"time"

	"pasar/internal/models"

	"github.com/google/uuid"
)

// MockPostRepository is an in-memory implementation of PostRepository.
type MockPostRepository struct {
	posts     map[string]models.Post
	nicknames map[string]string
	mu        sync.RWMutex
}

// NewMockPostRepository creates a new instance of MockPostRepository.
func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		posts:     make(map[string]models.Post),
		nicknames: make(map[string]string),
	}
}

// SetNickname registers the display name joined onto posts owned by userID,
// standing in for the relational lookup the GORM repository performs.
func (r *MockPostRepository) SetNickname(userID, nickname string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nicknames[userID] = nickname
}

// Create adds a new post. A preset CreatedAt is kept so tests can control
// ordering.
func (r *MockPostRepository) Create(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ProductID == "" {
		post.ProductID = uuid.New().String()
	}
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	r.posts[post.ProductID] = *post
	return nil
}

// GetAll returns all posts ordered by creation time, owner nickname attached.
func (r *MockPostRepository) GetAll(order string) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	postList := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		p.User.Nickname = r.nicknames[p.UserID]
		postList = append(postList, p)
	}
	sort.Slice(postList, func(i, j int) bool {
		if order == "asc" {
			return postList[i].CreatedAt.Before(postList[j].CreatedAt)
		}
		return postList[i].CreatedAt.After(postList[j].CreatedAt)
	})
	return postList, nil
}

// GetByID returns a post by its product ID.
func (r *MockPostRepository) GetByID(productID string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[productID]
	if !ok {
		return nil, ErrPostNotFound
	}
	post.User.Nickname = r.nicknames[post.UserID]
	return &post, nil
}

// UpdateOwned modifies an existing post when both id and owner match.
func (r *MockPostRepository) UpdateOwned(productID, userID string, fields map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[productID]
	if !ok || post.UserID != userID {
		return 0, nil
	}
	if v, ok := fields["title"].(string); ok {
		post.Title = v
	}
	if v, ok := fields["content"].(string); ok {
		post.Content = v
	}
	if v, ok := fields["status"].(string); ok {
		post.Status = v
	}
	if v, ok := fields["price"].(int64); ok {
		post.Price = v
	}
	post.UpdatedAt = time.Now()
	r.posts[productID] = post
	return 1, nil
}

// DeleteOwned removes a post when both id and owner match.
func (r *MockPostRepository) DeleteOwned(productID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[productID]
	if !ok || post.UserID != userID {
		return 0, nil
	}
	delete(r.posts, productID)
	return 1, nil
}
