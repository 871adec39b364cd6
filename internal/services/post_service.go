package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"pasar/internal/apperrors"
	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
)

// CreateListingRequest is the payload for registering a new listing. Price is
// a pointer so a missing field and an explicit zero stay distinguishable under
// the required tag.
type CreateListingRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Price   *int64 `json:"price" validate:"required,gte=0"`
}

// UpdateListingRequest is the payload for editing an owned listing. Status is
// optional; when absent the stored status is kept.
type UpdateListingRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Status  string `json:"status"`
	Price   *int64 `json:"price" validate:"required,gte=0"`
}

// ListingSummary is the collection projection of a post: no content, and the
// owner reduced to their nickname.
type ListingSummary struct {
	ProductID string    `json:"productId"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Nickname  string    `json:"nickname"`
}

// ListingDetail is the single-listing projection, content included.
type ListingDetail struct {
	ProductID string    `json:"productId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Nickname  string    `json:"nickname"`
}

// PostService handles the listing business logic: payload validation,
// sort-direction resolution, ownership enforcement and the mapping of domain
// conditions onto the error taxonomy. It holds no state between requests.
type PostService struct {
	repo     repositories.PostRepository
	validate *validator.Validate
	mqClient *rabbitmq.Client
}

// NewPostService creates a new PostService. mqClient may be nil; listing
// events are then skipped.
func NewPostService(repo repositories.PostRepository, mqClient *rabbitmq.Client) *PostService {
	return &PostService{
		repo:     repo,
		validate: validator.New(),
		mqClient: mqClient,
	}
}

// CreateListing validates the payload and inserts a post owned by ownerID.
// Status is not settable here; every new listing starts as FOR_SALE.
func (s *PostService) CreateListing(ownerID string, req CreateListingRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid listing payload", err)
	}

	post := &models.Post{
		UserID:  ownerID,
		Title:   req.Title,
		Content: req.Content,
		Price:   *req.Price,
		Status:  models.StatusForSale,
	}
	if err := s.repo.Create(post); err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	s.publishEvent("listing.created", post.ProductID, ownerID)
	return nil
}

// resolveSortDirection maps the sort query value to a storage order. Absent
// means newest first.
func resolveSortDirection(sort string) (string, error) {
	switch sort {
	case "", "desc":
		return "desc", nil
	case "asc":
		return "asc", nil
	default:
		return "", apperrors.New(apperrors.KindCantSort, fmt.Sprintf("Unsupported sort direction %q", sort))
	}
}

// ListListings returns summaries of every post ordered by creation time. An
// empty store is an error, not an empty slice: the original API promised
// POSTS_NOT_EXIST to its clients and this keeps that contract.
func (s *PostService) ListListings(sort string) ([]ListingSummary, error) {
	direction, err := resolveSortDirection(sort)
	if err != nil {
		return nil, err
	}

	posts, err := s.repo.GetAll(direction)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	if len(posts) == 0 {
		return nil, apperrors.New(apperrors.KindPostsNotExist, "No listings exist")
	}

	summaries := make([]ListingSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, ListingSummary{
			ProductID: p.ProductID,
			Title:     p.Title,
			Status:    p.Status,
			Price:     p.Price,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
			Nickname:  p.User.Nickname,
		})
	}
	return summaries, nil
}

// GetListingDetail returns the full projection of a single post.
func (s *PostService) GetListingDetail(productID string) (*ListingDetail, error) {
	post, err := s.repo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, apperrors.New(apperrors.KindPostNotExist, "Listing does not exist")
		}
		return nil, fmt.Errorf("failed to get listing %s: %w", productID, err)
	}

	return &ListingDetail{
		ProductID: post.ProductID,
		Title:     post.Title,
		Content:   post.Content,
		Status:    post.Status,
		Price:     post.Price,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
		Nickname:  post.User.Nickname,
	}, nil
}

// UpdateListing overwrites the mutable fields of an owned post. The write
// predicate re-checks ownership, so a stale read can never widen access.
func (s *PostService) UpdateListing(requesterID, productID string, req UpdateListingRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid listing payload", err)
	}

	post, err := s.repo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return apperrors.New(apperrors.KindPostNotExist, "Listing does not exist")
		}
		return fmt.Errorf("failed to load listing %s: %w", productID, err)
	}
	if post.UserID != requesterID {
		return apperrors.New(apperrors.KindNotMatchedID, "Only the owner may edit a listing")
	}

	fields := map[string]interface{}{
		"title":   req.Title,
		"content": req.Content,
		"price":   *req.Price,
	}
	if req.Status != "" {
		fields["status"] = req.Status
	}

	affected, err := s.repo.UpdateOwned(productID, requesterID, fields)
	if err != nil {
		return fmt.Errorf("failed to update listing %s: %w", productID, err)
	}
	if affected == 0 {
		// The ownership condition no longer held at write time.
		return apperrors.New(apperrors.KindNotMatchedID, "Only the owner may edit a listing")
	}

	s.publishEvent("listing.updated", productID, requesterID)
	return nil
}

// DeleteListing removes an owned post. A missing post is reported as such
// before the ownership comparison.
func (s *PostService) DeleteListing(requesterID, productID string) error {
	post, err := s.repo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return apperrors.New(apperrors.KindPostNotExist, "Listing does not exist")
		}
		return fmt.Errorf("failed to load listing %s: %w", productID, err)
	}
	if post.UserID != requesterID {
		return apperrors.New(apperrors.KindNotMatchedID, "Only the owner may delete a listing")
	}

	affected, err := s.repo.DeleteOwned(productID, requesterID)
	if err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", productID, err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.KindNotMatchedID, "Only the owner may delete a listing")
	}

	s.publishEvent("listing.deleted", productID, requesterID)
	return nil
}

// publishEvent emits a listing mutation event. Publish failures are logged
// and never fail the request.
func (s *PostService) publishEvent(event, productID, userID string) {
	if s.mqClient == nil {
		return
	}
	err := s.mqClient.PublishListingEvent(rabbitmq.ListingEvent{
		Event:     event,
		ProductID: productID,
		UserID:    userID,
	})
	if err != nil {
		log.Printf("Warning: failed to publish %s event for listing %s: %v", event, productID, err)
	}
}
