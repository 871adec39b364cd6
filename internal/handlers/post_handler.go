package handlers

import (
	"pasar/internal/apperrors"
	"pasar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for sale listings. Unlike the auth
// handler, it does not render errors itself: every failure is returned and
// funneled into the app's boundary error handler, which maps the domain error
// kind onto a transport status.
type PostHandler struct {
	service *services.PostService
	auth    fiber.Handler
}

// NewPostHandler creates a new PostHandler. authGate protects the mutating
// routes.
func NewPostHandler(service *services.PostService, authGate fiber.Handler) *PostHandler {
	return &PostHandler{
		service: service,
		auth:    authGate,
	}
}

// RegisterRoutes registers the listing routes with the Fiber app. Reads are
// public; create, update and delete require an authenticated user.
func (h *PostHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/posts", h.auth, h.HandleCreatePost)
	router.Get("/posts", h.HandleGetPosts)
	router.Get("/post/:productid", h.HandleGetPostDetail)
	router.Put("/post/:productid", h.auth, h.HandleUpdatePost)
	router.Delete("/post/:productid", h.auth, h.HandleDeletePost)
}

// requesterID extracts the authenticated user id stored by the auth gate.
func requesterID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Missing authenticated user")
	}
	return userID, nil
}

// HandleCreatePost registers a new sale listing owned by the authenticated
// user.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}

	var req services.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request body", err)
	}

	if err := h.service.CreateListing(userID, req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Sale listing registered"})
}

// HandleGetPosts returns listing summaries ordered by creation time. The sort
// query parameter picks the direction, defaulting to newest first.
func (h *PostHandler) HandleGetPosts(c *fiber.Ctx) error {
	listings, err := h.service.ListListings(c.Query("sort"))
	if err != nil {
		return err
	}
	return c.JSON(listings)
}

// HandleGetPostDetail returns the full view of a single listing.
func (h *PostHandler) HandleGetPostDetail(c *fiber.Ctx) error {
	detail, err := h.service.GetListingDetail(c.Params("productid"))
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// HandleUpdatePost edits a listing the authenticated user owns.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}

	var req services.UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request body", err)
	}

	if err := h.service.UpdateListing(userID, c.Params("productid"), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Sale listing updated"})
}

// HandleDeletePost removes a listing the authenticated user owns.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteListing(userID, c.Params("productid")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Sale listing deleted"})
}
