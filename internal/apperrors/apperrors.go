package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind tags a domain error with its taxonomy entry.
type Kind string

const (
	// KindValidation means the request payload failed the schema contract.
	KindValidation Kind = "VALIDATION"
	// KindPostNotExist means a single-listing lookup found nothing.
	KindPostNotExist Kind = "POST_NOT_EXIST"
	// KindPostsNotExist means the listing collection is empty. The original
	// API reported this as an error rather than an empty result, and clients
	// depend on it.
	KindPostsNotExist Kind = "POSTS_NOT_EXIST"
	// KindCantSort means an unsupported sort direction was supplied.
	KindCantSort Kind = "CANT_SORT"
	// KindNotMatchedID means the requester does not own the listing they are
	// trying to mutate.
	KindNotMatchedID Kind = "NOT_MATCHED_ID"
)

// Error is a domain error carrying its kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a domain error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, reporting whether err (or anything it
// wraps) is a domain error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// HTTPStatus maps an error kind to its transport status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindCantSort:
		return fiber.StatusBadRequest
	case KindPostNotExist, KindPostsNotExist:
		return fiber.StatusNotFound
	case KindNotMatchedID:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// Handler returns the Fiber error handler every route funnels into. Domain
// errors map to their taxonomy status; unclassified errors (store faults and
// the like) become a generic 500. When includeDetail is set the underlying
// error text is added to the response, which is only safe outside production.
func Handler(includeDetail bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var domainErr *Error
		var fiberErr *fiber.Error
		if errors.As(err, &domainErr) {
			status = domainErr.Kind.HTTPStatus()
			message = domainErr.Message
		} else if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		body := fiber.Map{"message": message}
		if includeDetail {
			body["error"] = err.Error()
		}
		return c.Status(status).JSON(body)
	}
}
