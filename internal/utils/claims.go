package utils

import (
	"errors"

	"spark/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Keys under which the auth middleware stores the caller's identity.
const (
	ClaimsKey = "claims"
	UserIDKey = "userID"
)

var ErrMissingClaims = errors.New("claims not found in context")

// GetUserClaims extracts the user claims from the Fiber context.
func GetUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals(ClaimsKey).(*models.UserClaims)
	if !ok || claims == nil {
		return nil, ErrMissingClaims
	}
	return claims, nil
}
