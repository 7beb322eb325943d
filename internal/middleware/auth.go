// Package middleware provides HTTP middleware components for the application.
package middleware

import (
	"strings"

	"spark/internal/models"
	"spark/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware validates bearer tokens issued by the platform's auth
// service and stores the caller's claims on the request.
type AuthMiddleware struct {
	secret string
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

// Handler validates the JWT in the Authorization header and adds the claims
// to the request context.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	claims, err := utils.ParseToken(m.secret, strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		logrus.WithError(err).WithField("path", c.Path()).Debug("rejected bearer token")
		return utils.Unauthorized(c, "invalid token")
	}

	c.Locals(utils.ClaimsKey, claims)
	c.Locals(utils.UserIDKey, claims.UserID)
	return c.Next()
}

// AdminAuthMiddleware verifies that the request has valid admin claims.
// It must run after Handler.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	if claims.Role != models.RoleAdmin {
		logrus.WithFields(logrus.Fields{
			"user_id": claims.UserID,
			"role":    claims.Role,
			"path":    c.Path(),
		}).Warn("admin route denied")
		return utils.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}
