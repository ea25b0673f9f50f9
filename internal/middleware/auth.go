// Package middleware provides HTTP middleware for the application:
// authentication and role gating for the fiber router.
package middleware

import (
	"log"
	"strings"

	"datasub/internal/models"
	"datasub/internal/services/auth"
	"datasub/internal/utils"
	"datasub/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT tokens and adds user claims to the request
// context. Token version must match the user's current version, and banned
// accounts are rejected even with a valid token.
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return response.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "invalid token")
	}

	currentVersion, err := m.authService.GetUserTokenVersion(claims.UserID)
	if err != nil {
		log.Printf("auth: token version lookup failed for user %d: %v", claims.UserID, err)
		return response.Error(c, fiber.StatusUnauthorized, "invalid token")
	}
	if claims.TokenVersion != currentVersion {
		return response.Error(c, fiber.StatusUnauthorized, "session expired")
	}

	user, err := m.authService.GetUserByID(claims.UserID)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "invalid token")
	}
	if user.Banned {
		return response.Error(c, fiber.StatusForbidden, "account suspended")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// AdminOnly verifies that the request carries admin claims. Must run after
// Handler.
func AdminOnly(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Error(c, fiber.StatusUnauthorized, "invalid claims")
	}
	if !claims.IsAdmin() {
		return response.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}
