// Package middleware provides HTTP middleware components for the application.
// It includes authentication and authorization middleware for the fiber web
// framework.
package middleware

import (
	"log"
	"strings"

	"campuspay/internal/models"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Handler validates JWT tokens and adds claims to the request context.
// Every mutating ledger operation records the authenticated user as its actor.
func Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return utils.Unauthorized(c, "invalid token")
	}

	c.Locals("claims", claims)
	return c.Next()
}

// RequirePermission rejects requests whose claims lack the permission.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return utils.Unauthorized(c, "invalid claims")
		}
		if !claims.HasPermission(permission) {
			return utils.Forbidden(c, "insufficient permissions")
		}
		return c.Next()
	}
}
