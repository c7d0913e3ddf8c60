// Package handlers translates HTTP requests into the core ledger operations
// and maps their typed errors to response codes. No ledger semantics live
// here.
package handlers

import (
	"campuspay/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// extractUserClaims is a helper to pull the authenticated actor off the
// request context.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
