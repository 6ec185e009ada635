package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"einnames/internal/models"
)

// AuthMiddleware gates the editing API behind an operator session.
// When OIDC is not configured the middleware passes every request through.
type AuthMiddleware struct {
	enabled bool
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(enabled bool) *AuthMiddleware {
	return &AuthMiddleware{enabled: enabled}
}

// RequireAuth ensures an operator is logged in, returning 401 otherwise.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	if !m.enabled {
		return c.Next()
	}

	sess := session.FromContext(c)
	if sess == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "authentication required",
		})
	}

	sub, _ := sess.Get("operator_sub").(string)
	if sub == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "authentication required",
		})
	}

	email, _ := sess.Get("operator_email").(string)
	name, _ := sess.Get("operator_name").(string)

	c.Locals("operator", &models.Operator{Sub: sub, Email: email, Name: name})
	return c.Next()
}
