package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Kr1shnam00rth1/Bank-API/internal/core/security"
)

// PrincipalKey is where Protected stores the resolved principal in the
// request locals.
const PrincipalKey = "principal"

// Protected authenticates the session cookie and enforces the required role.
// Absent cookie, bad signature, expiry and role mismatch all yield the same
// 401 so callers learn nothing about which check failed.
func Protected(issuer *security.TokenIssuer, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("authToken")
		if token == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Access denied. No token provided."})
		}

		principal, err := issuer.Verify(token)
		if err != nil || principal.Role != role {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token."})
		}

		c.Locals(PrincipalKey, principal)
		return c.Next()
	}
}

// SetSessionCookie attaches the signed token as an HTTP-only, strict
// same-site cookie.
func SetSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "authToken",
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
