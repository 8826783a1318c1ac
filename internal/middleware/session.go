package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const phoneLocal = "phone"

// TokenValidator resolves a session token to its phone.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// SessionAuth requires a bearer session token minted by this process and
// stores the owning phone in the request locals.
func SessionAuth(sessions TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("bearer ") || !strings.EqualFold(authz[:len("bearer ")], "bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		token := strings.TrimSpace(authz[len("bearer "):])
		phone, err := sessions.Validate(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid session")
		}
		c.Locals(phoneLocal, phone)
		return c.Next()
	}
}

// Phone returns the phone set by SessionAuth, or "".
func Phone(c *fiber.Ctx) string {
	phone, _ := c.Locals(phoneLocal).(string)
	return phone
}
