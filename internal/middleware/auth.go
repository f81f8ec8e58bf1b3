package middleware

import (
	"strings"

	"samudra-backend/internal/application/identity"
	"samudra-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// RequireAuth resolves the Authorization: Bearer token through the identity
// provider and stores the identity in Locals. 401 when missing or invalid.
func RequireAuth(provider identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return response.Unauthorized(c, "No authorization token provided")
		}
		id, err := provider.Authenticate(c.Context(), token)
		if err != nil {
			return response.FromError(c, err)
		}
		c.Locals(identityLocal, id)
		return c.Next()
	}
}

// RequireRole gates a route on the caller's role. Must run after RequireAuth.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := GetIdentity(c)
		if err := identity.RequireRole(id, role); err != nil {
			return response.FromError(c, err)
		}
		return c.Next()
	}
}

// GetIdentity returns the resolved identity from Locals (nil when the route
// is public or auth middleware did not run).
func GetIdentity(c *fiber.Ctx) *identity.Identity {
	id, _ := c.Locals(identityLocal).(*identity.Identity)
	return id
}

// SetIdentity injects an identity into Locals. Test helper.
func SetIdentity(c *fiber.Ctx, id *identity.Identity) {
	c.Locals(identityLocal, id)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
