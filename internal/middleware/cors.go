package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// CORS allows the single-page front end to call the API from any origin.
// The registry carries no cookies; auth is a bearer header, so a permissive
// policy is acceptable here.
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Access-Control-Allow-Origin", "*")
		c.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Set("Access-Control-Max-Age", "600")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}
