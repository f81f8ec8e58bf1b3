package stats

import (
	"time"

	statsvc "samudra-backend/internal/application/stats"
	"samudra-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves the public, unauthenticated endpoints.
type Handlers struct {
	Service *statsvc.Service
}

// Health GET /health
func (h *Handlers) Health(c *fiber.Ctx) error {
	return response.JSON(c, fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// PublicStats GET /public/stats
func (h *Handlers) PublicStats(c *fiber.Ctx) error {
	out, err := h.Service.Collect(c.Context())
	if err != nil {
		return response.Error(c, "Failed to fetch public stats", 500)
	}
	return response.JSON(c, out)
}
