package credits

import (
	creditsvc "samudra-backend/internal/application/credits"
	"samudra-backend/internal/middleware"
	"samudra-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles credit marketplace route handlers.
type Handlers struct {
	Service *creditsvc.Service
}

// ListAvailable GET /credits/available (buyer)
func (h *Handlers) ListAvailable(c *fiber.Ctx) error {
	credits, err := h.Service.ListAvailable(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"availableCredits": credits})
}

type purchaseRequest struct {
	CreditID string  `json:"creditId"`
	Amount   float64 `json:"amount"`
}

// Purchase POST /credits/purchase (buyer): simulated settlement; only the
// balance transfer is real.
func (h *Handlers) Purchase(c *fiber.Ctx) error {
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil || req.CreditID == "" {
		return response.Error(c, "creditId and amount are required", 400)
	}
	creditID, err := uuid.Parse(req.CreditID)
	if err != nil {
		return response.Error(c, "Invalid creditId", 400)
	}

	caller := middleware.GetIdentity(c)
	holding, err := h.Service.Purchase(c.Context(), creditID, caller.UserID, req.Amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"success": true, "holding": holding})
}

type retireRequest struct {
	CreditID string  `json:"creditId"`
	Amount   float64 `json:"amount"`
	Reason   string  `json:"reason"`
}

// Retire POST /credits/retire (buyer): permanent, irreversible.
func (h *Handlers) Retire(c *fiber.Ctx) error {
	var req retireRequest
	if err := c.BodyParser(&req); err != nil || req.CreditID == "" {
		return response.Error(c, "creditId, amount and reason are required", 400)
	}
	creditID, err := uuid.Parse(req.CreditID)
	if err != nil {
		return response.Error(c, "Invalid creditId", 400)
	}

	caller := middleware.GetIdentity(c)
	retirement, err := h.Service.Retire(c.Context(), creditID, caller.UserID, req.Amount, req.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{
		"retirementId": retirement.RetirementID,
		"retirement":   retirement,
	})
}

// ListRetirements GET /credits/retirements (buyer)
func (h *Handlers) ListRetirements(c *fiber.Ctx) error {
	caller := middleware.GetIdentity(c)
	retirements, err := h.Service.ListRetirements(c.Context(), caller.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"retirements": retirements})
}
