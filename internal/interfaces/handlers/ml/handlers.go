package ml

import (
	verificationsvc "samudra-backend/internal/application/verification"
	"samudra-backend/internal/middleware"
	"samudra-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles the verifier-facing ML verification routes.
type Handlers struct {
	Service *verificationsvc.Service
}

type verifyRequest struct {
	ProjectID string `json:"projectId"`
}

// VerifyProject POST /ml/verify-project (nccr_verifier): run the model check
// against a project's stored registration data.
func (h *Handlers) VerifyProject(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil || req.ProjectID == "" {
		return response.Error(c, "projectId is required", 400)
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return response.Error(c, "Invalid projectId", 400)
	}

	caller := middleware.GetIdentity(c)
	verification, err := h.Service.VerifyProject(c.Context(), projectID, caller.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"success": true, "verification": verification})
}

// GetVerification GET /ml/verification/:projectId (nccr_verifier)
func (h *Handlers) GetVerification(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		return response.Error(c, "Invalid projectId", 400)
	}
	verification, err := h.Service.VerificationResult(c.Context(), projectID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"verification": verification})
}
