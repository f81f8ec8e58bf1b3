package projects

import (
	projectsvc "samudra-backend/internal/application/projects"
	"samudra-backend/internal/middleware"
	"samudra-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles project route handlers with the registry service.
type Handlers struct {
	Service *projectsvc.Service
}

// Create POST /projects (project_manager)
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in projectsvc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}

	caller := middleware.GetIdentity(c)
	project, err := h.Service.Create(c.Context(), in, caller)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, fiber.Map{
		"projectId": project.ProjectID,
		"project":   project,
	})
}

// ListManager GET /projects/manager (project_manager)
func (h *Handlers) ListManager(c *fiber.Ctx) error {
	caller := middleware.GetIdentity(c)
	projects, err := h.Service.ListByManager(c.Context(), caller.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"projects": projects})
}

// ListAll GET /projects/all (nccr_verifier)
func (h *Handlers) ListAll(c *fiber.Ctx) error {
	projects, err := h.Service.ListAll(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"projects": projects})
}

// Delete DELETE /projects/:id (project_manager, owner only)
func (h *Handlers) Delete(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid project id", 400)
	}

	caller := middleware.GetIdentity(c)
	if err := h.Service.Delete(c.Context(), projectID, caller.UserID); err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{
		"success": true,
		"message": "Project deleted successfully",
	})
}
