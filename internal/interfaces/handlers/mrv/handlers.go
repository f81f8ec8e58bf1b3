package mrv

import (
	"fmt"

	mrvsvc "samudra-backend/internal/application/mrv"
	verificationsvc "samudra-backend/internal/application/verification"
	"samudra-backend/internal/domain"
	"samudra-backend/internal/middleware"
	"samudra-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles MRV intake and verification route handlers.
type Handlers struct {
	Service      *mrvsvc.Service
	Verification *verificationsvc.Service
}

// Upload POST /mrv/upload (project_manager): multipart manifest intake.
// Files are categorized by extension; contents are not interpreted.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.Error(c, "Invalid multipart form", 400)
	}
	projectID := c.FormValue("projectId")
	if projectID == "" {
		return response.Error(c, "Project ID is required", 400)
	}

	var files []domain.MRVFile
	for _, fh := range form.File["files"] {
		files = append(files, domain.MRVFile{
			Name: fh.Filename,
			Size: fh.Size,
			Type: fh.Header.Get("Content-Type"),
		})
	}
	categorized := mrvsvc.CategorizeFiles(files)

	return response.JSON(c, fiber.Map{
		"success": true,
		"files":   categorized,
		"message": fmt.Sprintf("Successfully uploaded %d files", len(categorized)),
	})
}

// Submit POST /mrv (project_manager)
func (h *Handlers) Submit(c *fiber.Ctx) error {
	var in mrvsvc.SubmitInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}

	caller := middleware.GetIdentity(c)
	record, err := h.Service.Submit(c.Context(), in, caller.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, fiber.Map{"mrvData": record})
}

// ListPending GET /mrv/pending (nccr_verifier)
func (h *Handlers) ListPending(c *fiber.Ctx) error {
	records, err := h.Service.ListPending(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"pendingMrv": records})
}

type approveRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes"`
}

// Approve POST /mrv/:id/approve (nccr_verifier): terminal decision; on
// approval the credit issuance is part of the same operation.
func (h *Handlers) Approve(c *fiber.Ctx) error {
	mrvID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid MRV id", 400)
	}
	var req approveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}

	caller := middleware.GetIdentity(c)
	outcome, err := h.Verification.Review(c.Context(), mrvID, caller.UserID, req.Approved, req.Notes)
	if err != nil {
		return response.FromError(c, err)
	}
	body := fiber.Map{"success": true, "mrvData": outcome.MRV}
	if outcome.Credit != nil {
		body["credit"] = outcome.Credit
	}
	return response.JSON(c, body)
}
