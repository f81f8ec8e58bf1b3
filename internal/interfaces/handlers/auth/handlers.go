package auth

import (
	"samudra-backend/internal/application/identity"
	"samudra-backend/internal/pkg/constants"
	"samudra-backend/internal/pkg/response"
	"samudra-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles account handlers with the identity provider.
type Handlers struct {
	Provider identity.Provider
	// Local is set when the self-contained provider is active; enables
	// password login in dev/test deployments.
	Local       *identity.LocalProvider
	NCCRDomains []string
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Signup POST /signup: create an account with an immutable role.
func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400)
	}
	if req.Role == "" {
		req.Role = constants.RoleBuyer
	}
	if !constants.IsValidRole(req.Role) {
		return response.Error(c, "Invalid role", 400)
	}
	if !validation.IsValidEmail(req.Email) {
		return response.Error(c, "Invalid email address", 400)
	}
	if !validation.IsValidPassword(req.Password) {
		return response.Error(c, "Password must be at least 8 characters with a letter, a number and a special character", 400)
	}
	if !validation.IsValidFullname(req.Name) {
		return response.Error(c, "Invalid name", 400)
	}
	if req.Role == constants.RoleNCCRVerifier {
		if res := identity.CheckNCCREligibility(req.Email, h.NCCRDomains); !res.Eligible {
			return response.Forbidden(c, res.Reason)
		}
	}

	id, err := h.Provider.CreateUser(c.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("signup failed")
		return response.FromError(c, err)
	}
	return response.Created(c, fiber.Map{"user": id})
}

type eligibilityRequest struct {
	Email string `json:"email"`
}

// CheckNCCREligibility POST /check-nccr-eligibility: public domain check.
func (h *Handlers) CheckNCCREligibility(c *fiber.Ctx) error {
	var req eligibilityRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return response.Error(c, "email is required", 400)
	}
	return response.JSON(c, identity.CheckNCCREligibility(req.Email, h.NCCRDomains))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /login: password login against the local provider. Hosted
// deployments authenticate directly with the identity platform instead.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.Local == nil {
		return response.Error(c, "Password login is handled by the identity platform", 501)
	}
	var req loginRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.Error(c, "email and password are required", 400)
	}
	token, id, err := h.Local.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"access_token": token, "user": id})
}
