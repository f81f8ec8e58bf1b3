package identity

import (
	"context"
	"strings"

	"samudra-backend/internal/pkg/apperrors"
	"samudra-backend/internal/pkg/validation"

	"github.com/google/uuid"
)

// Identity is the resolved caller of a request. It is always passed
// explicitly; no ambient session state exists anywhere in the workflow.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

// Provider resolves bearer credentials and owns user records. Implemented by
// the hosted provider client, the local dev/test provider, and the Redis
// caching decorator.
type Provider interface {
	// Authenticate resolves a bearer token to an identity or fails with
	// an Unauthenticated error.
	Authenticate(ctx context.Context, token string) (*Identity, error)
	// GetUserByID looks up a user for enrichment (manager name/email).
	GetUserByID(ctx context.Context, id uuid.UUID) (*Identity, error)
	// CreateUser registers a new account with an immutable role.
	CreateUser(ctx context.Context, email, password, name, role string) (*Identity, error)
}

// RequireRole fails with AccessDenied unless the identity holds the role.
// Every mutating and role-scoped read operation calls this after
// authentication, before touching entity state.
func RequireRole(id *Identity, role string) error {
	if id == nil {
		return apperrors.Unauthenticated("Not authenticated")
	}
	if id.Role != role {
		return apperrors.AccessDenied("Access denied: " + role + " role required")
	}
	return nil
}

// EligibilityResult is the outcome of the public verifier-eligibility check.
type EligibilityResult struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// CheckNCCREligibility reports whether an email address may sign up as an
// nccr_verifier, based on the configured domain allowlist.
func CheckNCCREligibility(email string, allowedDomains []string) EligibilityResult {
	if !validation.IsValidEmail(email) {
		return EligibilityResult{Eligible: false, Reason: "Invalid email address"}
	}
	domain := strings.ToLower(validation.EmailDomain(email))
	for _, d := range allowedDomains {
		if domain == d {
			return EligibilityResult{Eligible: true}
		}
	}
	return EligibilityResult{
		Eligible: false,
		Reason:   "Email domain is not authorized for NCCR verification",
	}
}
