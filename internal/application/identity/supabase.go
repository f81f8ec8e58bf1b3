package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"samudra-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// SupabaseProvider resolves identities against the hosted GoTrue API.
// The secret key must be the service_role key (admin user lookups fail with
// the anon key).
type SupabaseProvider struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

type supabaseUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"user_metadata"`
}

func (p *SupabaseProvider) httpClient() *http.Client {
	if p.Client == nil {
		p.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return p.Client
}

func (p *SupabaseProvider) do(ctx context.Context, method, path, bearer string, body interface{}) ([]byte, int, error) {
	if p.BaseURL == "" {
		return nil, 0, fmt.Errorf("identity: SUPABASE_URL is not set")
	}
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(b)
	}
	url := strings.TrimRight(p.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("apikey", p.SecretKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	return respBody, resp.StatusCode, nil
}

func toIdentity(u *supabaseUser) (*Identity, error) {
	uid, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, fmt.Errorf("identity: provider returned non-uuid user id %q", u.ID)
	}
	return &Identity{
		UserID: uid,
		Role:   u.UserMetadata.Role,
		Email:  u.Email,
		Name:   u.UserMetadata.Name,
	}, nil
}

// Authenticate resolves the caller's access token via GET /auth/v1/user.
func (p *SupabaseProvider) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperrors.Unauthenticated("No authorization token provided")
	}
	body, status, err := p.do(ctx, http.MethodGet, "/auth/v1/user", token, nil)
	if err != nil {
		return nil, apperrors.External("Identity provider unreachable", err)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, apperrors.Unauthenticated("Invalid or expired token")
	}
	if status < 200 || status >= 300 {
		return nil, apperrors.External("Identity provider error", fmt.Errorf("status %d body %s", status, body))
	}
	var u supabaseUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, apperrors.External("Identity provider response decode", err)
	}
	return toIdentity(&u)
}

// GetUserByID uses the admin endpoint with the service key as bearer.
func (p *SupabaseProvider) GetUserByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	body, status, err := p.do(ctx, http.MethodGet, "/auth/v1/admin/users/"+id.String(), p.SecretKey, nil)
	if err != nil {
		return nil, apperrors.External("Identity provider unreachable", err)
	}
	if status == http.StatusNotFound {
		return nil, apperrors.NotFound("User not found")
	}
	if status < 200 || status >= 300 {
		return nil, apperrors.External("Identity provider error", fmt.Errorf("status %d body %s", status, body))
	}
	var u supabaseUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, apperrors.External("Identity provider response decode", err)
	}
	return toIdentity(&u)
}

// CreateUser registers an account through the admin endpoint with the email
// pre-confirmed (no SMTP configured for the registry).
func (p *SupabaseProvider) CreateUser(ctx context.Context, email, password, name, role string) (*Identity, error) {
	payload := map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": map[string]string{"name": name, "role": role},
	}
	body, status, err := p.do(ctx, http.MethodPost, "/auth/v1/admin/users", p.SecretKey, payload)
	if err != nil {
		return nil, apperrors.External("Identity provider unreachable", err)
	}
	if status == http.StatusUnprocessableEntity || status == http.StatusConflict {
		return nil, apperrors.Validation("A user with this email already exists")
	}
	if status < 200 || status >= 300 {
		return nil, apperrors.External("Identity provider error", fmt.Errorf("status %d body %s", status, body))
	}
	var u supabaseUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, apperrors.External("Identity provider response decode", err)
	}
	return toIdentity(&u)
}
