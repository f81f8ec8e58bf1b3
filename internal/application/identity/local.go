package identity

import (
	"context"
	"sync"

	"samudra-backend/internal/domain"
	"samudra-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LocalProvider is a self-contained Provider for development and tests,
// backed by the Users table and bcrypt. Tokens are opaque and held in
// memory, so they do not survive a restart.
type LocalProvider struct {
	DB *gorm.DB

	mu     sync.RWMutex
	tokens map[string]uuid.UUID
}

func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{DB: db, tokens: make(map[string]uuid.UUID)}
}

func (p *LocalProvider) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperrors.Unauthenticated("No authorization token provided")
	}
	p.mu.RLock()
	userID, ok := p.tokens[token]
	p.mu.RUnlock()
	if !ok {
		return nil, apperrors.Unauthenticated("Invalid or expired token")
	}
	return p.GetUserByID(ctx, userID)
}

func (p *LocalProvider) GetUserByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	var u domain.User
	if err := p.DB.WithContext(ctx).Where("user_id = ?", id).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, err
	}
	return &Identity{UserID: u.UserID, Role: u.Role, Email: u.Email, Name: u.Fullname}, nil
}

func (p *LocalProvider) CreateUser(ctx context.Context, email, password, name, role string) (*Identity, error) {
	var existing domain.User
	err := p.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apperrors.Validation("A user with this email already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		Fullname:     name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := p.DB.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &Identity{UserID: u.UserID, Role: u.Role, Email: u.Email, Name: u.Fullname}, nil
}

// Login verifies credentials and issues an opaque bearer token.
func (p *LocalProvider) Login(ctx context.Context, email, password string) (string, *Identity, error) {
	var u domain.User
	if err := p.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil, apperrors.Unauthenticated("Invalid email or password")
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, apperrors.Unauthenticated("Invalid email or password")
	}
	token := uuid.New().String()
	p.mu.Lock()
	p.tokens[token] = u.UserID
	p.mu.Unlock()
	return token, &Identity{UserID: u.UserID, Role: u.Role, Email: u.Email, Name: u.Fullname}, nil
}

// IssueToken registers a token for an existing user without a password
// check. Test helper for wiring authenticated requests.
func (p *LocalProvider) IssueToken(userID uuid.UUID) string {
	token := uuid.New().String()
	p.mu.Lock()
	p.tokens[token] = userID
	p.mu.Unlock()
	return token
}
