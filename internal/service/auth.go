// Package service provides the catalog and account business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/catalog/internal/docstore"
	"github.com/atinyakov/catalog/internal/models"
)

// ErrInvalidCredentials is returned by Login when the email is unknown or the
// password does not match. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// minPasswordLen is the shortest password Register accepts.
const minPasswordLen = 6

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// CreateUser stores a user; a taken email yields docstore.ErrDuplicateKey.
	CreateUser(ctx context.Context, in models.NewUser) (*models.User, error)
	// FindUserByEmail returns the user or docstore.ErrNotFound.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser returns the user with id.
	GetUser(ctx context.Context, id string) (*models.User, error)
	// ListUsers returns every user.
	ListUsers(ctx context.Context) ([]models.User, error)
}

// AuthService implements registration and login by delegating
// to a UserRepository.
type AuthService struct {
	// repo performs the data-layer operations.
	repo UserRepository
	// cost is the bcrypt work factor.
	cost int
}

// NewAuthService constructs an AuthService using the provided repository.
func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{repo: repo, cost: bcrypt.DefaultCost}
}

// Register validates reg, hashes the password and stores the user.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	switch {
	case strings.TrimSpace(reg.Username) == "":
		return nil, docstore.Required("username")
	case !strings.Contains(reg.Email, "@"):
		return nil, &docstore.ValidationError{Field: "email", Reason: "must be an email address"}
	case len(reg.Password) < minPasswordLen:
		return nil, &docstore.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLen)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, models.NewUser{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
	})
}

// Login returns the user whose email and password match creds.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	u, err := s.repo.FindUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrValidation) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetUser returns the user with id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListUsers returns every registered user.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}
