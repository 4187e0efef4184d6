package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/catalog/internal/docstore"
	"github.com/atinyakov/catalog/internal/models"
)

// userDoc is the stored shape of a user; unlike models.User it serializes
// the password hash.
type userDoc struct {
	ID           string    `json:"id,omitempty"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// NormalizeEmail returns the form emails are stored and matched in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserRepository implements user operations on the users partition of a
// DocumentStore. Email uniqueness is enforced by the medium's unique index.
type UserRepository struct {
	// Store is the shared document store.
	Store DocumentStore
	now   func() time.Time
}

// NewUserRepository creates a UserRepository over store.
func NewUserRepository(store DocumentStore) *UserRepository {
	return &UserRepository{Store: store, now: time.Now}
}

// CreateUser stores a new user. A second user with the same email fails with
// docstore.ErrDuplicateKey.
func (r *UserRepository) CreateUser(ctx context.Context, in models.NewUser) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := NormalizeEmail(in.Email)
	switch {
	case username == "":
		return nil, docstore.Required("username")
	case email == "":
		return nil, docstore.Required("email")
	case in.PasswordHash == "":
		return nil, docstore.Required("passwordHash")
	}

	doc := userDoc{
		Username:     username,
		Email:        email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    r.now().UTC(),
	}
	id, err := r.Store.Insert(ctx, UsersPartition, doc)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	doc.ID = id

	u := doc.model()
	return &u, nil
}

// GetUser returns the user with id.
func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.Store.FindByID(ctx, UsersPartition, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	var stored userDoc
	if err := doc.Decode(&stored); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u := stored.model()
	return &u, nil
}

// ListUsers returns every user.
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	return r.findUsers(ctx, nil)
}

// FindUserByEmail returns the user registered with email, or
// docstore.ErrNotFound.
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, docstore.Required("email")
	}
	users, err := r.findUsers(ctx, docstore.Filter{"email": email})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("find user %q: %w", email, docstore.ErrNotFound)
	}
	return &users[0], nil
}

func (r *UserRepository) findUsers(ctx context.Context, filter docstore.Filter) ([]models.User, error) {
	docs, err := r.Store.FindAll(ctx, UsersPartition, filter)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	stored, err := docstore.DecodeAll[userDoc](docs)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	out := make([]models.User, 0, len(stored))
	for _, d := range stored {
		out = append(out, d.model())
	}
	return out, nil
}
