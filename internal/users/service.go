package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/groupchat/groupchat/internal/models"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("user already exists")
)

// Service encapsulates account business logic: credential verification and
// account CRUD. Password hashes never leave this package.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Verify checks email/password against the stored account. The email match is
// exact and case-sensitive. On success the identity is returned without the
// password hash.
func (s *Service) Verify(ctx context.Context, email, password string) (models.Identity, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return models.Identity{}, fmt.Errorf("lookup account: %w", err)
	}
	if u == nil {
		return models.Identity{}, ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return models.Identity{}, ErrInvalidCredentials
	}
	return u.Identity(), nil
}

// Create registers a new account with a bcrypt-hashed password. Returns the
// existing account alongside ErrAlreadyExists when the email is taken.
func (s *Service) Create(ctx context.Context, username, email, password, role string) (*models.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if existing != nil {
		existing.Password = ""
		return existing, ErrAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	created, err := s.repo.Insert(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	created.Password = ""
	return created, nil
}

// Edit updates username and role, and rehashes the password when a new one is
// supplied.
func (s *Service) Edit(ctx context.Context, id, username, password, role string) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	u.Username = username
	u.Role = role
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Password = string(hash)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	u.Password = ""
	return u, nil
}

// GetByID returns the account or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// List returns all accounts with password hashes cleared.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	us, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	for _, u := range us {
		u.Password = ""
	}
	return us, nil
}
