// Package user exposes the read side of the user table. Users are created
// by the seed command only.
package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

// Service lists and seeds users
type Service struct {
	repo contracts.UserRepository
	now  func() time.Time
}

// NewService creates a user service
func NewService(repos *contracts.Repositories) *Service {
	return &Service{repo: repos.Users, now: time.Now}
}

// Query is the raw listing filter from the request
type Query struct {
	Name     string
	Email    string
	Role     string
	JobTitle string
}

// List returns users matching every given filter, ordered by name
func (s *Service) List(ctx context.Context, q Query) ([]contracts.User, error) {
	filter := contracts.UserFilter{
		Name:  strings.TrimSpace(q.Name),
		Email: strings.TrimSpace(q.Email),
	}
	if q.Role != "" {
		role, err := contracts.ParseRole(q.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = role
	}
	if q.JobTitle != "" {
		jt, err := contracts.ParseJobTitle(q.JobTitle)
		if err != nil {
			return nil, err
		}
		filter.JobTitle = jt
	}

	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns one user
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*contracts.User, error) {
	return s.repo.Get(ctx, id)
}

// FindByEmail returns the user with the given address, case-insensitively
func (s *Service) FindByEmail(ctx context.Context, email string) (*contracts.User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// Seed inserts a user unless the email is taken. It reports whether a row was added.
func (s *Service) Seed(ctx context.Context, u contracts.User) (*contracts.User, bool, error) {
	addr, err := mail.ParseAddress(u.Email)
	if err != nil {
		return nil, false, contracts.Invalid("email", "must be a valid address")
	}
	u.Email = strings.ToLower(addr.Address)

	if existing, err := s.repo.GetByEmail(ctx, u.Email); err == nil {
		return existing, false, nil
	}

	if strings.TrimSpace(u.Name) == "" {
		return nil, false, contracts.Invalid("name", "must not be blank")
	}
	if _, err := contracts.ParseRole(string(u.Role)); err != nil {
		return nil, false, err
	}
	if u.JobTitle != "" {
		if _, err := contracts.ParseJobTitle(string(u.JobTitle)); err != nil {
			return nil, false, err
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return nil, false, fmt.Errorf("seed user: %w", err)
	}
	return &u, true, nil
}
