// Package auth implements credential verification, session token issuance
// and the ownership/active-status authorization guard.
package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/hoaxify/hoaxify-api/internal/shared"
	"github.com/hoaxify/hoaxify-api/internal/users"
)

// Service wraps credential verification business rules.
type Service struct {
	repo users.Repository
}

// NewService constructs a new Service.
func NewService(repo users.Repository) *Service {
	return &Service{repo: repo}
}

// Verify validates email/password credentials. Unknown email and wrong
// password return the same error so callers cannot enumerate accounts.
// A matching hash returns the user even when the account is inactive; acting
// on the inactive flag is the guard's decision, not the verifier's.
func (s *Service) Verify(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}
