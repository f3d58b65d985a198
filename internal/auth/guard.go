package auth

import (
	"context"

	"github.com/hoaxify/hoaxify-api/internal/shared"
	"github.com/hoaxify/hoaxify-api/internal/users"
)

// Guard decides whether an authenticated identity may act on a target user.
type Guard struct {
	tokens   TokenStore
	verifier *Service
	repo     users.Repository
}

// NewGuard constructs a Guard.
func NewGuard(tokens TokenStore, verifier *Service, repo users.Repository) *Guard {
	return &Guard{tokens: tokens, verifier: verifier, repo: repo}
}

// Authorize resolves the supplied credentials and checks ownership and
// active status, in that order, short-circuiting on first failure. Every
// failure collapses into shared.ErrForbidden: missing credentials, dead
// token, wrong password, nonexistent target, wrong owner and inactive
// account are indistinguishable to the caller.
func (g *Guard) Authorize(ctx context.Context, creds shared.Credentials, targetID int64) (*users.User, error) {
	if creds.Empty() {
		return nil, shared.ErrForbidden
	}

	var user *users.User
	switch {
	case creds.HasToken():
		userID, err := g.tokens.Resolve(ctx, creds.Token)
		if err != nil {
			return nil, shared.ErrForbidden
		}
		user, err = g.repo.FindByID(ctx, userID)
		if err != nil {
			return nil, shared.ErrForbidden
		}
	default:
		var err error
		user, err = g.verifier.Verify(ctx, creds.Email, creds.Password)
		if err != nil {
			return nil, shared.ErrForbidden
		}
	}

	if user.ID != targetID {
		return nil, shared.ErrForbidden
	}
	if user.Inactive {
		return nil, shared.ErrForbidden
	}
	return user, nil
}
