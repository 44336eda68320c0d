package service

import (
	"context"
	"errors"

	"github.com/hongminglow/marketplace-auth/internal/models"
	"github.com/hongminglow/marketplace-auth/internal/storage"
)

// ValidateSession checks the token and reloads the account so the result
// reflects its current state. Deactivated accounts are rejected even while
// their tokens are unexpired.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (SessionResult, error) {
	session, err := s.tokens.Validate(token)
	if err != nil {
		return SessionResult{}, ErrInvalidToken
	}

	if session.Role == models.RoleAdmin && session.AccountID == SyntheticAdminID {
		if s.adminPIN == "" {
			return SessionResult{}, ErrInvalidToken
		}
		return SessionResult{Profile: syntheticAdmin(), Role: models.RoleAdmin}, nil
	}

	store, ok := s.registry.Resolve(session.Role)
	if !ok {
		return SessionResult{}, ErrInvalidToken
	}
	account, err := store.FindByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return SessionResult{}, ErrInvalidToken
		}
		return SessionResult{}, unexpected("validate session lookup "+session.Role.String(), err)
	}
	if !account.Base().IsActive {
		return SessionResult{}, ErrInvalidToken
	}
	return SessionResult{Profile: account, Role: session.Role}, nil
}
