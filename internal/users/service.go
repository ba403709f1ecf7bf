package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/authgate/authgate/internal/models"
	"github.com/authgate/authgate/internal/oauth"
	"github.com/authgate/authgate/pkg/logger"
)

// Service owns the authority to create User records; nothing else inserts.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Reconcile maps a provider identity onto a durable User. An existing record
// for the email wins over whatever the provider asserted on this login
// (first-write-wins). A duplicate-key error on insert means a concurrent
// login created the record between our lookup and insert; the winner is
// re-read and returned instead of surfacing the conflict.
func (s *Service) Reconcile(ctx context.Context, identity *oauth.ProviderIdentity) (*models.User, error) {
	existing, err := s.repo.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if existing != nil {
		logger.Debugf("reconcile: existing user id=%s email=%s", existing.ID, existing.Email)
		return existing, nil
	}

	candidate := &models.User{
		ID:    uuid.NewString(),
		Email: identity.Email,
		Name:  identity.Name,
	}
	if err := s.repo.Insert(ctx, candidate); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			winner, ferr := s.repo.FindByEmail(ctx, identity.Email)
			if ferr != nil {
				return nil, fmt.Errorf("user re-read after duplicate insert: %w", ferr)
			}
			if winner != nil {
				logger.Debugf("reconcile: lost insert race, using existing id=%s", winner.ID)
				return winner, nil
			}
			return nil, fmt.Errorf("user insert: %w", err)
		}
		return nil, fmt.Errorf("user insert: %w", err)
	}
	logger.Infof("reconcile: created user id=%s email=%s", candidate.ID, candidate.Email)
	return candidate, nil
}
