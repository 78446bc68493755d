package team

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
)

type Servicer interface {
	ResolveContext(ctx context.Context, teamID, userID int64) (TenantContext, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "team_service"),
	}
}

// ResolveContext builds the immutable TenantContext for one request:
// membership role plus the subscription gate, both read from the
// authoritative store. Callers below the HTTP layer receive this value
// instead of reading session state.
func (s *Service) ResolveContext(ctx context.Context, teamID, userID int64) (TenantContext, error) {
	role, err := s.repo.MemberRole(ctx, teamID, userID)
	if err != nil {
		return TenantContext{}, fmt.Errorf("resolve member role: %w", err)
	}

	subscribed, err := s.repo.Subscribed(ctx, teamID)
	if err != nil {
		return TenantContext{}, fmt.Errorf("resolve subscription: %w", err)
	}

	return TenantContext{
		TeamID:     teamID,
		UserID:     userID,
		Role:       role,
		Subscribed: subscribed,
	}, nil
}
