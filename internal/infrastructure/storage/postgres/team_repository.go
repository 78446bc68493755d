package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"steno/internal/domain/team"
)

type TeamRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewTeamRepository(db *Storage, log *slog.Logger) *TeamRepository {
	return &TeamRepository{
		db:  db,
		log: log,
	}
}

func (r *TeamRepository) Get(ctx context.Context, teamID int64) (*team.Team, error) {
	var t team.Team
	err := r.db.Pool().QueryRow(ctx,
		`SELECT id, owner_id, name, slug, plan_type, created_at, updated_at
		 FROM teams WHERE id = $1`, teamID).
		Scan(&t.ID, &t.OwnerID, &t.Name, &t.Slug, &t.PlanType, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, team.ErrNotFound
		}
		return nil, fmt.Errorf("query team: %w", err)
	}
	return &t, nil
}

func (r *TeamRepository) MemberRole(ctx context.Context, teamID, userID int64) (team.Role, error) {
	var role team.Role
	err := r.db.Pool().QueryRow(ctx,
		`SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", team.ErrNotMember
		}
		return "", fmt.Errorf("query membership: %w", err)
	}
	return role, nil
}

// Subscribed treats a subscription with no ends_at as open-ended.
func (r *TeamRepository) Subscribed(ctx context.Context, teamID int64) (bool, error) {
	var subscribed bool
	err := r.db.Pool().QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM subscriptions
		    WHERE team_id = $1 AND status = 'active'
		      AND (ends_at IS NULL OR ends_at > now())
		 )`, teamID).Scan(&subscribed)
	if err != nil {
		return false, fmt.Errorf("query subscription: %w", err)
	}
	return subscribed, nil
}
