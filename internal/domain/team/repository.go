package team

import "context"

// Repository is the persistence boundary for teams and memberships,
// implemented by the postgres storage layer.
type Repository interface {
	// Get returns the team by id.
	Get(ctx context.Context, teamID int64) (*Team, error)
	// MemberRole returns the role of userID inside teamID, or ErrNotMember.
	MemberRole(ctx context.Context, teamID, userID int64) (Role, error)
	// Subscribed reports whether the team has an active subscription.
	Subscribed(ctx context.Context, teamID int64) (bool, error)
}
