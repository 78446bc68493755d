package sync

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"steno/internal/domain/record"
	"steno/internal/domain/team"
)

// Request is one client push: the cursor from the previous sync plus the
// locally changed records of each kind. Incoming records carry the
// client-assigned id, full payload and client-stamped timestamps; any
// tenant or author fields a client might send are ignored.
type Request struct {
	LastSyncedAt *time.Time
	Sites        []record.Site
	Personas     []record.Persona
	Scripts      []record.Script
}

// Response is the change feed back to the client: everything of the
// tenant, tombstones included, written after the request cursor, plus the
// new cursor.
type Response struct {
	SyncedAt time.Time
	Sites    []record.Site
	Personas []record.Persona
	Scripts  []record.Script
}

// Stores bundles the per-kind stores bound to one transaction.
type Stores struct {
	Sites    Store[record.Site]
	Personas Store[record.Persona]
	Scripts  Store[record.Script]
}

// Repository opens the atomic unit a whole sync batch runs in: either
// every reconciliation decision commits or none does.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Stores) error) error
}

type Servicer interface {
	Sync(ctx context.Context, tc team.TenantContext, req Request) (*Response, error)
}

type Service struct {
	repo  Repository
	clock record.Clock
	log   *slog.Logger
}

func NewService(repo Repository, clock record.Clock, log *slog.Logger) Servicer {
	return &Service{
		repo:  repo,
		clock: clock,
		log:   log.With("component", "sync_service"),
	}
}

// Sync runs the full unit of work for one authenticated, subscribed
// tenant: reconcile every incoming record across the three kinds inside a
// single transaction, then answer with the change feed computed from the
// cursor the request arrived with. Individual conflicts never error; they
// are resolved silently and only visible by diffing the returned feed.
func (s *Service) Sync(ctx context.Context, tc team.TenantContext, req Request) (*Response, error) {
	if !tc.Subscribed {
		return nil, ErrSubscriptionRequired
	}

	// The new cursor is wall-clock time captured before the feed queries
	// run, so a record committed while the response is being built is
	// still after the cursor and gets delivered on the next pull instead
	// of being skipped. Re-delivery is harmless: reconciliation is
	// idempotent.
	syncedAt := s.clock.Now().UTC()

	resp := &Response{SyncedAt: syncedAt}
	err := s.repo.InTx(ctx, func(tx Stores) error {
		if err := Reconcile(ctx, tx.Sites, tc, req.Sites); err != nil {
			return fmt.Errorf("reconcile sites: %w", err)
		}
		if err := Reconcile(ctx, tx.Personas, tc, req.Personas); err != nil {
			return fmt.Errorf("reconcile personas: %w", err)
		}
		if err := Reconcile(ctx, tx.Scripts, tc, req.Scripts); err != nil {
			return fmt.Errorf("reconcile scripts: %w", err)
		}

		// The feed uses the cursor supplied at the start of the request,
		// not one advanced mid-batch, so the response is a consistent
		// snapshot that includes the client's own just-applied writes.
		var err error
		if resp.Sites, err = tx.Sites.ChangedSince(ctx, tc.TeamID, req.LastSyncedAt); err != nil {
			return fmt.Errorf("site changes: %w", err)
		}
		if resp.Personas, err = tx.Personas.ChangedSince(ctx, tc.TeamID, req.LastSyncedAt); err != nil {
			return fmt.Errorf("persona changes: %w", err)
		}
		if resp.Scripts, err = tx.Scripts.ChangedSince(ctx, tc.TeamID, req.LastSyncedAt); err != nil {
			return fmt.Errorf("script changes: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("sync batch failed", "team_id", tc.TeamID, "user_id", tc.UserID, "error", err)
		return nil, err
	}

	s.log.Info("sync completed",
		"team_id", tc.TeamID,
		"user_id", tc.UserID,
		"pushed", len(req.Sites)+len(req.Personas)+len(req.Scripts),
		"pulled", len(resp.Sites)+len(resp.Personas)+len(resp.Scripts),
	)
	return resp, nil
}
