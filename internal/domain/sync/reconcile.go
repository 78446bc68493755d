package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"steno/internal/domain/record"
	"steno/internal/domain/team"
)

// Store is the per-kind persistence surface the reconciler and change
// feed run against. On the server every method is bound to the single
// transaction carrying the whole batch; the client binds the same
// interface to its local sqlite database.
type Store[R record.Syncable] interface {
	// Find returns the authoritative record by id, tombstoned records
	// included. The lookup is by id alone, not scoped by tenant: ids are
	// client-generated UUIDs and the identifier space is assumed
	// collision-free (a documented, deliberately preserved gap). Server
	// implementations lock the row for the rest of the transaction.
	Find(ctx context.Context, id uuid.UUID) (R, bool, error)
	// Insert stores a record that has no authoritative version yet. The
	// tenant and author are stamped from the acting context, never from
	// the incoming payload. The record's own timestamps are kept, the
	// tombstone included, so a created-then-deleted-while-offline record
	// lands already tombstoned.
	Insert(ctx context.Context, actor team.TenantContext, rec R) error
	// Replace overwrites the full payload and updated_at with the
	// incoming version and clears any tombstone.
	Replace(ctx context.Context, rec R) error
	// Tombstone marks the record deleted, leaving its payload as-is.
	Tombstone(ctx context.Context, id uuid.UUID, updatedAt, deletedAt time.Time) error
	// ChangedSince returns every record of the tenant, tombstoned
	// included, whose updated_at is strictly after since. A nil cursor
	// returns everything.
	ChangedSince(ctx context.Context, teamID int64, since *time.Time) ([]R, error)
}

// Reconcile applies a batch of client records to the authoritative store
// using whole-record last-writer-wins:
//
//   - unknown id: insert under the acting tenant, tombstone preserved;
//   - incoming strictly newer: tombstone wins over payload, otherwise the
//     payload is replaced wholesale and any tombstone lifted;
//   - incoming equal or older: the authoritative side wins silently. The
//     client learns the surviving version from the returned change feed.
//
// Ties going to the authoritative side makes replaying an identical batch
// a strict no-op, so failed syncs are safely retried from scratch.
func Reconcile[R record.Syncable](ctx context.Context, store Store[R], actor team.TenantContext, incoming []R) error {
	for _, in := range incoming {
		current, found, err := store.Find(ctx, in.RecordID())
		if err != nil {
			return fmt.Errorf("find %s: %w", in.RecordID(), err)
		}

		switch {
		case !found:
			if err := store.Insert(ctx, actor, in); err != nil {
				return fmt.Errorf("insert %s: %w", in.RecordID(), err)
			}
		case in.ModifiedAt().After(current.ModifiedAt()):
			if at := in.TombstoneAt(); at != nil {
				if err := store.Tombstone(ctx, in.RecordID(), in.ModifiedAt(), *at); err != nil {
					return fmt.Errorf("tombstone %s: %w", in.RecordID(), err)
				}
			} else if err := store.Replace(ctx, in); err != nil {
				return fmt.Errorf("replace %s: %w", in.RecordID(), err)
			}
		default:
			// Authoritative copy is at least as new; nothing to do.
		}
	}
	return nil
}
