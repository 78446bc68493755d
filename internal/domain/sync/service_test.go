package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"steno/internal/domain/record"
	"steno/internal/domain/team"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func fixedClock(t time.Time) record.Clock {
	return record.ClockFunc(func() time.Time { return t })
}

func TestSync_RequiresSubscription(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, fixedClock(base), testLogger())

	free := team.TenantContext{TeamID: 1, UserID: 10, Role: team.RoleOwner, Subscribed: false}
	_, err := svc.Sync(context.Background(), free, Request{
		Scripts: []record.Script{script(uuid.New(), "Blocked", base)},
	})

	require.ErrorIs(t, err, ErrSubscriptionRequired)
	assert.Empty(t, repo.scripts.recs, "the gate must fire before any reconciliation")
}

func TestSync_ReturnsClockCursorNotMaxUpdatedAt(t *testing.T) {
	repo := newMemRepo()
	serverNow := base.Add(time.Hour)
	svc := NewService(repo, fixedClock(serverNow), testLogger())

	// Client clock runs far ahead of the server.
	resp, err := svc.Sync(context.Background(), actor, Request{
		Scripts: []record.Script{script(uuid.New(), "Future", base.Add(48*time.Hour))},
	})
	require.NoError(t, err)

	assert.Equal(t, serverNow, resp.SyncedAt, "cursor is the server clock, never max(updated_at)")
}

func TestSync_FirstSyncReturnsEverythingIncludingTombstones(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, fixedClock(base.Add(time.Hour)), testLogger())
	ctx := context.Background()

	deletedAt := base
	dead := record.Site{ID: uuid.New(), Hostname: "old.example.com", UpdatedAt: base, DeletedAt: &deletedAt}
	live := record.Site{ID: uuid.New(), Hostname: "app.example.com", UpdatedAt: base.Add(time.Minute)}
	_, err := svc.Sync(ctx, actor, Request{Sites: []record.Site{dead, live}})
	require.NoError(t, err)

	// Fresh device: nil cursor pulls the full state, tombstones included.
	resp, err := svc.Sync(ctx, actor, Request{})
	require.NoError(t, err)

	require.Len(t, resp.Sites, 2)
	var tombstones int
	for _, s := range resp.Sites {
		if s.DeletedAt != nil {
			tombstones++
		}
	}
	assert.Equal(t, 1, tombstones)
}

func TestSync_FeedUsesRequestCursor(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, fixedClock(base.Add(time.Hour)), testLogger())
	ctx := context.Background()

	old := record.Persona{ID: uuid.New(), Name: "Old", UpdatedAt: base.Add(-time.Hour)}
	fresh := record.Persona{ID: uuid.New(), Name: "Fresh", UpdatedAt: base.Add(time.Minute)}
	_, err := svc.Sync(ctx, actor, Request{Personas: []record.Persona{old, fresh}})
	require.NoError(t, err)

	cursor := base
	resp, err := svc.Sync(ctx, actor, Request{LastSyncedAt: &cursor})
	require.NoError(t, err)

	require.Len(t, resp.Personas, 1)
	assert.Equal(t, "Fresh", resp.Personas[0].Name)
}

// The response reflects the client's own just-applied writes: pushing a
// record and pulling with the same request must hand it straight back.
func TestSync_ResponseIncludesOwnWrites(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, fixedClock(base.Add(time.Hour)), testLogger())

	id := uuid.New()
	cursor := base.Add(-time.Hour)
	resp, err := svc.Sync(context.Background(), actor, Request{
		LastSyncedAt: &cursor,
		Scripts:      []record.Script{script(id, "Mine", base)},
	})
	require.NoError(t, err)

	require.Len(t, resp.Scripts, 1)
	assert.Equal(t, id, resp.Scripts[0].ID)
}

func TestSync_ConflictResolvedSilently(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, fixedClock(base.Add(time.Hour)), testLogger())
	ctx := context.Background()

	id := uuid.New()
	_, err := svc.Sync(ctx, actor, Request{Scripts: []record.Script{script(id, "Server", base)}})
	require.NoError(t, err)

	// A stale client write loses without an error; the feed carries the
	// surviving version back.
	resp, err := svc.Sync(ctx, actor, Request{Scripts: []record.Script{script(id, "Client", base.Add(-10*time.Minute))}})
	require.NoError(t, err)

	require.Len(t, resp.Scripts, 1)
	assert.Equal(t, "Server", resp.Scripts[0].Name)

	got, _, _ := repo.scripts.Find(ctx, id)
	assert.Equal(t, "Server", got.Name)
}

func TestSync_NewerClientWriteWinsEndToEnd(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, fixedClock(base.Add(time.Hour)), testLogger())
	ctx := context.Background()

	id := uuid.New()
	_, err := svc.Sync(ctx, actor, Request{Scripts: []record.Script{script(id, "Server", base)}})
	require.NoError(t, err)

	resp, err := svc.Sync(ctx, actor, Request{Scripts: []record.Script{script(id, "Client", base.Add(10*time.Minute))}})
	require.NoError(t, err)

	require.Len(t, resp.Scripts, 1)
	assert.Equal(t, "Client", resp.Scripts[0].Name)

	got, _, _ := repo.scripts.Find(ctx, id)
	assert.Equal(t, "Client", got.Name)
}

// The free-tier script cap guards the direct create endpoint only; a team
// already at the cap can still receive more scripts through sync.
func TestSync_BypassesScriptQuota(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, fixedClock(base.Add(time.Hour)), testLogger())
	ctx := context.Background()

	var batch []record.Script
	for i := 0; i < 6; i++ {
		batch = append(batch, script(uuid.New(), "Script", base.Add(time.Duration(i)*time.Second)))
	}
	_, err := svc.Sync(ctx, actor, Request{Scripts: batch})
	require.NoError(t, err)
	assert.Len(t, repo.scripts.recs, 6)
}

func TestSync_TenantScopedFeed(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, fixedClock(base.Add(time.Hour)), testLogger())
	ctx := context.Background()

	_, err := svc.Sync(ctx, actor, Request{Sites: []record.Site{{ID: uuid.New(), Hostname: "one.example.com", UpdatedAt: base}}})
	require.NoError(t, err)

	other := team.TenantContext{TeamID: 2, UserID: 20, Role: team.RoleOwner, Subscribed: true}
	resp, err := svc.Sync(ctx, other, Request{})
	require.NoError(t, err)

	assert.Empty(t, resp.Sites, "a tenant's feed never leaks another tenant's records")
}
