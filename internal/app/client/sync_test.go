package client

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steno/internal/domain/record"
	"steno/internal/domain/sync"
	"steno/internal/domain/team"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestStorage_SaveSiteMarksDirty(t *testing.T) {
	storage := newTestStorage(t)

	now := time.Now().UTC()
	site := record.Site{ID: uuid.New(), Hostname: "portal.example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, storage.SaveSite(site))

	dirty, err := storage.DirtySites()
	require.NoError(t, err)
	require.Len(t, dirty, 1)
	assert.Equal(t, site.ID, dirty[0].ID)
}

func TestStorage_FeedInsertLandsClean(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	now := time.Now().UTC()
	remote := record.Site{ID: uuid.New(), Hostname: "remote.example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, sync.Reconcile(ctx, storage.SiteStore(), team.TenantContext{}, []record.Site{remote}))

	dirty, err := storage.DirtySites()
	require.NoError(t, err)
	assert.Empty(t, dirty)

	got, found, err := storage.SiteStore().Find(ctx, remote.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "remote.example.com", got.Hostname)
}

func TestStorage_NewerFeedOverwritesLocal(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	id := uuid.New()
	local := record.Site{ID: id, Hostname: "old.example.com", CreatedAt: base, UpdatedAt: base}
	require.NoError(t, storage.SaveSite(local))

	remote := local
	remote.Hostname = "new.example.com"
	remote.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, sync.Reconcile(ctx, storage.SiteStore(), team.TenantContext{}, []record.Site{remote}))

	got, found, err := storage.SiteStore().Find(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "new.example.com", got.Hostname)
}

func TestStorage_EqualTimestampKeepsLocal(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	id := uuid.New()
	local := record.Site{ID: id, Hostname: "mine.example.com", CreatedAt: base, UpdatedAt: base}
	require.NoError(t, storage.SaveSite(local))

	// The feed echoes our own push at the same stamp; nothing changes.
	echo := local
	echo.Hostname = "echo.example.com"
	require.NoError(t, sync.Reconcile(ctx, storage.SiteStore(), team.TenantContext{}, []record.Site{echo}))

	got, _, err := storage.SiteStore().Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "mine.example.com", got.Hostname)
}

func TestStorage_FeedTombstoneApplies(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	id := uuid.New()
	script := record.Script{
		ID: id, Name: "checkout", Fields: []record.Field{{Selector: "#email", Value: "x"}},
		Version: 1, CreatedAt: base, UpdatedAt: base,
	}
	require.NoError(t, storage.SaveScript(script))

	deletedAt := base.Add(time.Minute)
	tombstoned := script
	tombstoned.UpdatedAt = deletedAt
	tombstoned.DeletedAt = &deletedAt
	require.NoError(t, sync.Reconcile(ctx, storage.ScriptStore(), team.TenantContext{}, []record.Script{tombstoned}))

	got, found, err := storage.ScriptStore().Find(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, got.DeletedAt)
	// The payload survives under the tombstone.
	assert.Equal(t, "checkout", got.Name)
}

func TestStorage_CursorRoundTrip(t *testing.T) {
	storage := newTestStorage(t)

	cursor, err := storage.Cursor()
	require.NoError(t, err)
	assert.Nil(t, cursor)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, storage.SetCursor(at))

	cursor, err = storage.Cursor()
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.True(t, cursor.Equal(at))

	// Overwrite advances, never appends.
	require.NoError(t, storage.SetCursor(at.Add(time.Hour)))
	cursor, err = storage.Cursor()
	require.NoError(t, err)
	assert.True(t, cursor.Equal(at.Add(time.Hour)))
}

func TestStorage_MarkCleanAfterPush(t *testing.T) {
	storage := newTestStorage(t)

	now := time.Now().UTC()
	persona := record.Persona{ID: uuid.New(), Name: "QA", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, storage.SavePersona(persona))

	require.NoError(t, storage.MarkClean("personas", []uuid.UUID{persona.ID}))

	dirty, err := storage.DirtyPersonas()
	require.NoError(t, err)
	assert.Empty(t, dirty)
}
