package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"steno/internal/domain/record"
	"steno/internal/domain/sync"
	"steno/internal/domain/team"
)

// SyncService runs one full sync round trip: push every dirty row with
// its local timestamps, then fold the returned change feed into the
// local database with the same last-writer-wins reconciler the server
// runs. A record that lost on the server comes back in the feed with the
// surviving version and silently overwrites the local copy.
type SyncService struct {
	app *App
	log *slog.Logger
}

// SyncResult summarizes one completed sync for the CLI.
type SyncResult struct {
	Uploaded   int
	Downloaded int
	SyncedAt   time.Time
	Duration   time.Duration
}

func NewSyncService(app *App) *SyncService {
	return &SyncService{
		app: app,
		log: app.log.With("component", "sync"),
	}
}

func (s *SyncService) Run(ctx context.Context) (*SyncResult, error) {
	start := time.Now()

	cursor, err := s.app.storage.Cursor()
	if err != nil {
		return nil, fmt.Errorf("load cursor: %w", err)
	}

	dirtySites, err := s.app.storage.DirtySites()
	if err != nil {
		return nil, fmt.Errorf("collect sites: %w", err)
	}
	dirtyPersonas, err := s.app.storage.DirtyPersonas()
	if err != nil {
		return nil, fmt.Errorf("collect personas: %w", err)
	}
	dirtyScripts, err := s.app.storage.DirtyScripts()
	if err != nil {
		return nil, fmt.Errorf("collect scripts: %w", err)
	}

	resp, err := s.app.http.Sync(ctx, SyncPayload{
		LastSyncedAt: cursor,
		Sites:        dirtySites,
		Personas:     dirtyPersonas,
		Scripts:      dirtyScripts,
	})
	if err != nil {
		return nil, err
	}

	// Apply the feed through the shared reconciler. The feed echoes our
	// own pushed records at identical timestamps, which ties resolve in
	// favor of the local row, so the pass is a no-op for them.
	if err := s.applyFeed(ctx, resp); err != nil {
		return nil, fmt.Errorf("apply feed: %w", err)
	}

	if err := s.markPushed(dirtySites, dirtyPersonas, dirtyScripts); err != nil {
		return nil, err
	}
	if err := s.app.storage.SetCursor(resp.SyncedAt); err != nil {
		return nil, err
	}

	result := &SyncResult{
		Uploaded:   len(dirtySites) + len(dirtyPersonas) + len(dirtyScripts),
		Downloaded: len(resp.Sites) + len(resp.Personas) + len(resp.Scripts),
		SyncedAt:   resp.SyncedAt,
		Duration:   time.Since(start),
	}

	s.log.Info("sync completed",
		"uploaded", result.Uploaded,
		"downloaded", result.Downloaded,
		"cursor", result.SyncedAt,
	)
	return result, nil
}

func (s *SyncService) applyFeed(ctx context.Context, feed *SyncPayload) error {
	local := team.TenantContext{}
	if err := sync.Reconcile(ctx, s.app.storage.SiteStore(), local, feed.Sites); err != nil {
		return err
	}
	if err := sync.Reconcile(ctx, s.app.storage.PersonaStore(), local, feed.Personas); err != nil {
		return err
	}
	return sync.Reconcile(ctx, s.app.storage.ScriptStore(), local, feed.Scripts)
}

func (s *SyncService) markPushed(sites []record.Site, personas []record.Persona, scripts []record.Script) error {
	siteIDs := make([]uuid.UUID, 0, len(sites))
	for _, r := range sites {
		siteIDs = append(siteIDs, r.ID)
	}
	if err := s.app.storage.MarkClean("sites", siteIDs); err != nil {
		return err
	}

	personaIDs := make([]uuid.UUID, 0, len(personas))
	for _, r := range personas {
		personaIDs = append(personaIDs, r.ID)
	}
	if err := s.app.storage.MarkClean("personas", personaIDs); err != nil {
		return err
	}

	scriptIDs := make([]uuid.UUID, 0, len(scripts))
	for _, r := range scripts {
		scriptIDs = append(scriptIDs, r.ID)
	}
	return s.app.storage.MarkClean("scripts", scriptIDs)
}
