package sync

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"steno/internal/domain/record"
	"steno/internal/domain/team"
)

// In-memory stores used by the reconciler and coordinator tests. They
// mirror the postgres stores' stamping rules: Insert takes tenant and
// author from the acting context, Replace keeps identity and created_at
// and lifts the tombstone, Tombstone leaves the payload untouched.

type memSiteStore struct {
	recs map[uuid.UUID]record.Site
}

func newMemSiteStore() *memSiteStore {
	return &memSiteStore{recs: make(map[uuid.UUID]record.Site)}
}

func (s *memSiteStore) Find(_ context.Context, id uuid.UUID) (record.Site, bool, error) {
	rec, ok := s.recs[id]
	return rec, ok, nil
}

func (s *memSiteStore) Insert(_ context.Context, actor team.TenantContext, rec record.Site) error {
	rec.TeamID = actor.TeamID
	rec.AuthorID = actor.UserID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	s.recs[rec.ID] = rec
	return nil
}

func (s *memSiteStore) Replace(_ context.Context, rec record.Site) error {
	cur := s.recs[rec.ID]
	rec.TeamID = cur.TeamID
	rec.AuthorID = cur.AuthorID
	rec.CreatedAt = cur.CreatedAt
	rec.DeletedAt = nil
	s.recs[rec.ID] = rec
	return nil
}

func (s *memSiteStore) Tombstone(_ context.Context, id uuid.UUID, updatedAt, deletedAt time.Time) error {
	cur := s.recs[id]
	cur.UpdatedAt = updatedAt
	cur.DeletedAt = &deletedAt
	s.recs[id] = cur
	return nil
}

func (s *memSiteStore) ChangedSince(_ context.Context, teamID int64, since *time.Time) ([]record.Site, error) {
	var out []record.Site
	for _, rec := range s.recs {
		if rec.TeamID != teamID {
			continue
		}
		if since != nil && !rec.UpdatedAt.After(*since) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

type memPersonaStore struct {
	recs map[uuid.UUID]record.Persona
}

func newMemPersonaStore() *memPersonaStore {
	return &memPersonaStore{recs: make(map[uuid.UUID]record.Persona)}
}

func (s *memPersonaStore) Find(_ context.Context, id uuid.UUID) (record.Persona, bool, error) {
	rec, ok := s.recs[id]
	return rec, ok, nil
}

func (s *memPersonaStore) Insert(_ context.Context, actor team.TenantContext, rec record.Persona) error {
	rec.TeamID = actor.TeamID
	rec.AuthorID = actor.UserID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	s.recs[rec.ID] = rec
	return nil
}

func (s *memPersonaStore) Replace(_ context.Context, rec record.Persona) error {
	cur := s.recs[rec.ID]
	rec.TeamID = cur.TeamID
	rec.AuthorID = cur.AuthorID
	rec.CreatedAt = cur.CreatedAt
	rec.DeletedAt = nil
	s.recs[rec.ID] = rec
	return nil
}

func (s *memPersonaStore) Tombstone(_ context.Context, id uuid.UUID, updatedAt, deletedAt time.Time) error {
	cur := s.recs[id]
	cur.UpdatedAt = updatedAt
	cur.DeletedAt = &deletedAt
	s.recs[id] = cur
	return nil
}

func (s *memPersonaStore) ChangedSince(_ context.Context, teamID int64, since *time.Time) ([]record.Persona, error) {
	var out []record.Persona
	for _, rec := range s.recs {
		if rec.TeamID != teamID {
			continue
		}
		if since != nil && !rec.UpdatedAt.After(*since) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

type memScriptStore struct {
	recs map[uuid.UUID]record.Script
}

func newMemScriptStore() *memScriptStore {
	return &memScriptStore{recs: make(map[uuid.UUID]record.Script)}
}

func (s *memScriptStore) Find(_ context.Context, id uuid.UUID) (record.Script, bool, error) {
	rec, ok := s.recs[id]
	return rec, ok, nil
}

func (s *memScriptStore) Insert(_ context.Context, actor team.TenantContext, rec record.Script) error {
	rec.TeamID = actor.TeamID
	rec.AuthorID = actor.UserID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	s.recs[rec.ID] = rec
	return nil
}

func (s *memScriptStore) Replace(_ context.Context, rec record.Script) error {
	cur := s.recs[rec.ID]
	rec.TeamID = cur.TeamID
	rec.AuthorID = cur.AuthorID
	rec.CreatedAt = cur.CreatedAt
	rec.DeletedAt = nil
	s.recs[rec.ID] = rec
	return nil
}

func (s *memScriptStore) Tombstone(_ context.Context, id uuid.UUID, updatedAt, deletedAt time.Time) error {
	cur := s.recs[id]
	cur.UpdatedAt = updatedAt
	cur.DeletedAt = &deletedAt
	s.recs[id] = cur
	return nil
}

func (s *memScriptStore) ChangedSince(_ context.Context, teamID int64, since *time.Time) ([]record.Script, error) {
	var out []record.Script
	for _, rec := range s.recs {
		if rec.TeamID != teamID {
			continue
		}
		if since != nil && !rec.UpdatedAt.After(*since) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

// memRepo satisfies Repository without transactional semantics; rollback
// behavior belongs to the postgres layer.
type memRepo struct {
	sites    *memSiteStore
	personas *memPersonaStore
	scripts  *memScriptStore
}

func newMemRepo() *memRepo {
	return &memRepo{
		sites:    newMemSiteStore(),
		personas: newMemPersonaStore(),
		scripts:  newMemScriptStore(),
	}
}

func (r *memRepo) InTx(ctx context.Context, fn func(tx Stores) error) error {
	return fn(Stores{Sites: r.sites, Personas: r.personas, Scripts: r.scripts})
}
