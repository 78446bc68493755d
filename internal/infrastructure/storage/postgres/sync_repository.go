package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"steno/internal/domain/record"
	"steno/internal/domain/sync"
	"steno/internal/domain/team"
)

// SyncRepository binds one sync batch to one transaction. Each per-kind
// store it hands out runs against that transaction, and Find takes a row
// lock so two devices replaying the same record serialize instead of
// clobbering each other.
type SyncRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewSyncRepository(db *Storage, log *slog.Logger) *SyncRepository {
	return &SyncRepository{
		db:  db,
		log: log,
	}
}

func (r *SyncRepository) InTx(ctx context.Context, fn func(tx sync.Stores) error) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin sync tx: %w", err)
	}
	defer tx.Rollback(ctx)

	stores := sync.Stores{
		Sites:    &siteStore{tx: tx},
		Personas: &personaStore{tx: tx},
		Scripts:  &scriptStore{tx: tx},
	}
	if err := fn(stores); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type siteStore struct {
	tx pgx.Tx
}

func (s *siteStore) Find(ctx context.Context, id uuid.UUID) (record.Site, bool, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = $1 FOR UPDATE`, id)
	rec, err := scanSite(row)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return record.Site{}, false, nil
		}
		return record.Site{}, false, err
	}
	return *rec, true, nil
}

func (s *siteStore) Insert(ctx context.Context, actor team.TenantContext, rec record.Site) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = rec.UpdatedAt
	}
	_, err := s.tx.Exec(ctx,
		`INSERT INTO sites (id, team_id, user_id, hostname, label, created_at, updated_at, deleted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, actor.TeamID, actor.UserID, rec.Hostname, rec.Label, createdAt, rec.UpdatedAt, rec.DeletedAt)
	if err != nil {
		return fmt.Errorf("insert site: %w", err)
	}
	return nil
}

func (s *siteStore) Replace(ctx context.Context, rec record.Site) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE sites SET hostname = $2, label = $3, updated_at = $4, deleted_at = NULL WHERE id = $1`,
		rec.ID, rec.Hostname, rec.Label, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("replace site: %w", err)
	}
	return nil
}

func (s *siteStore) Tombstone(ctx context.Context, id uuid.UUID, updatedAt, deletedAt time.Time) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE sites SET updated_at = $2, deleted_at = $3 WHERE id = $1`,
		id, updatedAt, deletedAt)
	if err != nil {
		return fmt.Errorf("tombstone site: %w", err)
	}
	return nil
}

func (s *siteStore) ChangedSince(ctx context.Context, teamID int64, since *time.Time) ([]record.Site, error) {
	rows, err := s.tx.Query(ctx,
		`SELECT `+siteColumns+` FROM sites
		 WHERE team_id = $1 AND ($2::timestamptz IS NULL OR updated_at > $2)
		 ORDER BY updated_at`,
		teamID, since)
	if err != nil {
		return nil, fmt.Errorf("site changes: %w", err)
	}
	defer rows.Close()

	var out []record.Site
	for rows.Next() {
		rec, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type personaStore struct {
	tx pgx.Tx
}

func (s *personaStore) Find(ctx context.Context, id uuid.UUID) (record.Persona, bool, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE id = $1 FOR UPDATE`, id)
	rec, err := scanPersona(row)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return record.Persona{}, false, nil
		}
		return record.Persona{}, false, err
	}
	return *rec, true, nil
}

func (s *personaStore) Insert(ctx context.Context, actor team.TenantContext, rec record.Persona) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = rec.UpdatedAt
	}
	_, err := s.tx.Exec(ctx,
		`INSERT INTO personas (id, team_id, user_id, site_id, name, created_at, updated_at, deleted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, actor.TeamID, actor.UserID, rec.SiteID, rec.Name, createdAt, rec.UpdatedAt, rec.DeletedAt)
	if err != nil {
		return fmt.Errorf("insert persona: %w", err)
	}
	return nil
}

func (s *personaStore) Replace(ctx context.Context, rec record.Persona) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE personas SET site_id = $2, name = $3, updated_at = $4, deleted_at = NULL WHERE id = $1`,
		rec.ID, rec.SiteID, rec.Name, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("replace persona: %w", err)
	}
	return nil
}

func (s *personaStore) Tombstone(ctx context.Context, id uuid.UUID, updatedAt, deletedAt time.Time) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE personas SET updated_at = $2, deleted_at = $3 WHERE id = $1`,
		id, updatedAt, deletedAt)
	if err != nil {
		return fmt.Errorf("tombstone persona: %w", err)
	}
	return nil
}

func (s *personaStore) ChangedSince(ctx context.Context, teamID int64, since *time.Time) ([]record.Persona, error) {
	rows, err := s.tx.Query(ctx,
		`SELECT `+personaColumns+` FROM personas
		 WHERE team_id = $1 AND ($2::timestamptz IS NULL OR updated_at > $2)
		 ORDER BY updated_at`,
		teamID, since)
	if err != nil {
		return nil, fmt.Errorf("persona changes: %w", err)
	}
	defer rows.Close()

	var out []record.Persona
	for rows.Next() {
		rec, err := scanPersona(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scriptStore struct {
	tx pgx.Tx
}

func (s *scriptStore) Find(ctx context.Context, id uuid.UUID) (record.Script, bool, error) {
	row := s.tx.QueryRow(ctx,
		`SELECT `+scriptColumns+` FROM scripts WHERE id = $1 FOR UPDATE`, id)
	rec, err := scanScript(row)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return record.Script{}, false, nil
		}
		return record.Script{}, false, err
	}
	return *rec, true, nil
}

func (s *scriptStore) Insert(ctx context.Context, actor team.TenantContext, rec record.Script) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal script fields: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = rec.UpdatedAt
	}
	_, err = s.tx.Exec(ctx,
		`INSERT INTO scripts (id, team_id, user_id, site_id, persona_id, name, url_hint, created_by_name, fields, version, created_at, updated_at, deleted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, actor.TeamID, actor.UserID, rec.SiteID, rec.PersonaID, rec.Name, rec.URLHint,
		rec.CreatedByName, fieldsJSON, rec.Version, createdAt, rec.UpdatedAt, rec.DeletedAt)
	if err != nil {
		return fmt.Errorf("insert script: %w", err)
	}
	return nil
}

func (s *scriptStore) Replace(ctx context.Context, rec record.Script) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal script fields: %w", err)
	}
	_, err = s.tx.Exec(ctx,
		`UPDATE scripts SET site_id = $2, persona_id = $3, name = $4, url_hint = $5,
		        created_by_name = $6, fields = $7, version = $8, updated_at = $9, deleted_at = NULL
		 WHERE id = $1`,
		rec.ID, rec.SiteID, rec.PersonaID, rec.Name, rec.URLHint, rec.CreatedByName,
		fieldsJSON, rec.Version, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("replace script: %w", err)
	}
	return nil
}

func (s *scriptStore) Tombstone(ctx context.Context, id uuid.UUID, updatedAt, deletedAt time.Time) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE scripts SET updated_at = $2, deleted_at = $3 WHERE id = $1`,
		id, updatedAt, deletedAt)
	if err != nil {
		return fmt.Errorf("tombstone script: %w", err)
	}
	return nil
}

func (s *scriptStore) ChangedSince(ctx context.Context, teamID int64, since *time.Time) ([]record.Script, error) {
	rows, err := s.tx.Query(ctx,
		`SELECT `+scriptColumns+` FROM scripts
		 WHERE team_id = $1 AND ($2::timestamptz IS NULL OR updated_at > $2)
		 ORDER BY updated_at`,
		teamID, since)
	if err != nil {
		return nil, fmt.Errorf("script changes: %w", err)
	}
	defer rows.Close()

	var out []record.Script
	for rows.Next() {
		rec, err := scanScript(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
