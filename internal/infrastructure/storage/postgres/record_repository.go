package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"steno/internal/domain/record"
)

// RecordRepository serves the direct CRUD endpoints. Lookups see live
// rows only; deletes write tombstones and detach dependents, mirroring
// the delete-nulling relationship between sites and their dependents.
type RecordRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewRecordRepository(db *Storage, log *slog.Logger) *RecordRepository {
	return &RecordRepository{
		db:  db,
		log: log,
	}
}

const siteColumns = `id, team_id, user_id, hostname, label, created_at, updated_at, deleted_at`

func scanSite(row pgx.Row) (*record.Site, error) {
	var s record.Site
	err := row.Scan(&s.ID, &s.TeamID, &s.AuthorID, &s.Hostname, &s.Label, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, record.ErrNotFound
		}
		return nil, fmt.Errorf("scan site: %w", err)
	}
	return &s, nil
}

func (r *RecordRepository) ListSites(ctx context.Context, teamID int64) ([]record.Site, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE team_id = $1 AND deleted_at IS NULL ORDER BY created_at`,
		teamID)
	if err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}
	defer rows.Close()

	var sites []record.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *s)
	}
	return sites, rows.Err()
}

func (r *RecordRepository) GetSite(ctx context.Context, id uuid.UUID) (*record.Site, error) {
	row := r.db.Pool().QueryRow(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanSite(row)
}

func (r *RecordRepository) CreateSite(ctx context.Context, s *record.Site) error {
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO sites (id, team_id, user_id, hostname, label, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.TeamID, s.AuthorID, s.Hostname, s.Label, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert site: %w", err)
	}
	return nil
}

func (r *RecordRepository) UpdateSite(ctx context.Context, s *record.Site) error {
	_, err := r.db.Pool().Exec(ctx,
		`UPDATE sites SET hostname = $2, label = $3, updated_at = $4 WHERE id = $1`,
		s.ID, s.Hostname, s.Label, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update site: %w", err)
	}
	return nil
}

func (r *RecordRepository) DeleteSite(ctx context.Context, s *record.Site) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete site: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE sites SET updated_at = $2, deleted_at = $3 WHERE id = $1`,
		s.ID, s.UpdatedAt, s.DeletedAt); err != nil {
		return fmt.Errorf("tombstone site: %w", err)
	}
	// Detach dependents instead of cascading.
	if _, err := tx.Exec(ctx,
		`UPDATE personas SET site_id = NULL WHERE site_id = $1`, s.ID); err != nil {
		return fmt.Errorf("detach personas: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE scripts SET site_id = NULL WHERE site_id = $1`, s.ID); err != nil {
		return fmt.Errorf("detach scripts: %w", err)
	}
	return tx.Commit(ctx)
}

const personaColumns = `id, team_id, user_id, site_id, name, created_at, updated_at, deleted_at`

func scanPersona(row pgx.Row) (*record.Persona, error) {
	var p record.Persona
	err := row.Scan(&p.ID, &p.TeamID, &p.AuthorID, &p.SiteID, &p.Name, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, record.ErrNotFound
		}
		return nil, fmt.Errorf("scan persona: %w", err)
	}
	return &p, nil
}

func (r *RecordRepository) ListPersonas(ctx context.Context, teamID int64) ([]record.Persona, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE team_id = $1 AND deleted_at IS NULL ORDER BY created_at`,
		teamID)
	if err != nil {
		return nil, fmt.Errorf("query personas: %w", err)
	}
	defer rows.Close()

	var personas []record.Persona
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, err
		}
		personas = append(personas, *p)
	}
	return personas, rows.Err()
}

func (r *RecordRepository) GetPersona(ctx context.Context, id uuid.UUID) (*record.Persona, error) {
	row := r.db.Pool().QueryRow(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanPersona(row)
}

func (r *RecordRepository) CreatePersona(ctx context.Context, p *record.Persona) error {
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO personas (id, team_id, user_id, site_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.TeamID, p.AuthorID, p.SiteID, p.Name, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert persona: %w", err)
	}
	return nil
}

func (r *RecordRepository) UpdatePersona(ctx context.Context, p *record.Persona) error {
	_, err := r.db.Pool().Exec(ctx,
		`UPDATE personas SET site_id = $2, name = $3, updated_at = $4 WHERE id = $1`,
		p.ID, p.SiteID, p.Name, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update persona: %w", err)
	}
	return nil
}

func (r *RecordRepository) DeletePersona(ctx context.Context, p *record.Persona) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete persona: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE personas SET updated_at = $2, deleted_at = $3 WHERE id = $1`,
		p.ID, p.UpdatedAt, p.DeletedAt); err != nil {
		return fmt.Errorf("tombstone persona: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE scripts SET persona_id = NULL WHERE persona_id = $1`, p.ID); err != nil {
		return fmt.Errorf("detach scripts: %w", err)
	}
	return tx.Commit(ctx)
}

const scriptColumns = `id, team_id, user_id, site_id, persona_id, name, url_hint, created_by_name, fields, version, created_at, updated_at, deleted_at`

func scanScript(row pgx.Row) (*record.Script, error) {
	var s record.Script
	var fieldsJSON []byte
	err := row.Scan(&s.ID, &s.TeamID, &s.AuthorID, &s.SiteID, &s.PersonaID, &s.Name,
		&s.URLHint, &s.CreatedByName, &fieldsJSON, &s.Version, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, record.ErrNotFound
		}
		return nil, fmt.Errorf("scan script: %w", err)
	}
	if err := json.Unmarshal(fieldsJSON, &s.Fields); err != nil {
		return nil, fmt.Errorf("parse script fields: %w", err)
	}
	return &s, nil
}

func (r *RecordRepository) ListScripts(ctx context.Context, teamID int64) ([]record.Script, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT `+scriptColumns+` FROM scripts WHERE team_id = $1 AND deleted_at IS NULL ORDER BY created_at`,
		teamID)
	if err != nil {
		return nil, fmt.Errorf("query scripts: %w", err)
	}
	defer rows.Close()

	var scripts []record.Script
	for rows.Next() {
		s, err := scanScript(rows)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, *s)
	}
	return scripts, rows.Err()
}

func (r *RecordRepository) GetScript(ctx context.Context, id uuid.UUID) (*record.Script, error) {
	row := r.db.Pool().QueryRow(ctx,
		`SELECT `+scriptColumns+` FROM scripts WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanScript(row)
}

func (r *RecordRepository) CreateScript(ctx context.Context, s *record.Script) error {
	fieldsJSON, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("marshal script fields: %w", err)
	}

	_, err = r.db.Pool().Exec(ctx,
		`INSERT INTO scripts (id, team_id, user_id, site_id, persona_id, name, url_hint, created_by_name, fields, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		s.ID, s.TeamID, s.AuthorID, s.SiteID, s.PersonaID, s.Name, s.URLHint, s.CreatedByName,
		fieldsJSON, s.Version, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert script: %w", err)
	}
	return nil
}

func (r *RecordRepository) UpdateScript(ctx context.Context, s *record.Script) error {
	fieldsJSON, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("marshal script fields: %w", err)
	}

	_, err = r.db.Pool().Exec(ctx,
		`UPDATE scripts SET site_id = $2, persona_id = $3, name = $4, url_hint = $5,
		        created_by_name = $6, fields = $7, version = $8, updated_at = $9
		 WHERE id = $1`,
		s.ID, s.SiteID, s.PersonaID, s.Name, s.URLHint, s.CreatedByName, fieldsJSON, s.Version, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update script: %w", err)
	}
	return nil
}

func (r *RecordRepository) DeleteScript(ctx context.Context, s *record.Script) error {
	_, err := r.db.Pool().Exec(ctx,
		`UPDATE scripts SET updated_at = $2, deleted_at = $3 WHERE id = $1`,
		s.ID, s.UpdatedAt, s.DeletedAt)
	if err != nil {
		return fmt.Errorf("tombstone script: %w", err)
	}
	return nil
}

func (r *RecordRepository) CountLiveScripts(ctx context.Context, teamID int64) (int, error) {
	var count int
	err := r.db.Pool().QueryRow(ctx,
		`SELECT count(*) FROM scripts WHERE team_id = $1 AND deleted_at IS NULL`,
		teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count scripts: %w", err)
	}
	return count, nil
}
