package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"steno/internal/domain/record"
	"steno/internal/domain/sync"
	"steno/internal/domain/team"
)

// SQLiteStorage is the offline copy of the team's data. Rows changed
// locally carry dirty=1 until a sync pushes them; rows written from the
// server feed always land clean. Tombstones are kept like on the server.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sites (
			id TEXT PRIMARY KEY,
			hostname TEXT NOT NULL,
			label TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			deleted_at TEXT,
			dirty INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_sites_updated ON sites(updated_at);

		CREATE TABLE IF NOT EXISTS personas (
			id TEXT PRIMARY KEY,
			site_id TEXT,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			deleted_at TEXT,
			dirty INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_personas_updated ON personas(updated_at);

		CREATE TABLE IF NOT EXISTS scripts (
			id TEXT PRIMARY KEY,
			site_id TEXT,
			persona_id TEXT,
			name TEXT NOT NULL,
			url_hint TEXT,
			created_by_name TEXT,
			fields TEXT NOT NULL DEFAULT '[]',
			version INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			deleted_at TEXT,
			dirty INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_scripts_updated ON scripts(updated_at);

		CREATE TABLE IF NOT EXISTS sync_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_synced_at TEXT
		);
	`)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Cursor returns the stored sync cursor, nil before the first sync.
func (s *SQLiteStorage) Cursor() (*time.Time, error) {
	var raw sql.NullString
	err := s.db.QueryRow(`SELECT last_synced_at FROM sync_state WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}
	if !raw.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return nil, fmt.Errorf("parse cursor: %w", err)
	}
	return &t, nil
}

func (s *SQLiteStorage) SetCursor(at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO sync_state (id, last_synced_at) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET last_synced_at = excluded.last_synced_at`,
		at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(raw string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, raw)
	return t
}

func parseTimePtr(raw sql.NullString) *time.Time {
	if !raw.Valid {
		return nil
	}
	t := parseTime(raw.String)
	return &t
}

func parseIDPtr(raw sql.NullString) *uuid.UUID {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	id, err := uuid.Parse(raw.String)
	if err != nil {
		return nil
	}
	return &id
}

func idPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

// Sites

// SiteStore exposes the sites table through the same reconciliation
// interface the server uses, so the feed is applied with the identical
// last-writer-wins logic.
func (s *SQLiteStorage) SiteStore() sync.Store[record.Site] {
	return &localSiteStore{db: s.db}
}

type localSiteStore struct {
	db *sql.DB
}

func (l *localSiteStore) Find(_ context.Context, id uuid.UUID) (record.Site, bool, error) {
	var rec record.Site
	var rawID string
	var label, deletedAt sql.NullString
	var createdAt, updatedAt string

	err := l.db.QueryRow(
		`SELECT id, hostname, label, created_at, updated_at, deleted_at FROM sites WHERE id = ?`,
		id.String()).Scan(&rawID, &rec.Hostname, &label, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Site{}, false, nil
	}
	if err != nil {
		return record.Site{}, false, fmt.Errorf("find site: %w", err)
	}

	rec.ID = id
	if label.Valid {
		rec.Label = &label.String
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	rec.DeletedAt = parseTimePtr(deletedAt)
	return rec, true, nil
}

func (l *localSiteStore) Insert(_ context.Context, _ team.TenantContext, rec record.Site) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = rec.UpdatedAt
	}
	var label any
	if rec.Label != nil {
		label = *rec.Label
	}
	_, err := l.db.Exec(
		`INSERT INTO sites (id, hostname, label, created_at, updated_at, deleted_at, dirty)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		rec.ID.String(), rec.Hostname, label, fmtTime(createdAt), fmtTime(rec.UpdatedAt), fmtTimePtr(rec.DeletedAt))
	if err != nil {
		return fmt.Errorf("insert site: %w", err)
	}
	return nil
}

func (l *localSiteStore) Replace(_ context.Context, rec record.Site) error {
	var label any
	if rec.Label != nil {
		label = *rec.Label
	}
	_, err := l.db.Exec(
		`UPDATE sites SET hostname = ?, label = ?, updated_at = ?, deleted_at = NULL, dirty = 0 WHERE id = ?`,
		rec.Hostname, label, fmtTime(rec.UpdatedAt), rec.ID.String())
	if err != nil {
		return fmt.Errorf("replace site: %w", err)
	}
	return nil
}

func (l *localSiteStore) Tombstone(_ context.Context, id uuid.UUID, updatedAt, deletedAt time.Time) error {
	_, err := l.db.Exec(
		`UPDATE sites SET updated_at = ?, deleted_at = ?, dirty = 0 WHERE id = ?`,
		fmtTime(updatedAt), fmtTime(deletedAt), id.String())
	if err != nil {
		return fmt.Errorf("tombstone site: %w", err)
	}
	return nil
}

func (l *localSiteStore) ChangedSince(_ context.Context, _ int64, since *time.Time) ([]record.Site, error) {
	query := `SELECT id, hostname, label, created_at, updated_at, deleted_at FROM sites`
	args := []any{}
	if since != nil {
		query += ` WHERE updated_at > ?`
		args = append(args, fmtTime(*since))
	}
	query += ` ORDER BY updated_at`

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("site changes: %w", err)
	}
	defer rows.Close()

	var out []record.Site
	for rows.Next() {
		var rec record.Site
		var rawID, createdAt, updatedAt string
		var label, deletedAt sql.NullString
		if err := rows.Scan(&rawID, &rec.Hostname, &label, &createdAt, &updatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		rec.ID, _ = uuid.Parse(rawID)
		if label.Valid {
			rec.Label = &label.String
		}
		rec.CreatedAt = parseTime(createdAt)
		rec.UpdatedAt = parseTime(updatedAt)
		rec.DeletedAt = parseTimePtr(deletedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveSite stores a local edit and marks the row dirty for the next push.
func (s *SQLiteStorage) SaveSite(rec record.Site) error {
	var label any
	if rec.Label != nil {
		label = *rec.Label
	}
	_, err := s.db.Exec(
		`INSERT INTO sites (id, hostname, label, created_at, updated_at, deleted_at, dirty)
		 VALUES (?, ?, ?, ?, ?, ?, 1)
		 ON CONFLICT (id) DO UPDATE SET
		   hostname = excluded.hostname, label = excluded.label,
		   updated_at = excluded.updated_at, deleted_at = excluded.deleted_at, dirty = 1`,
		rec.ID.String(), rec.Hostname, label, fmtTime(rec.CreatedAt), fmtTime(rec.UpdatedAt), fmtTimePtr(rec.DeletedAt))
	if err != nil {
		return fmt.Errorf("save site: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DirtySites() ([]record.Site, error) {
	store := &localSiteStore{db: s.db}
	all, err := store.ChangedSince(context.Background(), 0, nil)
	if err != nil {
		return nil, err
	}
	return filterDirty(s, "sites", all, func(r record.Site) uuid.UUID { return r.ID })
}

// Personas

func (s *SQLiteStorage) PersonaStore() sync.Store[record.Persona] {
	return &localPersonaStore{db: s.db}
}

type localPersonaStore struct {
	db *sql.DB
}

func (l *localPersonaStore) Find(_ context.Context, id uuid.UUID) (record.Persona, bool, error) {
	var rec record.Persona
	var rawID, createdAt, updatedAt string
	var siteID, deletedAt sql.NullString

	err := l.db.QueryRow(
		`SELECT id, site_id, name, created_at, updated_at, deleted_at FROM personas WHERE id = ?`,
		id.String()).Scan(&rawID, &siteID, &rec.Name, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Persona{}, false, nil
	}
	if err != nil {
		return record.Persona{}, false, fmt.Errorf("find persona: %w", err)
	}

	rec.ID = id
	rec.SiteID = parseIDPtr(siteID)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	rec.DeletedAt = parseTimePtr(deletedAt)
	return rec, true, nil
}

func (l *localPersonaStore) Insert(_ context.Context, _ team.TenantContext, rec record.Persona) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = rec.UpdatedAt
	}
	_, err := l.db.Exec(
		`INSERT INTO personas (id, site_id, name, created_at, updated_at, deleted_at, dirty)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		rec.ID.String(), idPtr(rec.SiteID), rec.Name, fmtTime(createdAt), fmtTime(rec.UpdatedAt), fmtTimePtr(rec.DeletedAt))
	if err != nil {
		return fmt.Errorf("insert persona: %w", err)
	}
	return nil
}

func (l *localPersonaStore) Replace(_ context.Context, rec record.Persona) error {
	_, err := l.db.Exec(
		`UPDATE personas SET site_id = ?, name = ?, updated_at = ?, deleted_at = NULL, dirty = 0 WHERE id = ?`,
		idPtr(rec.SiteID), rec.Name, fmtTime(rec.UpdatedAt), rec.ID.String())
	if err != nil {
		return fmt.Errorf("replace persona: %w", err)
	}
	return nil
}

func (l *localPersonaStore) Tombstone(_ context.Context, id uuid.UUID, updatedAt, deletedAt time.Time) error {
	_, err := l.db.Exec(
		`UPDATE personas SET updated_at = ?, deleted_at = ?, dirty = 0 WHERE id = ?`,
		fmtTime(updatedAt), fmtTime(deletedAt), id.String())
	if err != nil {
		return fmt.Errorf("tombstone persona: %w", err)
	}
	return nil
}

func (l *localPersonaStore) ChangedSince(_ context.Context, _ int64, since *time.Time) ([]record.Persona, error) {
	query := `SELECT id, site_id, name, created_at, updated_at, deleted_at FROM personas`
	args := []any{}
	if since != nil {
		query += ` WHERE updated_at > ?`
		args = append(args, fmtTime(*since))
	}
	query += ` ORDER BY updated_at`

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("persona changes: %w", err)
	}
	defer rows.Close()

	var out []record.Persona
	for rows.Next() {
		var rec record.Persona
		var rawID, createdAt, updatedAt string
		var siteID, deletedAt sql.NullString
		if err := rows.Scan(&rawID, &siteID, &rec.Name, &createdAt, &updatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan persona: %w", err)
		}
		rec.ID, _ = uuid.Parse(rawID)
		rec.SiteID = parseIDPtr(siteID)
		rec.CreatedAt = parseTime(createdAt)
		rec.UpdatedAt = parseTime(updatedAt)
		rec.DeletedAt = parseTimePtr(deletedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) SavePersona(rec record.Persona) error {
	_, err := s.db.Exec(
		`INSERT INTO personas (id, site_id, name, created_at, updated_at, deleted_at, dirty)
		 VALUES (?, ?, ?, ?, ?, ?, 1)
		 ON CONFLICT (id) DO UPDATE SET
		   site_id = excluded.site_id, name = excluded.name,
		   updated_at = excluded.updated_at, deleted_at = excluded.deleted_at, dirty = 1`,
		rec.ID.String(), idPtr(rec.SiteID), rec.Name, fmtTime(rec.CreatedAt), fmtTime(rec.UpdatedAt), fmtTimePtr(rec.DeletedAt))
	if err != nil {
		return fmt.Errorf("save persona: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DirtyPersonas() ([]record.Persona, error) {
	store := &localPersonaStore{db: s.db}
	all, err := store.ChangedSince(context.Background(), 0, nil)
	if err != nil {
		return nil, err
	}
	return filterDirty(s, "personas", all, func(r record.Persona) uuid.UUID { return r.ID })
}

// Scripts

func (s *SQLiteStorage) ScriptStore() sync.Store[record.Script] {
	return &localScriptStore{db: s.db}
}

type localScriptStore struct {
	db *sql.DB
}

func scanLocalScript(rawID string, siteID, personaID sql.NullString, urlHint, createdByName sql.NullString,
	fieldsJSON, createdAt, updatedAt string, deletedAt sql.NullString, rec *record.Script) error {

	rec.ID, _ = uuid.Parse(rawID)
	rec.SiteID = parseIDPtr(siteID)
	rec.PersonaID = parseIDPtr(personaID)
	if urlHint.Valid {
		rec.URLHint = &urlHint.String
	}
	if createdByName.Valid {
		rec.CreatedByName = &createdByName.String
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
		return fmt.Errorf("parse script fields: %w", err)
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	rec.DeletedAt = parseTimePtr(deletedAt)
	return nil
}

func (l *localScriptStore) Find(_ context.Context, id uuid.UUID) (record.Script, bool, error) {
	var rec record.Script
	var rawID, fieldsJSON, createdAt, updatedAt string
	var siteID, personaID, urlHint, createdByName, deletedAt sql.NullString

	err := l.db.QueryRow(
		`SELECT id, site_id, persona_id, name, url_hint, created_by_name, fields, version, created_at, updated_at, deleted_at
		 FROM scripts WHERE id = ?`,
		id.String()).Scan(&rawID, &siteID, &personaID, &rec.Name, &urlHint, &createdByName,
		&fieldsJSON, &rec.Version, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Script{}, false, nil
	}
	if err != nil {
		return record.Script{}, false, fmt.Errorf("find script: %w", err)
	}

	if err := scanLocalScript(rawID, siteID, personaID, urlHint, createdByName, fieldsJSON, createdAt, updatedAt, deletedAt, &rec); err != nil {
		return record.Script{}, false, err
	}
	return rec, true, nil
}

func (l *localScriptStore) Insert(_ context.Context, _ team.TenantContext, rec record.Script) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal script fields: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = rec.UpdatedAt
	}
	var urlHint, createdByName any
	if rec.URLHint != nil {
		urlHint = *rec.URLHint
	}
	if rec.CreatedByName != nil {
		createdByName = *rec.CreatedByName
	}
	_, err = l.db.Exec(
		`INSERT INTO scripts (id, site_id, persona_id, name, url_hint, created_by_name, fields, version, created_at, updated_at, deleted_at, dirty)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		rec.ID.String(), idPtr(rec.SiteID), idPtr(rec.PersonaID), rec.Name, urlHint, createdByName,
		string(fieldsJSON), rec.Version, fmtTime(createdAt), fmtTime(rec.UpdatedAt), fmtTimePtr(rec.DeletedAt))
	if err != nil {
		return fmt.Errorf("insert script: %w", err)
	}
	return nil
}

func (l *localScriptStore) Replace(_ context.Context, rec record.Script) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal script fields: %w", err)
	}
	var urlHint, createdByName any
	if rec.URLHint != nil {
		urlHint = *rec.URLHint
	}
	if rec.CreatedByName != nil {
		createdByName = *rec.CreatedByName
	}
	_, err = l.db.Exec(
		`UPDATE scripts SET site_id = ?, persona_id = ?, name = ?, url_hint = ?, created_by_name = ?,
		        fields = ?, version = ?, updated_at = ?, deleted_at = NULL, dirty = 0
		 WHERE id = ?`,
		idPtr(rec.SiteID), idPtr(rec.PersonaID), rec.Name, urlHint, createdByName,
		string(fieldsJSON), rec.Version, fmtTime(rec.UpdatedAt), rec.ID.String())
	if err != nil {
		return fmt.Errorf("replace script: %w", err)
	}
	return nil
}

func (l *localScriptStore) Tombstone(_ context.Context, id uuid.UUID, updatedAt, deletedAt time.Time) error {
	_, err := l.db.Exec(
		`UPDATE scripts SET updated_at = ?, deleted_at = ?, dirty = 0 WHERE id = ?`,
		fmtTime(updatedAt), fmtTime(deletedAt), id.String())
	if err != nil {
		return fmt.Errorf("tombstone script: %w", err)
	}
	return nil
}

func (l *localScriptStore) ChangedSince(_ context.Context, _ int64, since *time.Time) ([]record.Script, error) {
	query := `SELECT id, site_id, persona_id, name, url_hint, created_by_name, fields, version, created_at, updated_at, deleted_at FROM scripts`
	args := []any{}
	if since != nil {
		query += ` WHERE updated_at > ?`
		args = append(args, fmtTime(*since))
	}
	query += ` ORDER BY updated_at`

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("script changes: %w", err)
	}
	defer rows.Close()

	var out []record.Script
	for rows.Next() {
		var rec record.Script
		var rawID, fieldsJSON, createdAt, updatedAt string
		var siteID, personaID, urlHint, createdByName, deletedAt sql.NullString
		if err := rows.Scan(&rawID, &siteID, &personaID, &rec.Name, &urlHint, &createdByName,
			&fieldsJSON, &rec.Version, &createdAt, &updatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan script: %w", err)
		}
		if err := scanLocalScript(rawID, siteID, personaID, urlHint, createdByName, fieldsJSON, createdAt, updatedAt, deletedAt, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) SaveScript(rec record.Script) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal script fields: %w", err)
	}
	var urlHint, createdByName any
	if rec.URLHint != nil {
		urlHint = *rec.URLHint
	}
	if rec.CreatedByName != nil {
		createdByName = *rec.CreatedByName
	}
	_, err = s.db.Exec(
		`INSERT INTO scripts (id, site_id, persona_id, name, url_hint, created_by_name, fields, version, created_at, updated_at, deleted_at, dirty)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		 ON CONFLICT (id) DO UPDATE SET
		   site_id = excluded.site_id, persona_id = excluded.persona_id, name = excluded.name,
		   url_hint = excluded.url_hint, created_by_name = excluded.created_by_name,
		   fields = excluded.fields, version = excluded.version,
		   updated_at = excluded.updated_at, deleted_at = excluded.deleted_at, dirty = 1`,
		rec.ID.String(), idPtr(rec.SiteID), idPtr(rec.PersonaID), rec.Name, urlHint, createdByName,
		string(fieldsJSON), rec.Version, fmtTime(rec.CreatedAt), fmtTime(rec.UpdatedAt), fmtTimePtr(rec.DeletedAt))
	if err != nil {
		return fmt.Errorf("save script: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DirtyScripts() ([]record.Script, error) {
	store := &localScriptStore{db: s.db}
	all, err := store.ChangedSince(context.Background(), 0, nil)
	if err != nil {
		return nil, err
	}
	return filterDirty(s, "scripts", all, func(r record.Script) uuid.UUID { return r.ID })
}

// MarkClean clears the dirty flag after a successful push.
func (s *SQLiteStorage) MarkClean(table string, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := s.db.Exec(
			fmt.Sprintf(`UPDATE %s SET dirty = 0 WHERE id = ?`, table), id.String()); err != nil {
			return fmt.Errorf("mark clean: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStorage) dirtyIDs(table string) (map[uuid.UUID]bool, error) {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT id FROM %s WHERE dirty = 1`, table))
	if err != nil {
		return nil, fmt.Errorf("query dirty rows: %w", err)
	}
	defer rows.Close()

	ids := make(map[uuid.UUID]bool)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// filterDirty narrows a full listing down to the rows flagged dirty.
func filterDirty[R any](s *SQLiteStorage, table string, all []R, idOf func(R) uuid.UUID) ([]R, error) {
	ids, err := s.dirtyIDs(table)
	if err != nil {
		return nil, err
	}
	var out []R
	for _, r := range all {
		if ids[idOf(r)] {
			out = append(out, r)
		}
	}
	return out, nil
}
