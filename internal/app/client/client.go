package client

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"steno/internal/app/client/config"
	"steno/internal/domain/record"
)

// App bundles the local database, the server connection and the stored
// token. All CLI commands run through it.
type App struct {
	config  *config.Config
	log     *slog.Logger
	storage *SQLiteStorage
	http    *httpClient
}

func NewApp(cfg *config.Config, log *slog.Logger) (*App, error) {
	storage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	app := &App{
		config:  cfg,
		log:     log,
		storage: storage,
		http:    NewHTTPClient(cfg, log),
	}

	// A stored token is picked up silently; commands that need auth fail
	// with a clear message when it is missing or stale.
	if token, err := app.loadToken(); err == nil && token != "" {
		app.http.SetToken(token)
	}

	return app, nil
}

func (a *App) Close() error {
	return a.storage.Close()
}

func (a *App) Register(ctx context.Context, email, name, password string) error {
	return a.http.Register(ctx, email, name, password)
}

func (a *App) Login(ctx context.Context, email, password string) error {
	token, err := a.http.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.saveToken(token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	a.http.SetToken(token)
	return nil
}

func (a *App) HealthCheck(ctx context.Context) error {
	return a.http.HealthCheck(ctx)
}

// Local reads for the CLI. Tombstoned rows are filtered here, not in
// storage: the listing shows live data, sync still sees everything.

func (a *App) ListSites(ctx context.Context) ([]record.Site, error) {
	all, err := a.storage.SiteStore().ChangedSince(ctx, 0, nil)
	if err != nil {
		return nil, err
	}
	live := all[:0]
	for _, s := range all {
		if s.DeletedAt == nil {
			live = append(live, s)
		}
	}
	return live, nil
}

func (a *App) ListPersonas(ctx context.Context) ([]record.Persona, error) {
	all, err := a.storage.PersonaStore().ChangedSince(ctx, 0, nil)
	if err != nil {
		return nil, err
	}
	live := all[:0]
	for _, p := range all {
		if p.DeletedAt == nil {
			live = append(live, p)
		}
	}
	return live, nil
}

func (a *App) ListScripts(ctx context.Context) ([]record.Script, error) {
	all, err := a.storage.ScriptStore().ChangedSince(ctx, 0, nil)
	if err != nil {
		return nil, err
	}
	live := all[:0]
	for _, s := range all {
		if s.DeletedAt == nil {
			live = append(live, s)
		}
	}
	return live, nil
}

// Local writes. Each stamps updated_at here, on the writing device; the
// server stores that stamp untouched.

func (a *App) AddSite(hostname string, label *string) (record.Site, error) {
	now := time.Now().UTC()
	site := record.Site{
		ID:        uuid.New(),
		Hostname:  hostname,
		Label:     label,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.storage.SaveSite(site); err != nil {
		return record.Site{}, err
	}
	return site, nil
}

func (a *App) AddPersona(name string, siteID *uuid.UUID) (record.Persona, error) {
	now := time.Now().UTC()
	persona := record.Persona{
		ID:        uuid.New(),
		SiteID:    siteID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.storage.SavePersona(persona); err != nil {
		return record.Persona{}, err
	}
	return persona, nil
}

func (a *App) AddScript(name string, fields []record.Field, siteID, personaID *uuid.UUID) (record.Script, error) {
	now := time.Now().UTC()
	script := record.Script{
		ID:        uuid.New(),
		SiteID:    siteID,
		PersonaID: personaID,
		Name:      name,
		Fields:    fields,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.storage.SaveScript(script); err != nil {
		return record.Script{}, err
	}
	return script, nil
}

// DeleteScript tombstones locally; the deletion propagates on next sync.
func (a *App) DeleteScript(ctx context.Context, id uuid.UUID) error {
	script, found, err := a.storage.ScriptStore().Find(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("script not found: %s", id)
	}
	now := time.Now().UTC()
	script.UpdatedAt = now
	script.DeletedAt = &now
	return a.storage.SaveScript(script)
}

func (a *App) loadToken() (string, error) {
	data, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *App) saveToken(token string) error {
	return os.WriteFile(a.config.TokenPath, []byte(token), 0600)
}
