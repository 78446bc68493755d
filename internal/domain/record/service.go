package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"steno/internal/domain/team"
)

// Servicer is the business logic behind the direct (non-sync) endpoints.
// Every call takes the resolved TenantContext; the capability matrix and
// tenant isolation are enforced here, not in handlers.
type Servicer interface {
	ListSites(ctx context.Context, tc team.TenantContext) ([]Site, error)
	CreateSite(ctx context.Context, tc team.TenantContext, params CreateSiteParams) (*Site, error)
	GetSite(ctx context.Context, tc team.TenantContext, id uuid.UUID) (*Site, error)
	UpdateSite(ctx context.Context, tc team.TenantContext, id uuid.UUID, params UpdateSiteParams) (*Site, error)
	DeleteSite(ctx context.Context, tc team.TenantContext, id uuid.UUID) error

	ListPersonas(ctx context.Context, tc team.TenantContext) ([]Persona, error)
	CreatePersona(ctx context.Context, tc team.TenantContext, params CreatePersonaParams) (*Persona, error)
	GetPersona(ctx context.Context, tc team.TenantContext, id uuid.UUID) (*Persona, error)
	UpdatePersona(ctx context.Context, tc team.TenantContext, id uuid.UUID, params UpdatePersonaParams) (*Persona, error)
	DeletePersona(ctx context.Context, tc team.TenantContext, id uuid.UUID) error

	ListScripts(ctx context.Context, tc team.TenantContext) ([]Script, error)
	CreateScript(ctx context.Context, tc team.TenantContext, params CreateScriptParams) (*Script, error)
	GetScript(ctx context.Context, tc team.TenantContext, id uuid.UUID) (*Script, error)
	UpdateScript(ctx context.Context, tc team.TenantContext, id uuid.UUID, params UpdateScriptParams) (*Script, error)
	DeleteScript(ctx context.Context, tc team.TenantContext, id uuid.UUID) error
}

type CreateSiteParams struct {
	ID       *uuid.UUID
	Hostname string
	Label    *string
}

type UpdateSiteParams struct {
	Hostname *string
	Label    *string
}

type CreatePersonaParams struct {
	ID     *uuid.UUID
	SiteID *uuid.UUID
	Name   string
}

type UpdatePersonaParams struct {
	SiteID *uuid.UUID
	Name   *string
}

type CreateScriptParams struct {
	ID            *uuid.UUID
	SiteID        *uuid.UUID
	PersonaID     *uuid.UUID
	Name          string
	URLHint       *string
	CreatedByName *string
	Fields        []Field
	Version       *int
}

type UpdateScriptParams struct {
	SiteID        *uuid.UUID
	PersonaID     *uuid.UUID
	Name          *string
	URLHint       *string
	CreatedByName *string
	Fields        []Field
	Version       *int
}

type Service struct {
	repo           Repository
	clock          Clock
	maxFreeScripts int
	log            *slog.Logger
}

// NewService builds the record service. maxFreeScripts caps live scripts
// for unsubscribed teams on the direct create path; zero disables the cap.
func NewService(repo Repository, clock Clock, maxFreeScripts int, log *slog.Logger) Servicer {
	return &Service{
		repo:           repo,
		clock:          clock,
		maxFreeScripts: maxFreeScripts,
		log:            log.With("component", "record_service"),
	}
}

// Sites

func (s *Service) ListSites(ctx context.Context, tc team.TenantContext) ([]Site, error) {
	sites, err := s.repo.ListSites(ctx, tc.TeamID)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return sites, nil
}

func (s *Service) CreateSite(ctx context.Context, tc team.TenantContext, params CreateSiteParams) (*Site, error) {
	if !team.Can(tc.Role, team.ActionCreate) {
		return nil, ErrForbidden
	}
	if params.Hostname == "" {
		return nil, ErrInvalidInput
	}

	now := s.clock.Now().UTC()
	site := &Site{
		ID:        orNewID(params.ID),
		TeamID:    tc.TeamID,
		AuthorID:  tc.UserID,
		Hostname:  params.Hostname,
		Label:     params.Label,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateSite(ctx, site); err != nil {
		s.log.Error("failed to create site", "team_id", tc.TeamID, "error", err)
		return nil, fmt.Errorf("create site: %w", err)
	}

	s.log.Info("site created", "site_id", site.ID, "team_id", tc.TeamID)
	return site, nil
}

func (s *Service) GetSite(ctx context.Context, tc team.TenantContext, id uuid.UUID) (*Site, error) {
	site, err := s.repo.GetSite(ctx, id)
	if err != nil {
		return nil, err
	}
	if site.TeamID != tc.TeamID {
		return nil, ErrForbidden
	}
	return site, nil
}

func (s *Service) UpdateSite(ctx context.Context, tc team.TenantContext, id uuid.UUID, params UpdateSiteParams) (*Site, error) {
	site, err := s.GetSite(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if !team.Can(tc.Role, team.ActionUpdate) {
		return nil, ErrForbidden
	}

	if params.Hostname != nil {
		site.Hostname = *params.Hostname
	}
	site.Label = params.Label
	site.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.UpdateSite(ctx, site); err != nil {
		s.log.Error("failed to update site", "site_id", id, "error", err)
		return nil, fmt.Errorf("update site: %w", err)
	}
	return site, nil
}

func (s *Service) DeleteSite(ctx context.Context, tc team.TenantContext, id uuid.UUID) error {
	site, err := s.GetSite(ctx, tc, id)
	if err != nil {
		return err
	}
	if !team.Can(tc.Role, team.ActionDelete) {
		return ErrForbidden
	}

	now := s.clock.Now().UTC()
	site.UpdatedAt = now
	site.DeletedAt = &now
	if err := s.repo.DeleteSite(ctx, site); err != nil {
		s.log.Error("failed to delete site", "site_id", id, "error", err)
		return fmt.Errorf("delete site: %w", err)
	}

	s.log.Info("site deleted", "site_id", id, "team_id", tc.TeamID)
	return nil
}

// Personas

func (s *Service) ListPersonas(ctx context.Context, tc team.TenantContext) ([]Persona, error) {
	personas, err := s.repo.ListPersonas(ctx, tc.TeamID)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	return personas, nil
}

func (s *Service) CreatePersona(ctx context.Context, tc team.TenantContext, params CreatePersonaParams) (*Persona, error) {
	if !team.Can(tc.Role, team.ActionCreate) {
		return nil, ErrForbidden
	}
	if params.Name == "" {
		return nil, ErrInvalidInput
	}

	now := s.clock.Now().UTC()
	persona := &Persona{
		ID:        orNewID(params.ID),
		TeamID:    tc.TeamID,
		AuthorID:  tc.UserID,
		SiteID:    params.SiteID,
		Name:      params.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreatePersona(ctx, persona); err != nil {
		s.log.Error("failed to create persona", "team_id", tc.TeamID, "error", err)
		return nil, fmt.Errorf("create persona: %w", err)
	}

	s.log.Info("persona created", "persona_id", persona.ID, "team_id", tc.TeamID)
	return persona, nil
}

func (s *Service) GetPersona(ctx context.Context, tc team.TenantContext, id uuid.UUID) (*Persona, error) {
	persona, err := s.repo.GetPersona(ctx, id)
	if err != nil {
		return nil, err
	}
	if persona.TeamID != tc.TeamID {
		return nil, ErrForbidden
	}
	return persona, nil
}

func (s *Service) UpdatePersona(ctx context.Context, tc team.TenantContext, id uuid.UUID, params UpdatePersonaParams) (*Persona, error) {
	persona, err := s.GetPersona(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if !team.Can(tc.Role, team.ActionUpdate) {
		return nil, ErrForbidden
	}

	if params.Name != nil {
		persona.Name = *params.Name
	}
	persona.SiteID = params.SiteID
	persona.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.UpdatePersona(ctx, persona); err != nil {
		s.log.Error("failed to update persona", "persona_id", id, "error", err)
		return nil, fmt.Errorf("update persona: %w", err)
	}
	return persona, nil
}

func (s *Service) DeletePersona(ctx context.Context, tc team.TenantContext, id uuid.UUID) error {
	persona, err := s.GetPersona(ctx, tc, id)
	if err != nil {
		return err
	}
	if !team.Can(tc.Role, team.ActionDelete) {
		return ErrForbidden
	}

	now := s.clock.Now().UTC()
	persona.UpdatedAt = now
	persona.DeletedAt = &now
	if err := s.repo.DeletePersona(ctx, persona); err != nil {
		s.log.Error("failed to delete persona", "persona_id", id, "error", err)
		return fmt.Errorf("delete persona: %w", err)
	}

	s.log.Info("persona deleted", "persona_id", id, "team_id", tc.TeamID)
	return nil
}

// Scripts

func (s *Service) ListScripts(ctx context.Context, tc team.TenantContext) ([]Script, error) {
	scripts, err := s.repo.ListScripts(ctx, tc.TeamID)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	return scripts, nil
}

func (s *Service) CreateScript(ctx context.Context, tc team.TenantContext, params CreateScriptParams) (*Script, error) {
	if !team.Can(tc.Role, team.ActionCreate) {
		return nil, ErrForbidden
	}
	if params.Name == "" || len(params.Fields) == 0 {
		return nil, ErrInvalidInput
	}

	// Free-tier cap applies to the interactive create path only; the sync
	// path reconciles without counting.
	if !tc.Subscribed && s.maxFreeScripts > 0 {
		count, err := s.repo.CountLiveScripts(ctx, tc.TeamID)
		if err != nil {
			return nil, fmt.Errorf("count scripts: %w", err)
		}
		if count >= s.maxFreeScripts {
			return nil, ErrQuotaExceeded
		}
	}

	version := 1
	if params.Version != nil {
		version = *params.Version
	}

	now := s.clock.Now().UTC()
	script := &Script{
		ID:            orNewID(params.ID),
		TeamID:        tc.TeamID,
		AuthorID:      tc.UserID,
		SiteID:        params.SiteID,
		PersonaID:     params.PersonaID,
		Name:          params.Name,
		URLHint:       params.URLHint,
		CreatedByName: params.CreatedByName,
		Fields:        params.Fields,
		Version:       version,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateScript(ctx, script); err != nil {
		s.log.Error("failed to create script", "team_id", tc.TeamID, "error", err)
		return nil, fmt.Errorf("create script: %w", err)
	}

	s.log.Info("script created", "script_id", script.ID, "team_id", tc.TeamID)
	return script, nil
}

func (s *Service) GetScript(ctx context.Context, tc team.TenantContext, id uuid.UUID) (*Script, error) {
	script, err := s.repo.GetScript(ctx, id)
	if err != nil {
		return nil, err
	}
	if script.TeamID != tc.TeamID {
		return nil, ErrForbidden
	}
	return script, nil
}

func (s *Service) UpdateScript(ctx context.Context, tc team.TenantContext, id uuid.UUID, params UpdateScriptParams) (*Script, error) {
	script, err := s.GetScript(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if !team.CanTouchScript(tc.Role, script.AuthorID, tc.UserID) {
		return nil, ErrForbidden
	}

	if params.Name != nil {
		script.Name = *params.Name
	}
	if params.Fields != nil {
		script.Fields = params.Fields
	}
	if params.Version != nil {
		script.Version = *params.Version
	}
	script.SiteID = params.SiteID
	script.PersonaID = params.PersonaID
	script.URLHint = params.URLHint
	script.CreatedByName = params.CreatedByName
	script.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.UpdateScript(ctx, script); err != nil {
		s.log.Error("failed to update script", "script_id", id, "error", err)
		return nil, fmt.Errorf("update script: %w", err)
	}
	return script, nil
}

func (s *Service) DeleteScript(ctx context.Context, tc team.TenantContext, id uuid.UUID) error {
	script, err := s.GetScript(ctx, tc, id)
	if err != nil {
		return err
	}
	if !team.CanTouchScript(tc.Role, script.AuthorID, tc.UserID) {
		return ErrForbidden
	}

	now := s.clock.Now().UTC()
	script.UpdatedAt = now
	script.DeletedAt = &now
	if err := s.repo.DeleteScript(ctx, script); err != nil {
		s.log.Error("failed to delete script", "script_id", id, "error", err)
		return fmt.Errorf("delete script: %w", err)
	}

	s.log.Info("script deleted", "script_id", id, "team_id", tc.TeamID)
	return nil
}

func orNewID(id *uuid.UUID) uuid.UUID {
	if id != nil {
		return *id
	}
	return uuid.New()
}
