package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the direct-endpoint persistence boundary. Lookups return
// live records only; deletes are tombstones, never physical removals, so
// that the deletion can propagate through the change feed.
type Repository interface {
	ListSites(ctx context.Context, teamID int64) ([]Site, error)
	GetSite(ctx context.Context, id uuid.UUID) (*Site, error)
	CreateSite(ctx context.Context, s *Site) error
	UpdateSite(ctx context.Context, s *Site) error
	// DeleteSite tombstones the site and detaches live personas and
	// scripts that reference it (site_id set to null).
	DeleteSite(ctx context.Context, s *Site) error

	ListPersonas(ctx context.Context, teamID int64) ([]Persona, error)
	GetPersona(ctx context.Context, id uuid.UUID) (*Persona, error)
	CreatePersona(ctx context.Context, p *Persona) error
	UpdatePersona(ctx context.Context, p *Persona) error
	DeletePersona(ctx context.Context, p *Persona) error

	ListScripts(ctx context.Context, teamID int64) ([]Script, error)
	GetScript(ctx context.Context, id uuid.UUID) (*Script, error)
	CreateScript(ctx context.Context, s *Script) error
	UpdateScript(ctx context.Context, s *Script) error
	DeleteScript(ctx context.Context, s *Script) error
	// CountLiveScripts counts non-tombstoned scripts for the quota check.
	CountLiveScripts(ctx context.Context, teamID int64) (int, error)
}
