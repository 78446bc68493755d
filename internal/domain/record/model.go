package record

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the write timestamp for server-side mutations and the
// sync cursor. Injected so reconciliation stays deterministic in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the production clock.
var SystemClock Clock = ClockFunc(time.Now)

// Syncable is the shape shared by the three record kinds. Identity is a
// client-generated UUID, UpdatedAt is the last-writer-wins tie-breaker and
// DeletedAt the tombstone. A tombstoned record is retained forever so the
// deletion can reach devices that connect arbitrarily late.
type Syncable interface {
	RecordID() uuid.UUID
	ModifiedAt() time.Time
	TombstoneAt() *time.Time
}

// Site is a hostname the team automates against. Personas and scripts may
// point at a site; deleting the site detaches them instead of cascading.
type Site struct {
	ID        uuid.UUID  `json:"id"`
	TeamID    int64      `json:"-"`
	AuthorID  int64      `json:"-"`
	Hostname  string     `json:"hostname"`
	Label     *string    `json:"label"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

func (s Site) RecordID() uuid.UUID     { return s.ID }
func (s Site) ModifiedAt() time.Time   { return s.UpdatedAt }
func (s Site) TombstoneAt() *time.Time { return s.DeletedAt }

// Persona is a named identity, optionally bound to a site. SiteID is
// stored as an opaque reference; a dangling value is legal and surfaces
// as a null lookup on the consuming client.
type Persona struct {
	ID        uuid.UUID  `json:"id"`
	TeamID    int64      `json:"-"`
	AuthorID  int64      `json:"-"`
	SiteID    *uuid.UUID `json:"site_id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

func (p Persona) RecordID() uuid.UUID     { return p.ID }
func (p Persona) ModifiedAt() time.Time   { return p.UpdatedAt }
func (p Persona) TombstoneAt() *time.Time { return p.DeletedAt }

// Field is one recorded step of a script: selector/value/action. The
// fields list is merged as a single atomic blob, never per step.
type Field struct {
	Selector string `json:"selector"`
	Value    string `json:"value,omitempty"`
	Action   string `json:"action,omitempty"`
}

// Script is a recorded automation. Version is a client-supplied counter
// carried as advisory metadata only; the server never compares it.
type Script struct {
	ID            uuid.UUID  `json:"id"`
	TeamID        int64      `json:"-"`
	AuthorID      int64      `json:"-"`
	SiteID        *uuid.UUID `json:"site_id"`
	PersonaID     *uuid.UUID `json:"persona_id"`
	Name          string     `json:"name"`
	URLHint       *string    `json:"url_hint"`
	CreatedByName *string    `json:"created_by_name"`
	Fields        []Field    `json:"fields"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at"`
}

func (s Script) RecordID() uuid.UUID     { return s.ID }
func (s Script) ModifiedAt() time.Time   { return s.UpdatedAt }
func (s Script) TombstoneAt() *time.Time { return s.DeletedAt }
