package sync

import (
	"time"

	"steno/internal/domain/record"
)

type syncInput struct {
	Body SyncRequest
}

type syncOutput struct {
	Body SyncResponse
}

// SyncRequest is one batch push: the cursor from the previous sync plus
// every record that changed locally since then. Records carry their
// client-assigned ids and client-stamped timestamps.
type SyncRequest struct {
	LastSyncedAt *time.Time       `json:"last_synced_at" format:"date-time" doc:"Cursor from the previous sync; null on first sync"`
	Sites        []record.Site    `json:"sites,omitempty" doc:"Locally changed sites"`
	Personas     []record.Persona `json:"personas,omitempty" doc:"Locally changed personas"`
	Scripts      []record.Script  `json:"scripts,omitempty" doc:"Locally changed scripts"`
}

// SyncResponse is the change feed: everything of the team written after
// the request cursor, tombstones included, plus the next cursor.
type SyncResponse struct {
	Status   string           `json:"status"`
	SyncedAt time.Time        `json:"synced_at" format:"date-time" doc:"Cursor to send on the next sync"`
	Sites    []record.Site    `json:"sites"`
	Personas []record.Persona `json:"personas"`
	Scripts  []record.Script  `json:"scripts"`
}
