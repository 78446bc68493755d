package script

import (
	"steno/internal/domain/record"
)

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Scripts []record.Script `json:"scripts"`
}

type createInput struct {
	Body createRequest
}

type createRequest struct {
	ID            string         `json:"id,omitempty" format:"uuid" doc:"Client-assigned id; generated when omitted"`
	SiteID        *string        `json:"site_id,omitempty" format:"uuid" doc:"Optional site binding"`
	PersonaID     *string        `json:"persona_id,omitempty" format:"uuid" doc:"Optional persona binding"`
	Name          string         `json:"name" minLength:"1" doc:"Script name"`
	URLHint       *string        `json:"url_hint,omitempty" doc:"URL the recording started on"`
	CreatedByName *string        `json:"created_by_name,omitempty" doc:"Display name of the recording author"`
	Fields        []record.Field `json:"fields" minItems:"1" doc:"Recorded steps"`
	Version       *int           `json:"version,omitempty" doc:"Client version counter, advisory"`
}

type findInput struct {
	ID string `path:"id" format:"uuid" doc:"Script id"`
}

type updateInput struct {
	ID   string `path:"id" format:"uuid" doc:"Script id"`
	Body updateRequest
}

type updateRequest struct {
	SiteID        *string        `json:"site_id,omitempty" format:"uuid" doc:"New site binding; omitting detaches"`
	PersonaID     *string        `json:"persona_id,omitempty" format:"uuid" doc:"New persona binding; omitting detaches"`
	Name          *string        `json:"name,omitempty" doc:"New name"`
	URLHint       *string        `json:"url_hint,omitempty" doc:"New URL hint"`
	CreatedByName *string        `json:"created_by_name,omitempty" doc:"New author display name"`
	Fields        []record.Field `json:"fields,omitempty" doc:"Replacement steps; the list is atomic"`
	Version       *int           `json:"version,omitempty" doc:"Client version counter, advisory"`
}

type output struct {
	Body scriptResponse
}

type scriptResponse struct {
	Status string         `json:"status"`
	Script *record.Script `json:"script,omitempty"`
}

type deleteOutput struct {
	Body deleteResponse
}

type deleteResponse struct {
	Status string `json:"status"`
}
