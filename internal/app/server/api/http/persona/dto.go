package persona

import (
	"steno/internal/domain/record"
)

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Personas []record.Persona `json:"personas"`
}

type createInput struct {
	Body createRequest
}

type createRequest struct {
	ID     string  `json:"id,omitempty" format:"uuid" doc:"Client-assigned id; generated when omitted"`
	SiteID *string `json:"site_id,omitempty" format:"uuid" doc:"Optional site binding"`
	Name   string  `json:"name" minLength:"1" doc:"Persona name"`
}

type findInput struct {
	ID string `path:"id" format:"uuid" doc:"Persona id"`
}

type updateInput struct {
	ID   string `path:"id" format:"uuid" doc:"Persona id"`
	Body updateRequest
}

type updateRequest struct {
	SiteID *string `json:"site_id,omitempty" format:"uuid" doc:"New site binding; omitting detaches"`
	Name   *string `json:"name,omitempty" doc:"New name"`
}

type output struct {
	Body personaResponse
}

type personaResponse struct {
	Status  string          `json:"status"`
	Persona *record.Persona `json:"persona,omitempty"`
}

type deleteOutput struct {
	Body deleteResponse
}

type deleteResponse struct {
	Status string `json:"status"`
}
