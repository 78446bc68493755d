package site

import (
	"steno/internal/domain/record"
)

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Sites []record.Site `json:"sites"`
}

type createInput struct {
	Body createRequest
}

type createRequest struct {
	ID       string  `json:"id,omitempty" format:"uuid" doc:"Client-assigned id; generated when omitted"`
	Hostname string  `json:"hostname" minLength:"1" doc:"Hostname the site automates against"`
	Label    *string `json:"label,omitempty" doc:"Optional display label"`
}

type findInput struct {
	ID string `path:"id" format:"uuid" doc:"Site id"`
}

type updateInput struct {
	ID   string `path:"id" format:"uuid" doc:"Site id"`
	Body updateRequest
}

type updateRequest struct {
	Hostname *string `json:"hostname,omitempty" doc:"New hostname"`
	Label    *string `json:"label,omitempty" doc:"New label; omitting clears it"`
}

type output struct {
	Body siteResponse
}

type siteResponse struct {
	Status string       `json:"status"`
	Site   *record.Site `json:"site,omitempty"`
}

type deleteOutput struct {
	Body deleteResponse
}

type deleteResponse struct {
	Status string `json:"status"`
}
