package persona

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"steno/internal/app/server/api/http/middleware/auth"
	"steno/internal/domain/record"
)

type Handler struct {
	service    record.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service record.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	tc, ok := auth.GetTenantContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	personas, err := h.service.ListPersonas(ctx, tc)
	if err != nil {
		return nil, mapErr(err)
	}

	return &listOutput{Body: listResponse{Personas: personas}}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*output, error) {
	tc, ok := auth.GetTenantContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	params := record.CreatePersonaParams{Name: input.Body.Name}
	if input.Body.ID != "" {
		id, err := uuid.Parse(input.Body.ID)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("Invalid id")
		}
		params.ID = &id
	}
	siteID, err := parseOptionalID(input.Body.SiteID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid site_id")
	}
	params.SiteID = siteID

	persona, err := h.service.CreatePersona(ctx, tc, params)
	if err != nil {
		return nil, mapErr(err)
	}

	return &output{Body: personaResponse{Status: "Ok", Persona: persona}}, nil
}

func (h *Handler) find(ctx context.Context, input *findInput) (*output, error) {
	tc, ok := auth.GetTenantContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid id")
	}

	persona, err := h.service.GetPersona(ctx, tc, id)
	if err != nil {
		return nil, mapErr(err)
	}

	return &output{Body: personaResponse{Status: "Ok", Persona: persona}}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*output, error) {
	tc, ok := auth.GetTenantContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid id")
	}
	siteID, err := parseOptionalID(input.Body.SiteID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid site_id")
	}

	persona, err := h.service.UpdatePersona(ctx, tc, id, record.UpdatePersonaParams{
		SiteID: siteID,
		Name:   input.Body.Name,
	})
	if err != nil {
		return nil, mapErr(err)
	}

	return &output{Body: personaResponse{Status: "Ok", Persona: persona}}, nil
}

func (h *Handler) delete(ctx context.Context, input *findInput) (*deleteOutput, error) {
	tc, ok := auth.GetTenantContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid id")
	}

	if err := h.service.DeletePersona(ctx, tc, id); err != nil {
		return nil, mapErr(err)
	}

	return &deleteOutput{Body: deleteResponse{Status: "Ok"}}, nil
}

func parseOptionalID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, record.ErrNotFound):
		return huma.Error404NotFound("Persona not found")
	case errors.Is(err, record.ErrForbidden):
		return huma.Error403Forbidden("Forbidden")
	case errors.Is(err, record.ErrInvalidInput):
		return huma.Error422UnprocessableEntity("Invalid input")
	}
	return err
}
