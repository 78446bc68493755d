package site

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

	sites, err := h.service.ListSites(ctx, tc)
	if err != nil {
		return nil, mapErr(err)
	}

	return &listOutput{Body: listResponse{Sites: sites}}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*output, error) {
	tc, ok := auth.GetTenantContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	params := record.CreateSiteParams{
		Hostname: input.Body.Hostname,
		Label:    input.Body.Label,
	}
	if input.Body.ID != "" {
		id, err := uuid.Parse(input.Body.ID)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("Invalid id")
		}
		params.ID = &id
	}

	site, err := h.service.CreateSite(ctx, tc, params)
	if err != nil {
		return nil, mapErr(err)
	}

	return &output{Body: siteResponse{Status: "Ok", Site: site}}, nil
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

	site, err := h.service.GetSite(ctx, tc, id)
	if err != nil {
		return nil, mapErr(err)
	}

	return &output{Body: siteResponse{Status: "Ok", Site: site}}, nil
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

	site, err := h.service.UpdateSite(ctx, tc, id, record.UpdateSiteParams{
		Hostname: input.Body.Hostname,
		Label:    input.Body.Label,
	})
	if err != nil {
		return nil, mapErr(err)
	}

	return &output{Body: siteResponse{Status: "Ok", Site: site}}, nil
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

	if err := h.service.DeleteSite(ctx, tc, id); err != nil {
		return nil, mapErr(err)
	}

	return &deleteOutput{Body: deleteResponse{Status: "Ok"}}, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, record.ErrNotFound):
		return huma.Error404NotFound("Site not found")
	case errors.Is(err, record.ErrForbidden):
		return huma.Error403Forbidden("Forbidden")
	case errors.Is(err, record.ErrInvalidInput):
		return huma.Error422UnprocessableEntity("Invalid input")
	}
	return err
}
