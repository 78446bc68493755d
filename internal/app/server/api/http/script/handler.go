package script

import (
	"context"
	"errors"
	"net/http"

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

	scripts, err := h.service.ListScripts(ctx, tc)
	if err != nil {
		return nil, mapErr(err)
	}

	return &listOutput{Body: listResponse{Scripts: scripts}}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*output, error) {
	tc, ok := auth.GetTenantContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	params := record.CreateScriptParams{
		Name:          input.Body.Name,
		URLHint:       input.Body.URLHint,
		CreatedByName: input.Body.CreatedByName,
		Fields:        input.Body.Fields,
		Version:       input.Body.Version,
	}
	if input.Body.ID != "" {
		id, err := uuid.Parse(input.Body.ID)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("Invalid id")
		}
		params.ID = &id
	}

	var err error
	if params.SiteID, err = parseOptionalID(input.Body.SiteID); err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid site_id")
	}
	if params.PersonaID, err = parseOptionalID(input.Body.PersonaID); err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid persona_id")
	}

	script, err := h.service.CreateScript(ctx, tc, params)
	if err != nil {
		return nil, mapErr(err)
	}

	return &output{Body: scriptResponse{Status: "Ok", Script: script}}, nil
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

	script, err := h.service.GetScript(ctx, tc, id)
	if err != nil {
		return nil, mapErr(err)
	}

	return &output{Body: scriptResponse{Status: "Ok", Script: script}}, nil
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

	params := record.UpdateScriptParams{
		Name:          input.Body.Name,
		URLHint:       input.Body.URLHint,
		CreatedByName: input.Body.CreatedByName,
		Fields:        input.Body.Fields,
		Version:       input.Body.Version,
	}
	if params.SiteID, err = parseOptionalID(input.Body.SiteID); err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid site_id")
	}
	if params.PersonaID, err = parseOptionalID(input.Body.PersonaID); err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid persona_id")
	}

	script, err := h.service.UpdateScript(ctx, tc, id, params)
	if err != nil {
		return nil, mapErr(err)
	}

	return &output{Body: scriptResponse{Status: "Ok", Script: script}}, nil
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

	if err := h.service.DeleteScript(ctx, tc, id); err != nil {
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
		return huma.Error404NotFound("Script not found")
	case errors.Is(err, record.ErrForbidden):
		return huma.Error403Forbidden("Forbidden")
	case errors.Is(err, record.ErrQuotaExceeded):
		return huma.NewError(http.StatusPaymentRequired, "Free tier script limit reached")
	case errors.Is(err, record.ErrInvalidInput):
		return huma.Error422UnprocessableEntity("Invalid input")
	}
	return err
}
