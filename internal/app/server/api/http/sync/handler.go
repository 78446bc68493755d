package sync

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"steno/internal/app/server/api/http/middleware/auth"
	"steno/internal/domain/sync"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.syncOp(), h.sync)
}

func (h *Handler) sync(ctx context.Context, input *syncInput) (*syncOutput, error) {
	tc, ok := auth.GetTenantContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	resp, err := h.service.Sync(ctx, tc, sync.Request{
		LastSyncedAt: input.Body.LastSyncedAt,
		Sites:        input.Body.Sites,
		Personas:     input.Body.Personas,
		Scripts:      input.Body.Scripts,
	})
	if err != nil {
		if errors.Is(err, sync.ErrSubscriptionRequired) {
			return nil, huma.NewError(http.StatusPaymentRequired, "Active subscription required for sync")
		}
		return nil, err
	}

	return &syncOutput{
		Body: SyncResponse{
			Status:   "Ok",
			SyncedAt: resp.SyncedAt,
			Sites:    resp.Sites,
			Personas: resp.Personas,
			Scripts:  resp.Scripts,
		},
	}, nil
}
