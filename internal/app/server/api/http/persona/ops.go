package persona

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "personas-list",
		Method:      http.MethodGet,
		Path:        "/api/personas",
		Summary:     "List live personas of the current team",
		Tags:        []string{"personas"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "personas-create",
		Method:      http.MethodPost,
		Path:        "/api/personas",
		Summary:     "Create a persona",
		Tags:        []string{"personas"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "personas-find",
		Method:      http.MethodGet,
		Path:        "/api/personas/{id}",
		Summary:     "Get a persona by id",
		Tags:        []string{"personas"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "personas-update",
		Method:      http.MethodPut,
		Path:        "/api/personas/{id}",
		Summary:     "Update a persona",
		Tags:        []string{"personas"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "personas-delete",
		Method:      http.MethodDelete,
		Path:        "/api/personas/{id}",
		Summary:     "Delete a persona (tombstone, scripts detach)",
		Tags:        []string{"personas"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
