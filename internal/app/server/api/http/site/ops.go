package site

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "sites-list",
		Method:      http.MethodGet,
		Path:        "/api/sites",
		Summary:     "List live sites of the current team",
		Tags:        []string{"sites"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "sites-create",
		Method:      http.MethodPost,
		Path:        "/api/sites",
		Summary:     "Create a site",
		Tags:        []string{"sites"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "sites-find",
		Method:      http.MethodGet,
		Path:        "/api/sites/{id}",
		Summary:     "Get a site by id",
		Tags:        []string{"sites"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "sites-update",
		Method:      http.MethodPut,
		Path:        "/api/sites/{id}",
		Summary:     "Update a site",
		Tags:        []string{"sites"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "sites-delete",
		Method:      http.MethodDelete,
		Path:        "/api/sites/{id}",
		Summary:     "Delete a site (tombstone, dependents detach)",
		Tags:        []string{"sites"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
