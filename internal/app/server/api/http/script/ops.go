package script

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "scripts-list",
		Method:      http.MethodGet,
		Path:        "/api/scripts",
		Summary:     "List live scripts of the current team",
		Tags:        []string{"scripts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "scripts-create",
		Method:      http.MethodPost,
		Path:        "/api/scripts",
		Summary:     "Create a script",
		Description: "Free-tier teams are capped on the number of live scripts.",
		Tags:        []string{"scripts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "scripts-find",
		Method:      http.MethodGet,
		Path:        "/api/scripts/{id}",
		Summary:     "Get a script by id",
		Tags:        []string{"scripts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "scripts-update",
		Method:      http.MethodPut,
		Path:        "/api/scripts/{id}",
		Summary:     "Update a script",
		Description: "Editors may only touch their own scripts; admins and owners any.",
		Tags:        []string{"scripts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "scripts-delete",
		Method:      http.MethodDelete,
		Path:        "/api/scripts/{id}",
		Summary:     "Delete a script (tombstone)",
		Tags:        []string{"scripts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
