package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

// StoreHandler serves store summaries and descriptors over HTTP
type StoreHandler struct {
	service storeinfo.Service
	logger  *slog.Logger
}

// NewStoreHandler creates a new store handler. A nil logger uses slog.Default().
func NewStoreHandler(service storeinfo.Service, logger *slog.Logger) *StoreHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreHandler{service: service, logger: logger}
}

// Routes returns the routes for stores
func (h *StoreHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/workspaces", h.ListWorkspaces)
	r.Get("/stores/{workspace}", h.ListStores)
	r.Get("/stores/{workspace}/{name}", h.DescribeStore)

	return r
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *StoreHandler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error()})
}

// ListWorkspaces lists the workspaces that hold at least one store
func (h *StoreHandler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.service.ListWorkspaces(r.Context())
	if err != nil {
		h.logger.Error("Failed to list workspaces", "err", err)
		h.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if workspaces == nil {
		workspaces = []string{}
	}
	render.JSON(w, r, workspaces)
}

// ListStores lists the summaries of every store in a workspace
func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	workspace := chi.URLParam(r, "workspace")

	summaries, err := h.service.ListStores(r.Context(), workspace)
	if err != nil {
		h.logger.Error("Failed to list stores", "workspace", workspace, "err", err)
		h.writeError(w, r, statusFor(err), err)
		return
	}
	render.JSON(w, r, summaries)
}

// DescribeStore builds the descriptor of a single store
func (h *StoreHandler) DescribeStore(w http.ResponseWriter, r *http.Request) {
	workspace := chi.URLParam(r, "workspace")
	name := chi.URLParam(r, "name")

	descriptor, err := h.service.DescribeStore(r.Context(), workspace, name)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			h.logger.Debug("Store not found", "workspace", workspace, "name", name)
		} else {
			h.logger.Error("Failed to describe store", "workspace", workspace, "name", name, "err", err)
		}
		h.writeError(w, r, status, err)
		return
	}
	render.JSON(w, r, descriptor)
}

func statusFor(err error) int {
	var lookup *storeinfo.LookupError
	if errors.As(err, &lookup) && storeinfo.IsNotFound(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
