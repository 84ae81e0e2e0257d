package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/saferoadsa/saferoad/internal/auth"
	"github.com/saferoadsa/saferoad/internal/model"
	"github.com/saferoadsa/saferoad/internal/store"
)

type RouteHandler struct {
	routes *store.RouteStore
	logger *slog.Logger
}

func NewRouteHandler(rs *store.RouteStore, logger *slog.Logger) *RouteHandler {
	return &RouteHandler{routes: rs, logger: logger}
}

type routeRequest struct {
	Name     string  `json:"name"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Polyline *string `json:"polyline"`
}

// Create handles POST /api/routes
func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if strings.TrimSpace(req.From) == "" || strings.TrimSpace(req.To) == "" {
		writeError(w, http.StatusBadRequest, "from and to addresses are required")
		return
	}

	route, err := h.routes.Create(auth.UserID(r.Context()), req.Name, req.From, req.To, req.Polyline)
	if err != nil {
		h.logger.Error("create route", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create route")
		return
	}

	writeJSON(w, http.StatusCreated, route)
}

// List handles GET /api/routes, scoped to the caller's own routes.
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.routes.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list routes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list routes")
		return
	}
	if routes == nil {
		routes = []model.Route{}
	}
	writeJSON(w, http.StatusOK, routes)
}

type updateRouteRequest struct {
	Active *bool `json:"active"`
}

// Update handles PATCH /api/routes/{id}. Only the active flag is mutable;
// route geometry is recreated, not edited.
func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "active is required")
		return
	}

	route, err := h.routes.SetActive(r.PathValue("id"), auth.UserID(r.Context()), *req.Active)
	if err != nil {
		h.logger.Error("update route", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update route")
		return
	}
	if route == nil {
		writeError(w, http.StatusNotFound, "route not found")
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// Delete handles DELETE /api/routes/{id}
func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.routes.Delete(r.PathValue("id"), auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("delete route", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete route")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "route not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
