package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/saferoadsa/saferoad/internal/auth"
	"github.com/saferoadsa/saferoad/internal/model"
	"github.com/saferoadsa/saferoad/internal/store"
)

type SettingsHandler struct {
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: ss, logger: logger}
}

func defaultSettings(userID string) *model.NotificationSettings {
	return &model.NotificationSettings{
		UserID:          userID,
		Routes:          []model.MonitoredRoute{},
		AlertTypes:      []string{},
		DeliveryMethods: []string{"push"},
		Enabled:         true,
	}
}

// Get handles GET /api/notification-settings. Users who never saved settings
// get the defaults back.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	ns, err := h.settings.GetByUser(userID)
	if err != nil {
		h.logger.Error("get notification settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	if ns == nil {
		ns = defaultSettings(userID)
	}
	writeJSON(w, http.StatusOK, ns)
}

type settingsRequest struct {
	Routes          []model.MonitoredRoute `json:"routes"`
	AlertTypes      []string               `json:"alertTypes"`
	DeliveryMethods []string               `json:"deliveryMethods"`
	Enabled         *bool                  `json:"enabled"`
}

// Put handles PUT /api/notification-settings, replacing the caller's settings.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	for _, route := range req.Routes {
		if route.Name == "" {
			writeError(w, http.StatusBadRequest, "every monitored route needs a name")
			return
		}
		if len(route.Coordinates) == 0 {
			writeError(w, http.StatusBadRequest, "every monitored route needs coordinates")
			return
		}
	}
	for _, at := range req.AlertTypes {
		if !model.ValidReportType(at) {
			writeError(w, http.StatusBadRequest, "unknown alert type: "+at)
			return
		}
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	ns := model.NotificationSettings{
		UserID:          auth.UserID(r.Context()),
		Routes:          req.Routes,
		AlertTypes:      req.AlertTypes,
		DeliveryMethods: req.DeliveryMethods,
		Enabled:         enabled,
	}

	if err := h.settings.Upsert(ns); err != nil {
		h.logger.Error("save notification settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	saved, err := h.settings.GetByUser(ns.UserID)
	if err != nil || saved == nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
