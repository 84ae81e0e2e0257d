package handler

import (
	"log/slog"
	"net/http"

	"github.com/saferoadsa/saferoad/internal/auth"
	"github.com/saferoadsa/saferoad/internal/model"
	"github.com/saferoadsa/saferoad/internal/store"
)

type NotificationHandler struct {
	notifications *store.NotificationStore
	logger        *slog.Logger
}

func NewNotificationHandler(ns *store.NotificationStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: ns, logger: logger}
}

// List handles GET /api/notifications, newest first, scoped to the caller.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.notifications.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if items == nil {
		items = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, items)
}

// MarkRead handles POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	marked, err := h.notifications.MarkRead(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("mark notification read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	if !marked {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}

	n, err := h.notifications.GetByID(id)
	if err != nil || n == nil {
		writeError(w, http.StatusInternalServerError, "failed to load notification")
		return
	}
	writeJSON(w, http.StatusOK, n)
}
