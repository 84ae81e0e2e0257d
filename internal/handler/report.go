package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/saferoadsa/saferoad/internal/alert"
	"github.com/saferoadsa/saferoad/internal/analytics"
	"github.com/saferoadsa/saferoad/internal/auth"
	"github.com/saferoadsa/saferoad/internal/model"
	"github.com/saferoadsa/saferoad/internal/store"
	"github.com/saferoadsa/saferoad/internal/websocket"
)

type ReportHandler struct {
	reports *store.ReportStore
	users   *store.UserStore
	alerts  *alert.Engine
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewReportHandler(rs *store.ReportStore, us *store.UserStore, engine *alert.Engine, hub *websocket.Hub, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: rs, users: us, alerts: engine, hub: hub, logger: logger}
}

func (h *ReportHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type createReportRequest struct {
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Location    model.Location `json:"location"`
	Severity    string         `json:"severity"`
	Photos      []string       `json:"photos"`
}

// Create handles POST /api/reports
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if !model.ValidReportType(req.Type) {
		writeError(w, http.StatusBadRequest, "type must be pothole, obstruction, traffic_light, infrastructure, or emergency")
		return
	}
	if req.Severity == "" {
		req.Severity = model.SeverityMedium
	}
	if !model.ValidSeverity(req.Severity) {
		writeError(w, http.StatusBadRequest, "severity must be low, medium, high, or critical")
		return
	}
	if req.Location.Lat == 0 && req.Location.Lng == 0 {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}

	report, err := h.reports.Create(auth.UserID(r.Context()), req.Type, req.Title, req.Description, req.Location, req.Severity, req.Photos)
	if err != nil {
		h.logger.Error("create report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	// Route-hazard fan-out happens off the request path.
	go h.alerts.ReportCreated(report)

	h.broadcast(websocket.NewMessage("report", "created", report.ID, map[string]any{
		"type":     report.Type,
		"severity": report.Severity,
	}))

	writeJSON(w, http.StatusCreated, report)
}

// List handles GET /api/reports with optional status, severity, and q filters.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List()
	if err != nil {
		h.logger.Error("list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}

	q := r.URL.Query()
	filter := analytics.Filter{
		Status:   strings.ToLower(q.Get("status")),
		Severity: strings.ToLower(q.Get("severity")),
		Query:    q.Get("q"),
	}

	if filter.Status != "" || filter.Severity != "" || filter.Query != "" {
		names, err := h.users.Names()
		if err != nil {
			h.logger.Error("load reporter names", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list reports")
			return
		}
		reports = analytics.FilterReports(reports, names, filter)
		if reports == nil {
			reports = []model.Report{}
		}
	}

	writeJSON(w, http.StatusOK, reports)
}

// Get handles GET /api/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get report")
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type updateReportRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Severity    *string  `json:"severity"`
	Status      *string  `json:"status"`
	Photos      []string `json:"photos"`
}

// Update handles PATCH /api/reports/{id}. Status changes are reserved for
// admins; everything else is open to the reporter community.
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Severity != nil && !model.ValidSeverity(*req.Severity) {
		writeError(w, http.StatusBadRequest, "severity must be low, medium, high, or critical")
		return
	}
	if req.Status != nil {
		if !model.ValidStatus(*req.Status) {
			writeError(w, http.StatusBadRequest, "status must be pending, in_progress, resolved, or rejected")
			return
		}
		if !auth.IsAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, "only admins can change report status")
			return
		}
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title cannot be empty")
		return
	}

	report, err := h.reports.Update(r.PathValue("id"), store.ReportUpdate{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Status:      req.Status,
		Photos:      req.Photos,
	})
	if err != nil {
		h.logger.Error("update report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update report")
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	h.broadcast(websocket.NewMessage("report", "updated", report.ID, map[string]any{
		"status": report.Status,
	}))

	writeJSON(w, http.StatusOK, report)
}

// Upvote handles POST /api/reports/{id}/upvote
func (h *ReportHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Upvote(r.PathValue("id"))
	if err != nil {
		h.logger.Error("upvote report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upvote report")
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	h.broadcast(websocket.NewMessage("report", "upvoted", report.ID, map[string]any{
		"upvotes": report.Upvotes,
	}))

	writeJSON(w, http.StatusOK, report)
}
