package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/saferoadsa/saferoad/internal/analytics"
	"github.com/saferoadsa/saferoad/internal/model"
	"github.com/saferoadsa/saferoad/internal/store"
)

type AnalyticsHandler struct {
	reports *store.ReportStore
	logger  *slog.Logger
}

func NewAnalyticsHandler(rs *store.ReportStore, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{reports: rs, logger: logger}
}

func (h *AnalyticsHandler) load(w http.ResponseWriter) ([]model.Report, bool) {
	reports, err := h.reports.List()
	if err != nil {
		h.logger.Error("list reports for analytics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load reports")
		return nil, false
	}
	return reports, true
}

// Summary handles GET /api/analytics/summary
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	reports, ok := h.load(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.Summarize(reports, time.Now()))
}

// Hotspots handles GET /api/analytics/hotspots, returning the top 3
// addresses by report count.
func (h *AnalyticsHandler) Hotspots(w http.ResponseWriter, r *http.Request) {
	reports, ok := h.load(w)
	if !ok {
		return
	}
	hotspots := analytics.TopHotspots(reports, 3)
	if hotspots == nil {
		hotspots = []analytics.Hotspot{}
	}
	writeJSON(w, http.StatusOK, hotspots)
}

// Trends handles GET /api/analytics/trends
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	reports, ok := h.load(w)
	if !ok {
		return
	}
	trends := analytics.MonthlyTrends(reports)
	if trends == nil {
		trends = []analytics.MonthlyTrend{}
	}
	writeJSON(w, http.StatusOK, trends)
}
