package model

import "time"

// Report types match the categories offered on the report form.
const (
	ReportTypePothole        = "pothole"
	ReportTypeObstruction    = "obstruction"
	ReportTypeTrafficLight   = "traffic_light"
	ReportTypeInfrastructure = "infrastructure"
	ReportTypeEmergency      = "emergency"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Report status lifecycle: pending -> in_progress -> resolved, or
// pending -> rejected. Transitions are triggered by municipal staff.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type Report struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    Location  `json:"location"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	Photos      []string  `json:"photos"`
	Upvotes     int       `json:"upvotes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidSeverity reports whether s is one of the canonical severity levels.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the canonical report statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// ValidReportType reports whether t is a known report category.
func ValidReportType(t string) bool {
	switch t {
	case ReportTypePothole, ReportTypeObstruction, ReportTypeTrafficLight,
		ReportTypeInfrastructure, ReportTypeEmergency:
		return true
	}
	return false
}
