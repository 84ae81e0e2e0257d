package model

import "time"

const (
	NotificationSafetyAlert  = "safety_alert"
	NotificationReportUpdate = "report_update"
	NotificationRouteHazard  = "route_hazard"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Coordinate is a single point on a monitored route.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MonitoredRoute is a named list of coordinates with an alert radius in meters.
type MonitoredRoute struct {
	Name        string       `json:"name"`
	Coordinates []Coordinate `json:"coordinates"`
	Radius      float64      `json:"radius"`
}

// NotificationSettings is the per-user alerting configuration. One row per
// user, upserted as a whole.
type NotificationSettings struct {
	UserID          string           `json:"userId"`
	Routes          []MonitoredRoute `json:"routes"`
	AlertTypes      []string         `json:"alertTypes"`
	DeliveryMethods []string         `json:"deliveryMethods"`
	Enabled         bool             `json:"enabled"`
}
