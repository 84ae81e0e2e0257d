// Package alert matches freshly submitted reports against users' monitored
// routes and fans out route-hazard notifications.
package alert

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/saferoadsa/saferoad/internal/model"
	"github.com/saferoadsa/saferoad/internal/push"
	"github.com/saferoadsa/saferoad/internal/store"
)

// Sender delivers a web push message to one subscription. Satisfied by
// *push.Service; tests substitute a fake.
type Sender interface {
	Send(sub *model.PushSubscription, payload push.Payload) error
}

// Engine evaluates new reports against enabled notification settings.
type Engine struct {
	settings      *store.SettingsStore
	notifications *store.NotificationStore
	pushStore     *store.PushStore
	sender        Sender
	logger        *slog.Logger
}

// NewEngine creates an alert engine. sender may be nil when web push is not
// configured; in-app notifications are still created.
func NewEngine(ss *store.SettingsStore, ns *store.NotificationStore, ps *store.PushStore, sender Sender, logger *slog.Logger) *Engine {
	return &Engine{
		settings:      ss,
		notifications: ns,
		pushStore:     ps,
		sender:        sender,
		logger:        logger,
	}
}

// ReportCreated notifies every user whose enabled settings monitor a route
// passing near the report's location. The reporter is never alerted about
// their own report.
func (e *Engine) ReportCreated(report *model.Report) {
	all, err := e.settings.ListEnabled()
	if err != nil {
		e.logger.Error("list enabled settings", "error", err)
		return
	}

	for _, ns := range all {
		if ns.UserID == report.UserID {
			continue
		}
		if !wantsAlert(ns.AlertTypes, report.Type) {
			continue
		}

		route, hit := matchRoute(ns.Routes, report.Location)
		if !hit {
			continue
		}

		title := fmt.Sprintf("Hazard reported near %q", route.Name)
		message := hazardMessage(report)

		if _, err := e.notifications.Create(ns.UserID, model.NotificationRouteHazard, title, message); err != nil {
			e.logger.Error("create route hazard notification", "user_id", ns.UserID, "error", err)
			continue
		}

		if e.sender != nil && hasMethod(ns.DeliveryMethods, "push") {
			e.sendPush(ns.UserID, title, message, report.ID)
		}
	}
}

func (e *Engine) sendPush(userID, title, message, reportID string) {
	subs, err := e.pushStore.ListByUser(userID)
	if err != nil {
		e.logger.Error("list push subscriptions", "user_id", userID, "error", err)
		return
	}

	for i := range subs {
		err := e.sender.Send(&subs[i], push.Payload{
			Title: title,
			Body:  message,
			URL:   "/map?report=" + reportID,
			Tag:   "route-hazard-" + reportID,
		})
		if err == push.ErrExpired {
			// Browser dropped the subscription; stop trying it.
			if err := e.pushStore.DeleteByEndpoint(subs[i].Endpoint); err != nil {
				e.logger.Error("prune expired subscription", "error", err)
			}
			continue
		}
		if err != nil {
			e.logger.Warn("send route hazard push", "user_id", userID, "error", err)
		}
	}
}

// wantsAlert reports whether the user's alert types include the report type.
// An empty list means all types.
func wantsAlert(alertTypes []string, reportType string) bool {
	if len(alertTypes) == 0 {
		return true
	}
	for _, t := range alertTypes {
		if t == reportType {
			return true
		}
	}
	return false
}

func hasMethod(methods []string, method string) bool {
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// matchRoute returns the first monitored route with a coordinate within the
// route's radius (meters) of the report location.
func matchRoute(routes []model.MonitoredRoute, loc model.Location) (model.MonitoredRoute, bool) {
	for _, route := range routes {
		radius := route.Radius
		if radius <= 0 {
			radius = 500
		}
		for _, c := range route.Coordinates {
			if haversineMeters(c.Lat, c.Lng, loc.Lat, loc.Lng) <= radius {
				return route, true
			}
		}
	}
	return model.MonitoredRoute{}, false
}

func hazardMessage(report *model.Report) string {
	where := report.Location.Address
	if where == "" {
		where = fmt.Sprintf("%.4f, %.4f", report.Location.Lat, report.Location.Lng)
	}
	return fmt.Sprintf("%s (%s severity) reported at %s", typeLabel(report.Type), report.Severity, where)
}

func typeLabel(reportType string) string {
	switch reportType {
	case model.ReportTypePothole:
		return "Pothole"
	case model.ReportTypeObstruction:
		return "Road obstruction"
	case model.ReportTypeTrafficLight:
		return "Traffic light fault"
	case model.ReportTypeInfrastructure:
		return "Infrastructure issue"
	case model.ReportTypeEmergency:
		return "Emergency"
	default:
		return reportType
	}
}

const earthRadiusMeters = 6371000

// haversineMeters is the great-circle distance between two points.
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
