package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/saferoadsa/saferoad/internal/model"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// GetByUser returns the user's notification settings, or nil if the user has
// never saved any.
func (s *SettingsStore) GetByUser(userID string) (*model.NotificationSettings, error) {
	row := s.db.QueryRow(
		`SELECT user_id, routes, alert_types, delivery_methods, enabled FROM notification_settings WHERE user_id = ?`,
		userID,
	)

	var ns model.NotificationSettings
	var routes, alertTypes, deliveryMethods string
	var enabled int
	err := row.Scan(&ns.UserID, &routes, &alertTypes, &deliveryMethods, &enabled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification settings: %w", err)
	}

	ns.Enabled = enabled != 0
	if err := json.Unmarshal([]byte(routes), &ns.Routes); err != nil {
		return nil, fmt.Errorf("decode monitored routes: %w", err)
	}
	if err := json.Unmarshal([]byte(alertTypes), &ns.AlertTypes); err != nil {
		return nil, fmt.Errorf("decode alert types: %w", err)
	}
	if err := json.Unmarshal([]byte(deliveryMethods), &ns.DeliveryMethods); err != nil {
		return nil, fmt.Errorf("decode delivery methods: %w", err)
	}
	return &ns, nil
}

// Upsert replaces the user's notification settings wholesale.
func (s *SettingsStore) Upsert(ns model.NotificationSettings) error {
	if ns.Routes == nil {
		ns.Routes = []model.MonitoredRoute{}
	}
	if ns.AlertTypes == nil {
		ns.AlertTypes = []string{}
	}
	if ns.DeliveryMethods == nil {
		ns.DeliveryMethods = []string{}
	}

	routes, err := json.Marshal(ns.Routes)
	if err != nil {
		return fmt.Errorf("encode monitored routes: %w", err)
	}
	alertTypes, err := json.Marshal(ns.AlertTypes)
	if err != nil {
		return fmt.Errorf("encode alert types: %w", err)
	}
	deliveryMethods, err := json.Marshal(ns.DeliveryMethods)
	if err != nil {
		return fmt.Errorf("encode delivery methods: %w", err)
	}

	enabled := 0
	if ns.Enabled {
		enabled = 1
	}

	_, err = s.db.Exec(
		`INSERT INTO notification_settings (user_id, routes, alert_types, delivery_methods, enabled)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   routes = excluded.routes,
		   alert_types = excluded.alert_types,
		   delivery_methods = excluded.delivery_methods,
		   enabled = excluded.enabled`,
		ns.UserID, string(routes), string(alertTypes), string(deliveryMethods), enabled,
	)
	if err != nil {
		return fmt.Errorf("upsert notification settings: %w", err)
	}
	return nil
}

// ListEnabled returns every user's settings row with the master flag on.
// The alert engine scans these when a new report lands.
func (s *SettingsStore) ListEnabled() ([]model.NotificationSettings, error) {
	rows, err := s.db.Query(
		`SELECT user_id, routes, alert_types, delivery_methods, enabled FROM notification_settings WHERE enabled = 1`,
	)
	if err != nil {
		return nil, fmt.Errorf("list enabled settings: %w", err)
	}
	defer rows.Close()

	var all []model.NotificationSettings
	for rows.Next() {
		var ns model.NotificationSettings
		var routes, alertTypes, deliveryMethods string
		var enabled int
		if err := rows.Scan(&ns.UserID, &routes, &alertTypes, &deliveryMethods, &enabled); err != nil {
			return nil, fmt.Errorf("scan settings: %w", err)
		}
		ns.Enabled = enabled != 0
		if err := json.Unmarshal([]byte(routes), &ns.Routes); err != nil {
			return nil, fmt.Errorf("decode monitored routes: %w", err)
		}
		if err := json.Unmarshal([]byte(alertTypes), &ns.AlertTypes); err != nil {
			return nil, fmt.Errorf("decode alert types: %w", err)
		}
		if err := json.Unmarshal([]byte(deliveryMethods), &ns.DeliveryMethods); err != nil {
			return nil, fmt.Errorf("decode delivery methods: %w", err)
		}
		all = append(all, ns)
	}
	return all, rows.Err()
}
