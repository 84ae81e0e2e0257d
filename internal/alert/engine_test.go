package alert

import (
	"log/slog"
	"testing"

	"github.com/saferoadsa/saferoad/internal/database"
	"github.com/saferoadsa/saferoad/internal/model"
	"github.com/saferoadsa/saferoad/internal/push"
	"github.com/saferoadsa/saferoad/internal/store"
)

type fakeSender struct {
	sent    []push.Payload
	results map[string]error // endpoint -> forced result
}

func (f *fakeSender) Send(sub *model.PushSubscription, payload push.Payload) error {
	f.sent = append(f.sent, payload)
	if err, ok := f.results[sub.Endpoint]; ok {
		return err
	}
	return nil
}

type fixture struct {
	engine        *Engine
	users         *store.UserStore
	settings      *store.SettingsStore
	notifications *store.NotificationStore
	pushStore     *store.PushStore
	sender        *fakeSender
}

func setupEngine(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		users:         store.NewUserStore(db),
		settings:      store.NewSettingsStore(db),
		notifications: store.NewNotificationStore(db),
		pushStore:     store.NewPushStore(db),
		sender:        &fakeSender{results: map[string]error{}},
	}
	f.engine = NewEngine(f.settings, f.notifications, f.pushStore, f.sender, slog.Default())
	return f
}

func (f *fixture) addUser(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := f.users.Create(email, "hash", "User", "", "Johannesburg")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Commuter watches a point in central Johannesburg with a 500m radius.
func commuterSettings(userID string, methods []string) model.NotificationSettings {
	return model.NotificationSettings{
		UserID: userID,
		Routes: []model.MonitoredRoute{
			{
				Name:        "Commute",
				Coordinates: []model.Coordinate{{Lat: -26.2041, Lng: 28.0473}},
				Radius:      500,
			},
		},
		DeliveryMethods: methods,
		Enabled:         true,
	}
}

func TestReportCreatedNotifiesNearbyRoute(t *testing.T) {
	f := setupEngine(t)
	reporter := f.addUser(t, "reporter@example.com")
	commuter := f.addUser(t, "commuter@example.com")

	if err := f.settings.Upsert(commuterSettings(commuter.ID, nil)); err != nil {
		t.Fatalf("upsert settings: %v", err)
	}

	// ~150m from the monitored coordinate.
	f.engine.ReportCreated(&model.Report{
		ID:       "r1",
		UserID:   reporter.ID,
		Type:     model.ReportTypePothole,
		Severity: model.SeverityHigh,
		Location: model.Location{Lat: -26.2045, Lng: 28.0488, Address: "Commissioner St"},
	})

	notifs, err := f.notifications.ListByUser(commuter.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].Type != model.NotificationRouteHazard {
		t.Errorf("type = %q, want %q", notifs[0].Type, model.NotificationRouteHazard)
	}
}

func TestReportCreatedIgnoresFarReports(t *testing.T) {
	f := setupEngine(t)
	reporter := f.addUser(t, "reporter@example.com")
	commuter := f.addUser(t, "commuter@example.com")
	f.settings.Upsert(commuterSettings(commuter.ID, nil))

	// Pretoria is ~50km away from the monitored coordinate.
	f.engine.ReportCreated(&model.Report{
		ID:       "r1",
		UserID:   reporter.ID,
		Type:     model.ReportTypePothole,
		Severity: model.SeverityLow,
		Location: model.Location{Lat: -25.7479, Lng: 28.2293, Address: "Church St"},
	})

	notifs, _ := f.notifications.ListByUser(commuter.ID)
	if len(notifs) != 0 {
		t.Errorf("expected no notifications for a far report, got %d", len(notifs))
	}
}

func TestReportCreatedSkipsReporter(t *testing.T) {
	f := setupEngine(t)
	commuter := f.addUser(t, "commuter@example.com")
	f.settings.Upsert(commuterSettings(commuter.ID, nil))

	f.engine.ReportCreated(&model.Report{
		ID:       "r1",
		UserID:   commuter.ID,
		Type:     model.ReportTypePothole,
		Location: model.Location{Lat: -26.2041, Lng: 28.0473},
	})

	notifs, _ := f.notifications.ListByUser(commuter.ID)
	if len(notifs) != 0 {
		t.Errorf("reporter should not be alerted about their own report, got %d notifications", len(notifs))
	}
}

func TestReportCreatedRespectsAlertTypes(t *testing.T) {
	f := setupEngine(t)
	reporter := f.addUser(t, "reporter@example.com")
	commuter := f.addUser(t, "commuter@example.com")

	ns := commuterSettings(commuter.ID, nil)
	ns.AlertTypes = []string{model.ReportTypeTrafficLight}
	f.settings.Upsert(ns)

	f.engine.ReportCreated(&model.Report{
		ID:       "r1",
		UserID:   reporter.ID,
		Type:     model.ReportTypePothole,
		Location: model.Location{Lat: -26.2041, Lng: 28.0473},
	})

	notifs, _ := f.notifications.ListByUser(commuter.ID)
	if len(notifs) != 0 {
		t.Errorf("expected filtered-out type to produce no notification, got %d", len(notifs))
	}
}

func TestReportCreatedSendsPushAndPrunesExpired(t *testing.T) {
	f := setupEngine(t)
	reporter := f.addUser(t, "reporter@example.com")
	commuter := f.addUser(t, "commuter@example.com")
	f.settings.Upsert(commuterSettings(commuter.ID, []string{"push"}))

	f.pushStore.Subscribe(commuter.ID, "https://push.example/live", "k", "a")
	f.pushStore.Subscribe(commuter.ID, "https://push.example/dead", "k", "a")
	f.sender.results["https://push.example/dead"] = push.ErrExpired

	f.engine.ReportCreated(&model.Report{
		ID:       "r1",
		UserID:   reporter.ID,
		Type:     model.ReportTypeEmergency,
		Severity: model.SeverityCritical,
		Location: model.Location{Lat: -26.2041, Lng: 28.0473, Address: "Main Reef Rd"},
	})

	if len(f.sender.sent) != 2 {
		t.Fatalf("expected 2 push attempts, got %d", len(f.sender.sent))
	}

	subs, _ := f.pushStore.ListByUser(commuter.ID)
	if len(subs) != 1 {
		t.Fatalf("expected expired subscription to be pruned, got %d remaining", len(subs))
	}
	if subs[0].Endpoint != "https://push.example/live" {
		t.Errorf("remaining endpoint = %q, want the live one", subs[0].Endpoint)
	}
}

func TestHaversineMeters(t *testing.T) {
	// Same point.
	if d := haversineMeters(-26.2041, 28.0473, -26.2041, 28.0473); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}

	// Johannesburg to Pretoria is roughly 53km.
	d := haversineMeters(-26.2041, 28.0473, -25.7479, 28.2293)
	if d < 50000 || d > 56000 {
		t.Errorf("JHB-PTA distance = %.0fm, want ~53km", d)
	}
}
