package store

import (
	"testing"

	"github.com/saferoadsa/saferoad/internal/database"
	"github.com/saferoadsa/saferoad/internal/model"
)

func setupTestDB(t *testing.T) (*ReportStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewReportStore(db), NewUserStore(db)
}

func createTestUser(t *testing.T, us *UserStore, email string) *model.User {
	t.Helper()
	user, err := us.Create(email, "hash", "Test User", "0115551234", "Johannesburg")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func TestReportCreate(t *testing.T) {
	rs, us := setupTestDB(t)
	user := createTestUser(t, us, "reporter@example.com")

	loc := model.Location{Lat: -26.2044, Lng: 28.0459, Address: "Main St & 5th Ave"}
	report, err := rs.Create(user.ID, model.ReportTypePothole, "Pothole", "Large pothole causing tire damage", loc, model.SeverityHigh, nil)
	if err != nil {
		t.Fatalf("create report: %v", err)
	}

	if report.ID == "" {
		t.Error("expected non-empty report ID")
	}
	if report.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", report.UserID, user.ID)
	}
	if report.Status != model.StatusPending {
		t.Errorf("status = %q, want %q", report.Status, model.StatusPending)
	}
	if report.Upvotes != 0 {
		t.Errorf("upvotes = %d, want 0", report.Upvotes)
	}
	if report.Location.Address != "Main St & 5th Ave" {
		t.Errorf("address = %q, want %q", report.Location.Address, "Main St & 5th Ave")
	}
	if report.Photos == nil || len(report.Photos) != 0 {
		t.Errorf("photos = %v, want empty slice", report.Photos)
	}
}

func TestReportListAddsExactlyOne(t *testing.T) {
	rs, us := setupTestDB(t)
	user := createTestUser(t, us, "reporter@example.com")

	before, err := rs.List()
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}

	created, err := rs.Create(user.ID, model.ReportTypeObstruction, "Tree down", "Fallen tree blocking right lane",
		model.Location{Address: "Elm St near Park"}, model.SeverityMedium, []string{"/uploads/tree.jpg"})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}

	after, err := rs.List()
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("expected %d reports, got %d", len(before)+1, len(after))
	}

	found := false
	for _, r := range after {
		if r.ID == created.ID {
			found = true
			if len(r.Photos) != 1 || r.Photos[0] != "/uploads/tree.jpg" {
				t.Errorf("photos = %v, want [/uploads/tree.jpg]", r.Photos)
			}
		}
	}
	if !found {
		t.Error("created report not present in list")
	}
}

func TestReportListIdempotentRead(t *testing.T) {
	rs, us := setupTestDB(t)
	user := createTestUser(t, us, "reporter@example.com")

	for i := 0; i < 3; i++ {
		if _, err := rs.Create(user.ID, model.ReportTypePothole, "p", "d", model.Location{}, model.SeverityLow, nil); err != nil {
			t.Fatalf("create report: %v", err)
		}
	}

	first, err := rs.List()
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	second, err := rs.List()
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("list lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("list order differs at %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestReportUpdateIsIDScoped(t *testing.T) {
	rs, us := setupTestDB(t)
	user := createTestUser(t, us, "reporter@example.com")

	a, _ := rs.Create(user.ID, model.ReportTypePothole, "A", "first", model.Location{}, model.SeverityLow, nil)
	b, _ := rs.Create(user.ID, model.ReportTypePothole, "B", "second", model.Location{}, model.SeverityLow, nil)

	status := model.StatusInProgress
	updated, err := rs.Update(a.ID, ReportUpdate{Status: &status})
	if err != nil {
		t.Fatalf("update report: %v", err)
	}
	if updated.Status != model.StatusInProgress {
		t.Errorf("status = %q, want %q", updated.Status, model.StatusInProgress)
	}
	if !updated.UpdatedAt.After(a.UpdatedAt) && !updated.UpdatedAt.Equal(a.UpdatedAt) {
		t.Error("expected updated_at to be stamped")
	}

	other, err := rs.GetByID(b.ID)
	if err != nil {
		t.Fatalf("get other report: %v", err)
	}
	if other.Status != model.StatusPending {
		t.Errorf("other report status = %q, want untouched %q", other.Status, model.StatusPending)
	}
	if other.Description != "second" {
		t.Errorf("other report description = %q, want %q", other.Description, "second")
	}
}

func TestReportUpdateMissingIDIsNoop(t *testing.T) {
	rs, us := setupTestDB(t)
	user := createTestUser(t, us, "reporter@example.com")
	rs.Create(user.ID, model.ReportTypePothole, "A", "d", model.Location{}, model.SeverityLow, nil)

	before, _ := rs.List()

	status := model.StatusResolved
	updated, err := rs.Update("no-such-id", ReportUpdate{Status: &status})
	if err != nil {
		t.Fatalf("update missing id should not error, got %v", err)
	}
	if updated != nil {
		t.Errorf("expected nil report for missing id, got %+v", updated)
	}

	after, _ := rs.List()
	if len(after) != len(before) {
		t.Errorf("collection size changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Status != after[i].Status {
			t.Errorf("report %q status changed", before[i].ID)
		}
	}
}

func TestReportUpvote(t *testing.T) {
	rs, us := setupTestDB(t)
	user := createTestUser(t, us, "reporter@example.com")

	report, _ := rs.Create(user.ID, model.ReportTypeTrafficLight, "Light out", "d", model.Location{}, model.SeverityCritical, nil)

	for want := 1; want <= 3; want++ {
		got, err := rs.Upvote(report.ID)
		if err != nil {
			t.Fatalf("upvote: %v", err)
		}
		if got.Upvotes != want {
			t.Errorf("upvotes = %d, want %d", got.Upvotes, want)
		}
	}

	missing, err := rs.Upvote("no-such-id")
	if err != nil {
		t.Fatalf("upvote missing id: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for upvoting a missing report")
	}
}

func TestReportDeleteRemovesExactlyOne(t *testing.T) {
	rs, us := setupTestDB(t)
	user := createTestUser(t, us, "reporter@example.com")

	a, _ := rs.Create(user.ID, model.ReportTypePothole, "A", "d", model.Location{}, model.SeverityLow, nil)
	rs.Create(user.ID, model.ReportTypePothole, "B", "d", model.Location{}, model.SeverityLow, nil)

	if err := rs.Delete(a.ID); err != nil {
		t.Fatalf("delete report: %v", err)
	}

	reports, _ := rs.List()
	if len(reports) != 1 {
		t.Fatalf("expected 1 report after delete, got %d", len(reports))
	}
	if reports[0].ID == a.ID {
		t.Error("deleted report still present")
	}
}
