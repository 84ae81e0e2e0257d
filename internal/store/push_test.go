package store

import (
	"testing"

	"github.com/saferoadsa/saferoad/internal/database"
)

func setupPushTestDB(t *testing.T) (*PushStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPushStore(db), NewUserStore(db)
}

func TestPushSubscribeAndList(t *testing.T) {
	ps, us := setupPushTestDB(t)
	user := createTestUser(t, us, "push@example.com")

	sub, err := ps.Subscribe(user.ID, "https://push.example/ep1", "p256dh-key", "auth-key")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.Endpoint != "https://push.example/ep1" {
		t.Errorf("endpoint = %q", sub.Endpoint)
	}

	subs, err := ps.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
}

func TestPushResubscribeRefreshesKeys(t *testing.T) {
	ps, us := setupPushTestDB(t)
	user := createTestUser(t, us, "push@example.com")

	ps.Subscribe(user.ID, "https://push.example/ep1", "old-p256dh", "old-auth")
	sub, err := ps.Subscribe(user.ID, "https://push.example/ep1", "new-p256dh", "new-auth")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if sub.P256dhKey != "new-p256dh" || sub.AuthKey != "new-auth" {
		t.Errorf("keys = %q %q, want refreshed", sub.P256dhKey, sub.AuthKey)
	}

	subs, _ := ps.ListByUser(user.ID)
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription after resubscribe, got %d", len(subs))
	}
}

func TestPushDelete(t *testing.T) {
	ps, us := setupPushTestDB(t)
	user := createTestUser(t, us, "push@example.com")
	other := createTestUser(t, us, "other@example.com")

	sub, _ := ps.Subscribe(user.ID, "https://push.example/ep1", "k", "a")

	ok, err := ps.Delete(sub.ID, other.ID)
	if err != nil {
		t.Fatalf("delete wrong owner: %v", err)
	}
	if ok {
		t.Error("expected delete to fail for the wrong owner")
	}

	ok, err = ps.Delete(sub.ID, user.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Error("expected delete to succeed for the owner")
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	ps, us := setupPushTestDB(t)
	user := createTestUser(t, us, "push@example.com")

	ps.Subscribe(user.ID, "https://push.example/gone", "k", "a")
	if err := ps.DeleteByEndpoint("https://push.example/gone"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}

	subs, _ := ps.ListByUser(user.ID)
	if len(subs) != 0 {
		t.Errorf("expected no subscriptions, got %d", len(subs))
	}
}
