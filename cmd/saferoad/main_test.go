package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/saferoadsa/saferoad/internal/database"
	"github.com/saferoadsa/saferoad/internal/model"
	"github.com/saferoadsa/saferoad/internal/store"
)

func TestPromoteAdmin(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "saferoad.db")

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	users := store.NewUserStore(db)
	u, err := users.Create("staff@example.com", "hash", "Staff Member", "", "Pretoria")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	db.Close()

	if err := promoteAdmin(dbPath, "staff@example.com"); err != nil {
		t.Fatalf("promoteAdmin: %v", err)
	}

	db, err = database.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer db.Close()

	got, err := store.NewUserStore(db).GetByID(u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", got.Role, model.RoleAdmin)
	}
}

func TestPromoteAdminUnknownEmail(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "saferoad.db")

	err := promoteAdmin(dbPath, "nobody@example.com")
	if err == nil {
		t.Fatal("expected error for unknown email")
	}
	if !strings.Contains(err.Error(), "no user with email") {
		t.Errorf("error = %v", err)
	}
}
