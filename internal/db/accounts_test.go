package db

import (
	"context"
	"strings"
	"testing"

	"github.com/emailgenx/emailgenx/internal/db/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestAccountStore_UpsertThenGet(t *testing.T) {
	store := NewAccountStore(newTestDB(t))
	ctx := context.Background()

	if err := store.Upsert(ctx, 42, "user_ab12cd34@example.com", "tok-1", nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	email, err := store.GetEmail(ctx, 42)
	if err != nil || email != "user_ab12cd34@example.com" {
		t.Fatalf("GetEmail = %q, %v", email, err)
	}
	token, err := store.GetToken(ctx, 42)
	if err != nil || token != "tok-1" {
		t.Fatalf("GetToken = %q, %v", token, err)
	}

	account, err := store.Get(ctx, 42)
	if err != nil || account == nil {
		t.Fatalf("Get = %v, %v", account, err)
	}
	if account.Inbox == nil || len(account.Inbox) != 0 {
		t.Fatalf("expected empty inbox snapshot, got %#v", account.Inbox)
	}
}

func TestAccountStore_UpsertReplaces(t *testing.T) {
	store := NewAccountStore(newTestDB(t))
	ctx := context.Background()

	if err := store.Upsert(ctx, 7, "first@example.com", "tok-1", models.Inbox{{From: "a@b.com", Subject: "old"}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.Upsert(ctx, 7, "second@example.com", "tok-2", nil); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Count = %d, %v; want 1", n, err)
	}
	account, _ := store.Get(ctx, 7)
	if account.Email != "second@example.com" || account.Token != "tok-2" {
		t.Fatalf("expected second values, got %+v", account)
	}
	if len(account.Inbox) != 0 {
		t.Fatalf("expected inbox reset on re-provision, got %+v", account.Inbox)
	}
}

func TestAccountStore_MissingKey(t *testing.T) {
	store := NewAccountStore(newTestDB(t))
	ctx := context.Background()

	if email, err := store.GetEmail(ctx, 99); err != nil || email != "" {
		t.Fatalf("GetEmail missing = %q, %v", email, err)
	}
	if token, err := store.GetToken(ctx, 99); err != nil || token != "" {
		t.Fatalf("GetToken missing = %q, %v", token, err)
	}
	if account, err := store.Get(ctx, 99); err != nil || account != nil {
		t.Fatalf("Get missing = %v, %v", account, err)
	}
}

func TestAccountStore_DeleteNeverProvisioned(t *testing.T) {
	store := NewAccountStore(newTestDB(t))
	ctx := context.Background()

	if err := store.Delete(ctx, 1234); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Fatalf("expected no records, got %d", n)
	}
}

func TestAccountStore_DeleteRemovesRecord(t *testing.T) {
	store := NewAccountStore(newTestDB(t))
	ctx := context.Background()

	if err := store.Upsert(ctx, 5, "x@example.com", "tok", nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Delete(ctx, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if email, _ := store.GetEmail(ctx, 5); email != "" {
		t.Fatalf("expected email gone, got %q", email)
	}
	if token, _ := store.GetToken(ctx, 5); token != "" {
		t.Fatalf("expected token gone, got %q", token)
	}
}

func TestAccountStore_UpdateInboxCacheDoesNotCreate(t *testing.T) {
	store := NewAccountStore(newTestDB(t))
	ctx := context.Background()

	if err := store.UpdateInboxCache(ctx, 8, models.Inbox{{From: "a@b.com", Subject: "Hi"}}); err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Fatalf("UpdateInboxCache created a record")
	}

	if err := store.Upsert(ctx, 8, "x@example.com", "tok", nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.UpdateInboxCache(ctx, 8, models.Inbox{{From: "a@b.com", Subject: "Hi"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	account, _ := store.Get(ctx, 8)
	if len(account.Inbox) != 1 || account.Inbox[0].From != "a@b.com" || account.Inbox[0].Subject != "Hi" {
		t.Fatalf("unexpected snapshot %+v", account.Inbox)
	}
	if account.Email != "x@example.com" || account.Token != "tok" {
		t.Fatalf("snapshot update touched credentials: %+v", account)
	}
}
