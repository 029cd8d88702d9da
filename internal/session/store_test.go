package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/isdelr/storefront/internal/database"
)

func TestStoreLifecycle(t *testing.T) {
	store, err := Open(NewMemoryStorage())
	if err != nil {
		t.Fatal(err)
	}
	if store.IsAuthenticated() {
		t.Fatal("fresh store should be anonymous")
	}

	if err := store.SetTokens("access-1", "refresh-1"); err != nil {
		t.Fatal(err)
	}
	if !store.IsAuthenticated() || store.Token() != "access-1" || store.RefreshToken() != "refresh-1" {
		t.Fatalf("unexpected state: %q %q", store.Token(), store.RefreshToken())
	}

	if err := store.SetToken(""); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.GetToken(); ok {
		t.Error("empty SetToken should unset the token")
	}

	store.SetTokens("access-2", "refresh-2")
	store.Clear()
	if store.IsAuthenticated() || store.RefreshToken() != "" {
		t.Error("Clear should drop both tokens")
	}
}

func TestStoreRestoresFromSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := database.New(path)
	if err != nil {
		t.Fatal(err)
	}
	storage, err := NewSQLStorage(db)
	if err != nil {
		t.Fatal(err)
	}
	store, err := Open(storage)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetTokens("persisted-access", "persisted-refresh"); err != nil {
		t.Fatal(err)
	}
	// Overwrite exercises the upsert path.
	if err := store.SetToken("persisted-access-2"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = database.New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	storage, err = NewSQLStorage(db)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := Open(storage)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Token() != "persisted-access-2" || restored.RefreshToken() != "persisted-refresh" {
		t.Fatalf("restored = %q / %q", restored.Token(), restored.RefreshToken())
	}

	restored.Clear()
	if _, ok, _ := storage.Get(AccessTokenKey); ok {
		t.Error("Clear should remove the persisted access token")
	}
	if _, ok, _ := storage.Get(RefreshTokenKey); ok {
		t.Error("Clear should remove the persisted refresh token")
	}
}

type failingStorage struct{ *MemoryStorage }

func (failingStorage) Set(string, string) error { return errors.New("disk full") }

func TestSetTokenFailureKeepsPreviousToken(t *testing.T) {
	mem := NewMemoryStorage()
	mem.Set(AccessTokenKey, "old")
	store, err := Open(failingStorage{mem})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SetToken("new"); err == nil {
		t.Fatal("expected persistence error")
	}
	if store.Token() != "old" {
		t.Errorf("token = %q, want old", store.Token())
	}
}
