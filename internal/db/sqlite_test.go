package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/pysugar/codex-accounts/internal/db/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Config{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestGetConfig_Missing(t *testing.T) {
	db := newTestDB(t)

	if _, _, err := GetConfig(db, "app_state"); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("expected ErrNoConfig, got %v", err)
	}
}

func TestSetConfig_UpsertBumpsRevision(t *testing.T) {
	db := newTestDB(t)

	if err := SetConfig(db, "app_state", `{"v":1}`); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := SetConfig(db, "app_state", `{"v":2}`); err != nil {
		t.Fatalf("second set: %v", err)
	}

	value, rev, err := GetConfig(db, "app_state")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != `{"v":2}` || rev != 2 {
		t.Fatalf("got value=%s rev=%d", value, rev)
	}

	var count int64
	db.Model(&models.Config{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}
}

func TestInitDB_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := InitDB(path, false)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if err := SetConfig(db, "k", "v"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	reopened, err := InitDB(path, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, _, err := GetConfig(reopened, "k"); err != nil || v != "v" {
		t.Fatalf("after reopen got %q, %v", v, err)
	}
}
