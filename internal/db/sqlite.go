package db

import (
	"errors"
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/pysugar/codex-accounts/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNoConfig is returned by GetConfig for a key that was never written.
var ErrNoConfig = errors.New("config key not set")

// InitDB initializes the SQLite database connection and runs migrations.
func InitDB(dbPath string, verbose bool) (*gorm.DB, error) {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}

	if err := db.AutoMigrate(&models.Config{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", dbPath, err)
	}
	return db, nil
}

// GetConfig returns the stored value and revision for key.
func GetConfig(db *gorm.DB, key string) (string, int64, error) {
	var cfg models.Config
	err := db.Where("key = ?", key).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", 0, ErrNoConfig
	}
	if err != nil {
		return "", 0, err
	}
	return cfg.Value, cfg.Revision, nil
}

// SetConfig inserts or replaces key and bumps its revision.
func SetConfig(db *gorm.DB, key, value string) error {
	cfg := models.Config{Key: key, Value: value, Revision: 1}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"revision":   gorm.Expr("revision + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&cfg).Error
	if err != nil {
		log.Printf("⚠️ [Store] Failed to write %s: %v", key, err)
		return err
	}
	return nil
}
