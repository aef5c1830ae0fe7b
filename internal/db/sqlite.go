package db

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/emailgenx/emailgenx/internal/db/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const apiKeyConfigKey = "api_key"

// InitDB opens the SQLite database and runs migrations.
// File-backed databases run in WAL mode so the bot and API tasks can share them.
func InitDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(buildDSN(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if _, err := EnsureAPIKey(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tables used by the service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Account{}, &models.Config{}, &models.CommandLog{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func buildDSN(dbPath string) string {
	if strings.Contains(dbPath, "?") || strings.Contains(dbPath, ":memory:") {
		return dbPath
	}
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// EnsureAPIKey returns the stored API key, generating one on first run.
func EnsureAPIKey(db *gorm.DB) (string, error) {
	var config models.Config
	err := db.Where("key = ?", apiKeyConfigKey).First(&config).Error
	if err == nil {
		return config.Value, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("load api key: %w", err)
	}

	apiKey := newAPIKey()
	if err := db.Create(&models.Config{Key: apiKeyConfigKey, Value: apiKey}).Error; err != nil {
		return "", fmt.Errorf("store api key: %w", err)
	}
	log.Printf("🔑 Generated new API key: %s", apiKey)
	return apiKey, nil
}

// GetAPIKey retrieves the API key, or "" when none is stored.
func GetAPIKey(db *gorm.DB) string {
	var config models.Config
	if err := db.Where("key = ?", apiKeyConfigKey).First(&config).Error; err != nil {
		return ""
	}
	return config.Value
}

// RegenerateAPIKey replaces the stored API key.
func RegenerateAPIKey(db *gorm.DB) (string, error) {
	apiKey := newAPIKey()
	err := db.Model(&models.Config{}).Where("key = ?", apiKeyConfigKey).Update("value", apiKey).Error
	if err != nil {
		return "", fmt.Errorf("regenerate api key: %w", err)
	}
	log.Printf("🔑 Regenerated API key: %s", apiKey)
	return apiKey, nil
}

func newAPIKey() string {
	keyBytes := make([]byte, 16)
	rand.Read(keyBytes)
	return "egx-" + hex.EncodeToString(keyBytes)
}
