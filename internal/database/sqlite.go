package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

var DB *gorm.DB

// Open connects to the sqlite file at dbPath and brings the schema up to date.
// Use ":memory:" (or "file::memory:?cache=shared") for throwaway databases.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Initialize opens the process-wide database.
func Initialize(dbPath string) error {
	db, err := Open(dbPath)
	if err != nil {
		return err
	}
	DB = db
	log.WithField("path", dbPath).Info("Database connected successfully")
	return nil
}

// Migrate creates or updates the tables of every persisted record.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllRecords()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Debug("Database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
