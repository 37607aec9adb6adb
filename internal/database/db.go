package database

import (
	"fmt"
	"time"

	"retail-backoffice/internal/logger"
	"retail-backoffice/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the MySQL store and syncs the schema. The handle is returned
// to the caller and passed into each service; nothing holds it globally.
func Connect(dsn string, log *logger.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN is empty")
	}

	var db *gorm.DB
	var err error

	// The database container may still be starting; wait for it.
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database after 5 attempts: %w", err)
	}
	log.Info("connected to MySQL")

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("sync schema: %w", err)
	}
	log.Info("database schema synced")

	return db, nil
}

// Migrate syncs every table. Also used by the sqlite-backed tests.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.Sale{},
		&models.SaleItem{},
	)
}
