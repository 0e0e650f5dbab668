package database

import (
	"fmt"

	"dinehub/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func allModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.SubscriptionPlan{},
		&models.Restaurant{},
		&models.Subscription{},
		&models.Transaction{},
		&models.Invoice{},
		&models.Order{},
		&models.MenuItem{},
		&models.APIToken{},
	}
}

// Connect opens the postgres database and runs migrations. The handle is
// returned to the caller; nothing here keeps package state.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return nil
}

// Reset drops all tables and re-runs migrations.
// This is primarily for development/testing purposes.
func Reset(db *gorm.DB) error {
	if err := db.Migrator().DropTable(allModels()...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return Migrate(db)
}
