package billing

import (
	"context"
	"testing"

	"dinehub/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.SubscriptionPlan{},
		&models.Restaurant{},
		&models.Subscription{},
		&models.Transaction{},
		&models.Invoice{},
		&models.Order{},
		&models.MenuItem{},
	)
	assert.NoError(t, err)
	return db
}

func testGatewayConfig() GatewayConfig {
	return GatewayConfig{
		PayPalAPIKey:     "pk",
		PayPalAPISecret:  "ps",
		VisaAPIKey:       "vk",
		MastercardAPIKey: "mk",
	}
}

func newTestProcessor(db *gorm.DB) *Processor {
	logger := zap.NewNop()
	return NewProcessor(testGatewayConfig(), NewLedger(db, logger), logger)
}

func countTransactions(t *testing.T, db *gorm.DB, status string) int64 {
	var n int64
	err := db.Model(&models.Transaction{}).Where("status = ?", status).Count(&n).Error
	assert.NoError(t, err)
	return n
}

var testCtx = context.Background()
