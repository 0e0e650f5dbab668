package database

import (
	"testing"

	"dinehub/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrateAndReset(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	assert.NoError(t, Migrate(db))

	user := models.User{Username: "owner", Email: "owner@test.example", PasswordHash: "hash", Role: models.RoleOwner}
	assert.NoError(t, db.Create(&user).Error)

	var n int64
	assert.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	// Reset drops everything and leaves a fresh schema behind.
	assert.NoError(t, Reset(db))
	assert.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)

	assert.NoError(t, db.Create(&models.SubscriptionPlan{Name: "Starter", Price: 9.99}).Error)
}
