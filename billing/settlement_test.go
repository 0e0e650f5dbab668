package billing

import (
	"testing"
	"time"

	"dinehub/models"

	"github.com/stretchr/testify/assert"
)

func TestSettlementCalculate(t *testing.T) {
	db := newTestDB(t)
	calc := NewSettlementCalculator(db)

	restaurantID := uint(1)
	mkOrder := func(amount float64, status, paymentStatus string) {
		order := models.Order{
			OrderNumber:   "ORD-1",
			RestaurantID:  restaurantID,
			TotalAmount:   amount,
			Status:        status,
			PaymentStatus: paymentStatus,
		}
		assert.NoError(t, db.Create(&order).Error)
	}

	mkOrder(100.00, models.OrderCompleted, models.PaymentStatusPaid)
	mkOrder(50.55, models.OrderCompleted, models.PaymentStatusPaid)
	mkOrder(75.00, models.OrderCompleted, models.PaymentStatusPending)
	mkOrder(30.00, "cancelled", models.PaymentStatusPaid)

	s, err := calc.Calculate(testCtx, restaurantID, SettlementOptions{
		StartDate:             time.Now().Add(-time.Hour),
		EndDate:               time.Now().Add(time.Hour),
		PlatformFeePercentage: 0.15,
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, s.OrderCount)
	assert.InDelta(t, 150.55, s.TotalOrderAmount, 1e-9)
	assert.InDelta(t, 22.58, s.PlatformFee, 1e-9)
	assert.InDelta(t, 127.97, s.RestaurantPayout, 1e-9)
	assert.Len(t, s.Orders, 2)
}

func TestSettlementFeeAndPayoutSumToGross(t *testing.T) {
	db := newTestDB(t)
	calc := NewSettlementCalculator(db)

	restaurantID := uint(2)
	amounts := []float64{19.99, 33.33, 100.01, 7.50}
	for _, amount := range amounts {
		order := models.Order{
			OrderNumber:   "ORD-x",
			RestaurantID:  restaurantID,
			TotalAmount:   amount,
			Status:        models.OrderCompleted,
			PaymentStatus: models.PaymentStatusPaid,
		}
		assert.NoError(t, db.Create(&order).Error)
	}

	for _, fee := range []float64{0, 0.1, 0.15, 0.2, 0.3333, 1} {
		s, err := calc.Calculate(testCtx, restaurantID, SettlementOptions{
			StartDate:             time.Now().Add(-time.Hour),
			EndDate:               time.Now().Add(time.Hour),
			PlatformFeePercentage: fee,
		})
		assert.NoError(t, err)
		assert.InDelta(t, s.TotalOrderAmount, s.PlatformFee+s.RestaurantPayout, 1e-9,
			"fee %v: payout and fee must sum to gross", fee)
	}
}

func TestSettlementNoOrders(t *testing.T) {
	db := newTestDB(t)
	calc := NewSettlementCalculator(db)

	s, err := calc.Calculate(testCtx, 42, SettlementOptions{PlatformFeePercentage: 0.15})
	assert.NoError(t, err)
	assert.Equal(t, 0, s.OrderCount)
	assert.Zero(t, s.TotalOrderAmount)
	assert.Zero(t, s.PlatformFee)
	assert.Zero(t, s.RestaurantPayout)
	assert.Empty(t, s.Orders)

	// Defaults fill a trailing 30 day window.
	assert.False(t, s.Period.StartDate.IsZero())
	assert.False(t, s.Period.EndDate.IsZero())
}

func TestSettlementWindowFiltering(t *testing.T) {
	db := newTestDB(t)
	calc := NewSettlementCalculator(db)

	restaurantID := uint(3)
	old := models.Order{
		OrderNumber:   "ORD-old",
		RestaurantID:  restaurantID,
		TotalAmount:   500,
		Status:        models.OrderCompleted,
		PaymentStatus: models.PaymentStatusPaid,
	}
	old.CreatedAt = time.Now().AddDate(0, -2, 0)
	assert.NoError(t, db.Create(&old).Error)

	recent := models.Order{
		OrderNumber:   "ORD-new",
		RestaurantID:  restaurantID,
		TotalAmount:   80,
		Status:        models.OrderCompleted,
		PaymentStatus: models.PaymentStatusPaid,
	}
	assert.NoError(t, db.Create(&recent).Error)

	s, err := calc.Calculate(testCtx, restaurantID, SettlementOptions{PlatformFeePercentage: 0.15})
	assert.NoError(t, err)
	assert.Equal(t, 1, s.OrderCount)
	assert.InDelta(t, 80, s.TotalOrderAmount, 1e-9)
}
