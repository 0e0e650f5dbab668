package billing

import (
	"context"
	"time"

	"dinehub/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultPlatformFeePercentage is the platform's cut of restaurant order
// revenue when no override is configured.
const DefaultPlatformFeePercentage = 0.15

type SettlementOptions struct {
	StartDate             time.Time
	EndDate               time.Time
	PlatformFeePercentage float64
}

// DefaultSettlementOptions covers the trailing 30 days at the default fee.
func DefaultSettlementOptions() SettlementOptions {
	now := time.Now()
	return SettlementOptions{
		StartDate:             now.Add(-30 * 24 * time.Hour),
		EndDate:               now,
		PlatformFeePercentage: DefaultPlatformFeePercentage,
	}
}

type SettlementOrder struct {
	ID          uint      `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
}

type SettlementPeriod struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Settlement is derived on demand and never persisted. The fee and payout
// always sum back to the gross order amount.
type Settlement struct {
	RestaurantID          uint              `json:"restaurantId"`
	Period                SettlementPeriod  `json:"period"`
	OrderCount            int               `json:"orderCount"`
	TotalOrderAmount      float64           `json:"totalOrderAmount"`
	PlatformFee           float64           `json:"platformFee"`
	PlatformFeePercentage float64           `json:"platformFeePercentage"`
	RestaurantPayout      float64           `json:"restaurantPayout"`
	Orders                []SettlementOrder `json:"orders"`
}

type SettlementCalculator struct {
	db *gorm.DB
}

func NewSettlementCalculator(db *gorm.DB) *SettlementCalculator {
	return &SettlementCalculator{db: db}
}

// Calculate computes the payout owed to a restaurant over the period: gross
// completed-and-paid order revenue minus the platform fee. Zero matching
// orders yield an all-zero settlement.
func (c *SettlementCalculator) Calculate(ctx context.Context, restaurantID uint, opts SettlementOptions) (*Settlement, error) {
	if opts.StartDate.IsZero() || opts.EndDate.IsZero() {
		defaults := DefaultSettlementOptions()
		if opts.StartDate.IsZero() {
			opts.StartDate = defaults.StartDate
		}
		if opts.EndDate.IsZero() {
			opts.EndDate = defaults.EndDate
		}
	}

	var orders []models.Order
	err := c.db.WithContext(ctx).
		Where("restaurant_id = ? AND created_at >= ? AND created_at <= ? AND status = ? AND payment_status = ?",
			restaurantID, opts.StartDate, opts.EndDate, models.OrderCompleted, models.PaymentStatusPaid).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	settled := make([]SettlementOrder, 0, len(orders))
	for _, order := range orders {
		total = total.Add(decimal.NewFromFloat(order.TotalAmount))
		settled = append(settled, SettlementOrder{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			Date:        order.CreatedAt,
			Amount:      order.TotalAmount,
		})
	}

	fee := total.Mul(decimal.NewFromFloat(opts.PlatformFeePercentage)).Round(2)
	payout := total.Sub(fee)

	return &Settlement{
		RestaurantID:          restaurantID,
		Period:                SettlementPeriod{StartDate: opts.StartDate, EndDate: opts.EndDate},
		OrderCount:            len(orders),
		TotalOrderAmount:      total.InexactFloat64(),
		PlatformFee:           fee.InexactFloat64(),
		PlatformFeePercentage: opts.PlatformFeePercentage,
		RestaurantPayout:      payout.InexactFloat64(),
		Orders:                settled,
	}, nil
}
