package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"dinehub/models"

	"gorm.io/gorm"
)

type CustomerOptions struct {
	Period    Period
	StartDate time.Time
	EndDate   time.Time
	// IncludeOrders attaches each customer's order list; plan-gated by the
	// caller the same way as advanced sales analytics.
	IncludeOrders bool
}

type CustomerOrder struct {
	ID          uint      `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
}

type CustomerSummary struct {
	CustomerID        uint            `json:"customerId"`
	Username          string          `json:"username"`
	Email             string          `json:"email"`
	TotalSpent        float64         `json:"totalSpent"`
	OrderCount        int             `json:"orderCount"`
	AverageOrderValue float64         `json:"averageOrderValue"`
	Orders            []CustomerOrder `json:"orders,omitempty"`
}

type CustomerReport struct {
	RestaurantID   uint              `json:"restaurantId"`
	RestaurantName string            `json:"restaurantName"`
	Period         Period            `json:"period"`
	StartDate      time.Time         `json:"startDate"`
	EndDate        time.Time         `json:"endDate"`
	CustomerCount  int               `json:"customerCount"`
	Customers      []CustomerSummary `json:"customers"`
}

// GetCustomerReport aggregates completed orders per customer, ranked by
// total spend.
func (e *SalesEngine) GetCustomerReport(ctx context.Context, restaurantID uint, opts CustomerOptions) (*CustomerReport, error) {
	var restaurant models.Restaurant
	err := e.db.WithContext(ctx).First(&restaurant, restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}

	period := opts.Period
	if period == "" {
		period = PeriodMonthly
	}
	startDate, endDate := opts.StartDate, opts.EndDate
	if startDate.IsZero() || endDate.IsZero() {
		startDate, endDate = Range(period, time.Now())
	}

	var orders []models.Order
	err = e.db.WithContext(ctx).
		Preload("Customer").
		Where("restaurant_id = ? AND created_at >= ? AND created_at <= ? AND status = ?",
			restaurantID, startDate, endDate, models.OrderCompleted).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	byCustomer := make(map[uint]*CustomerSummary)
	for _, order := range orders {
		if order.CustomerID == nil {
			continue
		}
		summary, ok := byCustomer[*order.CustomerID]
		if !ok {
			summary = &CustomerSummary{CustomerID: *order.CustomerID}
			if order.Customer != nil {
				summary.Username = order.Customer.Username
				summary.Email = order.Customer.Email
			}
			byCustomer[*order.CustomerID] = summary
		}
		summary.TotalSpent += order.TotalAmount
		summary.OrderCount++
		if opts.IncludeOrders {
			summary.Orders = append(summary.Orders, CustomerOrder{
				ID:          order.ID,
				OrderNumber: order.OrderNumber,
				Date:        order.CreatedAt,
				Amount:      order.TotalAmount,
			})
		}
	}

	customers := make([]CustomerSummary, 0, len(byCustomer))
	for _, summary := range byCustomer {
		if summary.OrderCount > 0 {
			summary.AverageOrderValue = summary.TotalSpent / float64(summary.OrderCount)
		}
		customers = append(customers, *summary)
	}
	sort.Slice(customers, func(i, j int) bool {
		if customers[i].TotalSpent != customers[j].TotalSpent {
			return customers[i].TotalSpent > customers[j].TotalSpent
		}
		return customers[i].CustomerID < customers[j].CustomerID
	})

	return &CustomerReport{
		RestaurantID:   restaurantID,
		RestaurantName: restaurant.Name,
		Period:         period,
		StartDate:      startDate,
		EndDate:        endDate,
		CustomerCount:  len(customers),
		Customers:      customers,
	}, nil
}
