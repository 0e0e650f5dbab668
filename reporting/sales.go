package reporting

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"dinehub/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SalesOptions struct {
	Period              Period
	StartDate           time.Time
	EndDate             time.Time
	CompareWithPrevious bool
}

type PeriodSales struct {
	Period     string  `json:"period"`
	Sales      float64 `json:"sales"`
	OrderCount int     `json:"orderCount"`
}

type PreviousPeriod struct {
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	TotalSales float64   `json:"totalSales"`
	OrderCount int       `json:"orderCount"`
}

type Comparison struct {
	PreviousPeriod   PreviousPeriod `json:"previousPeriod"`
	Difference       float64        `json:"difference"`
	PercentageChange float64        `json:"percentageChange"`
	Increased        bool           `json:"increased"`
}

type TopSellingItem struct {
	ItemID  uint    `json:"itemId"`
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type HourSales struct {
	Hour  int     `json:"hour"`
	Sales float64 `json:"sales"`
}

type RevenuePrediction struct {
	Predicted  float64 `json:"predicted"`
	Confidence string  `json:"confidence"`
	RSquared   float64 `json:"rSquared"`
}

type AdvancedAnalytics struct {
	TopSellingItems   []TopSellingItem  `json:"topSellingItems"`
	SalesByHour       []HourSales       `json:"salesByHour"`
	RevenuePrediction RevenuePrediction `json:"revenuePrediction"`
}

type SalesReport struct {
	RestaurantID      uint               `json:"restaurantId"`
	RestaurantName    string             `json:"restaurantName"`
	Period            Period             `json:"period"`
	StartDate         time.Time          `json:"startDate"`
	EndDate           time.Time          `json:"endDate"`
	TotalSales        float64            `json:"totalSales"`
	OrderCount        int                `json:"orderCount"`
	AverageOrderValue float64            `json:"averageOrderValue"`
	SalesByPeriod     []PeriodSales      `json:"salesByPeriod"`
	Comparison        *Comparison        `json:"comparison,omitempty"`
	Advanced          *AdvancedAnalytics `json:"advanced,omitempty"`
}

// ErrRestaurantNotFound is returned when the report target does not exist.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// SalesEngine aggregates completed orders into period-bucketed sales reports.
type SalesEngine struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSalesEngine(db *gorm.DB, logger *zap.Logger) *SalesEngine {
	return &SalesEngine{db: db, logger: logger}
}

// GetSalesReport builds the report for one restaurant. The advanced block
// (top sellers, hourly histogram, forecast) is included only when the
// restaurant's plan allows advanced reports.
func (e *SalesEngine) GetSalesReport(ctx context.Context, restaurantID uint, opts SalesOptions) (*SalesReport, error) {
	var restaurant models.Restaurant
	err := e.db.WithContext(ctx).Preload("SubscriptionPlan").First(&restaurant, restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	hasAdvanced := restaurant.SubscriptionPlan != nil && restaurant.SubscriptionPlan.AllowAdvancedReports

	period := opts.Period
	if period == "" {
		period = PeriodDaily
	}
	startDate, endDate := opts.StartDate, opts.EndDate
	if startDate.IsZero() || endDate.IsZero() {
		startDate, endDate = Range(period, time.Now())
	}

	orders, err := e.completedOrders(ctx, restaurantID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	buckets := bucketOrders(orders, period)
	totalSales := sumOrders(orders)
	average := 0.0
	if len(orders) > 0 {
		average = totalSales / float64(len(orders))
	}

	report := &SalesReport{
		RestaurantID:      restaurantID,
		RestaurantName:    restaurant.Name,
		Period:            period,
		StartDate:         startDate,
		EndDate:           endDate,
		TotalSales:        totalSales,
		OrderCount:        len(orders),
		AverageOrderValue: average,
		SalesByPeriod:     buckets,
	}

	if opts.CompareWithPrevious {
		prevStart, prevEnd := PreviousRange(period, startDate)
		previous, err := e.completedOrders(ctx, restaurantID, prevStart, prevEnd)
		if err != nil {
			return nil, err
		}
		report.Comparison = comparePeriods(totalSales, sumOrders(previous), prevStart, prevEnd, len(previous))
	}

	if hasAdvanced {
		top, err := e.topSellingItems(ctx, orders)
		if err != nil {
			return nil, err
		}
		report.Advanced = &AdvancedAnalytics{
			TopSellingItems:   top,
			SalesByHour:       salesByHour(orders),
			RevenuePrediction: predictRevenue(buckets),
		}
	}

	return report, nil
}

func (e *SalesEngine) completedOrders(ctx context.Context, restaurantID uint, start, end time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := e.db.WithContext(ctx).
		Where("restaurant_id = ? AND created_at >= ? AND created_at <= ? AND status = ?",
			restaurantID, start, end, models.OrderCompleted).
		Find(&orders).Error
	return orders, err
}

// bucketOrders groups orders by period key, returning buckets sorted by key
// so the series is chronological.
func bucketOrders(orders []models.Order, period Period) []PeriodSales {
	grouped := make(map[string]*PeriodSales)
	for _, order := range orders {
		key := BucketKey(period, order.CreatedAt)
		bucket, ok := grouped[key]
		if !ok {
			bucket = &PeriodSales{Period: key}
			grouped[key] = bucket
		}
		bucket.Sales += order.TotalAmount
		bucket.OrderCount++
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	buckets := make([]PeriodSales, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, *grouped[key])
	}
	return buckets
}

func sumOrders(orders []models.Order) float64 {
	total := 0.0
	for _, order := range orders {
		total += order.TotalAmount
	}
	return total
}

func comparePeriods(current, previous float64, prevStart, prevEnd time.Time, prevCount int) *Comparison {
	difference := current - previous
	percentage := 0.0
	switch {
	case previous != 0:
		percentage = difference / previous * 100
	case current > 0:
		percentage = 100
	}
	return &Comparison{
		PreviousPeriod: PreviousPeriod{
			StartDate:  prevStart,
			EndDate:    prevEnd,
			TotalSales: previous,
			OrderCount: prevCount,
		},
		Difference:       difference,
		PercentageChange: percentage,
		Increased:        difference > 0,
	}
}

// topSellingItems ranks menu items by summed quantity across the orders'
// embedded line items, joining against the menu for names and revenue.
func (e *SalesEngine) topSellingItems(ctx context.Context, orders []models.Order) ([]TopSellingItem, error) {
	counts := make(map[uint]int)
	for _, order := range orders {
		for _, item := range order.Items {
			if item.MenuItemID == 0 {
				continue
			}
			qty := item.Quantity
			if qty == 0 {
				qty = 1
			}
			counts[item.MenuItemID] += qty
		}
	}

	ranked := make([]TopSellingItem, 0, len(counts))
	for id, count := range counts {
		ranked = append(ranked, TopSellingItem{ItemID: id, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	if len(ranked) == 0 {
		return ranked, nil
	}

	ids := make([]uint, 0, len(ranked))
	for _, item := range ranked {
		ids = append(ids, item.ItemID)
	}
	var menuItems []models.MenuItem
	if err := e.db.WithContext(ctx).Where("id IN ?", ids).Find(&menuItems).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.MenuItem, len(menuItems))
	for _, mi := range menuItems {
		byID[mi.ID] = mi
	}

	for i := range ranked {
		mi, ok := byID[ranked[i].ItemID]
		if !ok {
			ranked[i].Name = "Unknown Item"
			continue
		}
		ranked[i].Name = mi.Name
		ranked[i].Revenue = mi.Price * float64(ranked[i].Count)
	}
	return ranked, nil
}

// salesByHour builds the 24-bucket revenue histogram by order-creation hour.
func salesByHour(orders []models.Order) []HourSales {
	hours := make([]HourSales, 24)
	for i := range hours {
		hours[i].Hour = i
	}
	for _, order := range orders {
		hours[order.CreatedAt.Hour()].Sales += order.TotalAmount
	}
	return hours
}

// predictRevenue fits a least-squares line over the bucketed sales series and
// extrapolates one period ahead. Confidence comes from the fit's R-squared.
func predictRevenue(buckets []PeriodSales) RevenuePrediction {
	n := len(buckets)
	if n < 2 {
		return RevenuePrediction{Predicted: 0, Confidence: "low"}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, bucket := range buckets {
		x := float64(i)
		sumX += x
		sumY += bucket.Sales
		sumXY += x * bucket.Sales
		sumXX += x * x
	}
	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	predicted := slope*fn + intercept

	meanY := sumY / fn
	var totalVariation, residualVariation float64
	for i, bucket := range buckets {
		fitted := slope*float64(i) + intercept
		totalVariation += (bucket.Sales - meanY) * (bucket.Sales - meanY)
		residualVariation += (bucket.Sales - fitted) * (bucket.Sales - fitted)
	}
	rSquared := 0.0
	if totalVariation > 0 {
		rSquared = 1 - residualVariation/totalVariation
	}

	confidence := "low"
	if rSquared > 0.7 {
		confidence = "high"
	} else if rSquared > 0.4 {
		confidence = "medium"
	}

	return RevenuePrediction{
		Predicted:  math.Max(0, predicted),
		Confidence: confidence,
		RSquared:   rSquared,
	}
}
