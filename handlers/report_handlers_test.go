package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"dinehub/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seedCompletedOrder(t *testing.T, db *gorm.DB, restaurantID uint, amount float64, createdAt time.Time) {
	order := models.Order{
		OrderNumber:   "ORD-h",
		RestaurantID:  restaurantID,
		TotalAmount:   amount,
		Status:        models.OrderCompleted,
		PaymentStatus: models.PaymentStatusPaid,
	}
	order.CreatedAt = createdAt
	assert.NoError(t, db.Create(&order).Error)
}

func TestSalesReportEndpoint(t *testing.T) {
	_, r, db := setupAPITest(t)
	owner := createTestUser(t, db, "owner1", models.RoleOwner)
	restaurant := createTestRestaurant(t, db, owner, false)

	seedCompletedOrder(t, db, restaurant.ID, 100, time.Now())
	seedCompletedOrder(t, db, restaurant.ID, 50, time.Now())

	w := doJSON(r, "GET", "/restaurants/"+itoa(restaurant.ID)+"/reports/sales?format=raw", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var report struct {
		TotalSales float64 `json:"totalSales"`
		OrderCount int     `json:"orderCount"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 150.0, report.TotalSales)
	assert.Equal(t, 2, report.OrderCount)
}

func TestSalesReportEntitlementGating(t *testing.T) {
	_, r, db := setupAPITest(t)
	owner := createTestUser(t, db, "owner1", models.RoleOwner)
	basic := createTestRestaurant(t, db, owner, false)

	base := "/restaurants/" + itoa(basic.ID) + "/reports/sales"
	for _, q := range []string{"?compareWithPrevious=true", "?format=excel", "?format=pdf"} {
		w := doJSON(r, "GET", base+q, tokenFor(t, owner), nil)
		assert.Equal(t, http.StatusForbidden, w.Code, "query %s should be plan-gated", q)
	}

	// The plain report stays available on a basic plan.
	w := doJSON(r, "GET", base, tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSalesReportAdvancedPlan(t *testing.T) {
	_, r, db := setupAPITest(t)
	owner := createTestUser(t, db, "owner2", models.RoleOwner)
	advanced := createTestRestaurant(t, db, owner, true)
	seedCompletedOrder(t, db, advanced.ID, 75, time.Now())

	base := "/restaurants/" + itoa(advanced.ID) + "/reports/sales"

	w := doJSON(r, "GET", base+"?format=raw&compareWithPrevious=true", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "comparison")
	assert.Contains(t, w.Body.String(), "revenuePrediction")

	w = doJSON(r, "GET", base+"?format=excel", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, excelContentType, w.Header().Get("Content-Type"))

	// PDF is accepted by parsing but has no renderer.
	w = doJSON(r, "GET", base+"?format=pdf", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSalesReportAccessControl(t *testing.T) {
	_, r, db := setupAPITest(t)
	owner := createTestUser(t, db, "owner1", models.RoleOwner)
	stranger := createTestUser(t, db, "owner2", models.RoleOwner)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	restaurant := createTestRestaurant(t, db, owner, false)

	path := "/restaurants/" + itoa(restaurant.ID) + "/reports/sales"

	w := doJSON(r, "GET", path, tokenFor(t, stranger), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, "GET", path, tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "GET", "/restaurants/9999/reports/sales", tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSalesReportQueryValidation(t *testing.T) {
	_, r, db := setupAPITest(t)
	owner := createTestUser(t, db, "owner1", models.RoleOwner)
	restaurant := createTestRestaurant(t, db, owner, false)
	base := "/restaurants/" + itoa(restaurant.ID) + "/reports/sales"

	w := doJSON(r, "GET", base+"?period=fortnightly", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "GET", base+"?format=xml", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "GET", base+"?startDate=garbage", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Bare dates are accepted alongside RFC 3339.
	w = doJSON(r, "GET", base+"?startDate=2024-01-01&endDate=2024-01-31", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCustomerReportEndpoint(t *testing.T) {
	_, r, db := setupAPITest(t)
	owner := createTestUser(t, db, "owner1", models.RoleOwner)
	restaurant := createTestRestaurant(t, db, owner, false)
	customer := createTestUser(t, db, "diner", models.RoleOwner)

	order := models.Order{
		OrderNumber:   "ORD-1",
		RestaurantID:  restaurant.ID,
		CustomerID:    &customer.ID,
		TotalAmount:   42,
		Status:        models.OrderCompleted,
		PaymentStatus: models.PaymentStatusPaid,
	}
	assert.NoError(t, db.Create(&order).Error)

	w := doJSON(r, "GET", "/restaurants/"+itoa(restaurant.ID)+"/reports/customers?format=raw", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "diner")

	w = doJSON(r, "GET", "/restaurants/"+itoa(restaurant.ID)+"/reports/customers?format=csv", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestSettlementReportEndpoint(t *testing.T) {
	_, r, db := setupAPITest(t)
	owner := createTestUser(t, db, "owner1", models.RoleOwner)
	restaurant := createTestRestaurant(t, db, owner, false)

	seedCompletedOrder(t, db, restaurant.ID, 100, time.Now())

	w := doJSON(r, "GET", "/restaurants/"+itoa(restaurant.ID)+"/reports/settlement?format=raw", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var settlement struct {
		TotalOrderAmount float64 `json:"totalOrderAmount"`
		PlatformFee      float64 `json:"platformFee"`
		RestaurantPayout float64 `json:"restaurantPayout"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &settlement))
	assert.Equal(t, 100.0, settlement.TotalOrderAmount)
	assert.InDelta(t, 15.0, settlement.PlatformFee, 1e-9)
	assert.InDelta(t, 85.0, settlement.RestaurantPayout, 1e-9)

	w = doJSON(r, "GET", "/restaurants/"+itoa(restaurant.ID)+"/reports/settlement?format=csv", tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}
