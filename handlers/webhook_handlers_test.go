package handlers

import (
	"context"
	"net/http"
	"testing"

	"dinehub/billing"
	"dinehub/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func seedTransaction(t *testing.T, api *API, transactionID, status string, orderID, subscriptionID *uint) {
	txn := api.ledger.Record(context.Background(), billing.Entry{
		Amount:         19.99,
		Currency:       "USD",
		Status:         status,
		Gateway:        billing.GatewayPayPal,
		TransactionID:  transactionID,
		Description:    "test charge",
		OrderID:        orderID,
		SubscriptionID: subscriptionID,
	})
	assert.NotNil(t, txn)
}

func TestWebhookUnknownEventIsAcknowledged(t *testing.T) {
	_, r, _ := setupAPITest(t)

	w := doJSON(r, "POST", "/webhooks/paypal", "", gin.H{
		"event_type": "CHECKOUT.ORDER.APPROVED",
		"resource":   gin.H{"id": "PP-1-1"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "true")
}

func TestWebhookUnknownTransactionIsNoOp(t *testing.T) {
	_, r, db := setupAPITest(t)

	w := doJSON(r, "POST", "/webhooks/mastercard", "", gin.H{
		"type": "payment.completed",
		"id":   "MC-does-not-exist",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var n int64
	assert.NoError(t, db.Model(&models.Transaction{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPayPalRefundWebhookPropagatesToOrder(t *testing.T) {
	api, r, db := setupAPITest(t)

	order := models.Order{
		OrderNumber:   "ORD-1",
		RestaurantID:  1,
		TotalAmount:   19.99,
		Status:        models.OrderCompleted,
		PaymentStatus: models.PaymentStatusPaid,
	}
	assert.NoError(t, db.Create(&order).Error)
	seedTransaction(t, api, "PP-1-1", models.TransactionCompleted, &order.ID, nil)

	payload := gin.H{
		"event_type": "PAYMENT.CAPTURE.REFUNDED",
		"resource":   gin.H{"id": "PP-1-1"},
	}
	w := doJSON(r, "POST", "/webhooks/paypal", "", payload)
	assert.Equal(t, http.StatusOK, w.Code)

	var txn models.Transaction
	assert.NoError(t, db.Where("transaction_id = ?", "PP-1-1").First(&txn).Error)
	assert.Equal(t, models.TransactionRefunded, txn.Status)

	var refunded models.Order
	assert.NoError(t, db.First(&refunded, order.ID).Error)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.PaymentStatus)

	// Redelivery is a no-op.
	w = doJSON(r, "POST", "/webhooks/paypal", "", payload)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, db.First(&refunded, order.ID).Error)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.PaymentStatus)
}

func TestVisaWebhookPaysSubscriptionFromMetadata(t *testing.T) {
	api, r, db := setupAPITest(t)
	owner := createTestUser(t, db, "owner1", models.RoleOwner)
	restaurant := createTestRestaurant(t, db, owner, false)

	plan := models.SubscriptionPlan{Name: "Pro", Price: 19.99, Currency: "USD"}
	assert.NoError(t, db.Create(&plan).Error)

	sub := models.Subscription{
		RestaurantID:  restaurant.ID,
		PlanID:        plan.ID,
		Amount:        19.99,
		Currency:      "USD",
		IsActive:      true,
		AutoRenew:     true,
		PaymentMethod: "visa",
		PaymentStatus: models.PaymentStatusFailed,
	}
	assert.NoError(t, db.Create(&sub).Error)
	seedTransaction(t, api, "VISA-1-1", models.TransactionFailed, nil, nil)

	w := doJSON(r, "POST", "/webhooks/visa", "", gin.H{
		"type": "payment_intent.succeeded",
		"data": gin.H{
			"object": gin.H{
				"id":       "VISA-1-1",
				"metadata": gin.H{"subscriptionId": sub.ID},
			},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var paid models.Subscription
	assert.NoError(t, db.First(&paid, sub.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Len(t, paid.PaymentHistory, 1)
	assert.Equal(t, "VISA-1-1", paid.PaymentHistory[0].TransactionID)

	var invoice models.Invoice
	assert.NoError(t, db.Where("subscription_id = ?", sub.ID).First(&invoice).Error)
	assert.Equal(t, 19.99, invoice.Amount)
}

func TestMastercardWebhookFailureDoesNotInvoice(t *testing.T) {
	api, r, db := setupAPITest(t)

	order := models.Order{
		OrderNumber:   "ORD-2",
		RestaurantID:  1,
		TotalAmount:   30,
		Status:        models.OrderCompleted,
		PaymentStatus: models.PaymentStatusPending,
	}
	assert.NoError(t, db.Create(&order).Error)
	seedTransaction(t, api, "MC-2-2", models.TransactionCompleted, &order.ID, nil)

	w := doJSON(r, "POST", "/webhooks/mastercard", "", gin.H{
		"type": "payment.failed",
		"id":   "MC-2-2",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var failed models.Order
	assert.NoError(t, db.First(&failed, order.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, failed.PaymentStatus)

	var n int64
	assert.NoError(t, db.Model(&models.Invoice{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPayPalWebhookCustomIDMetadata(t *testing.T) {
	api, r, db := setupAPITest(t)

	order := models.Order{
		OrderNumber:   "ORD-3",
		RestaurantID:  1,
		TotalAmount:   25,
		Status:        models.OrderCompleted,
		PaymentStatus: models.PaymentStatusPending,
		Items: models.OrderItems{
			{MenuItemID: 1, Name: "Burger", Quantity: 2, Price: 12.5},
		},
	}
	assert.NoError(t, db.Create(&order).Error)
	// The ledger row carries no order reference; only custom_id links them.
	seedTransaction(t, api, "PP-3-3", models.TransactionFailed, nil, nil)

	w := doJSON(r, "POST", "/webhooks/paypal", "", gin.H{
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": gin.H{
			"id":        "PP-3-3",
			"custom_id": `{"orderId": ` + itoa(order.ID) + `}`,
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var paid models.Order
	assert.NoError(t, db.First(&paid, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)

	var invoice models.Invoice
	assert.NoError(t, db.Where("order_id = ?", order.ID).First(&invoice).Error)
	assert.Len(t, invoice.Items, 1)
	assert.Equal(t, "Burger", invoice.Items[0].Description)
}

func TestWebhookMissingTransactionID(t *testing.T) {
	_, r, _ := setupAPITest(t)

	w := doJSON(r, "POST", "/webhooks/visa", "", gin.H{
		"type": "payment_intent.succeeded",
		"data": gin.H{"object": gin.H{"metadata": gin.H{}}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
