package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"dinehub/billing"
	"dinehub/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// paymentEvent is the gateway-neutral form every webhook envelope reduces to.
type paymentEvent struct {
	TransactionID string
	Status        string
	Metadata      models.Metadata
}

var paypalEventStatus = map[string]string{
	"PAYMENT.CAPTURE.COMPLETED": models.TransactionCompleted,
	"PAYMENT.CAPTURE.DENIED":    models.TransactionFailed,
	"PAYMENT.CAPTURE.REFUNDED":  models.TransactionRefunded,
}

var visaEventStatus = map[string]string{
	"payment_intent.succeeded":      models.TransactionCompleted,
	"payment_intent.payment_failed": models.TransactionFailed,
	"charge.refunded":               models.TransactionRefunded,
}

var mastercardEventStatus = map[string]string{
	"payment.completed": models.TransactionCompleted,
	"payment.failed":    models.TransactionFailed,
	"payment.refunded":  models.TransactionRefunded,
}

type paypalEnvelope struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID       string `json:"id"`
		CustomID string `json:"custom_id"`
	} `json:"resource"`
}

type visaEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string          `json:"id"`
			Metadata models.Metadata `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

type mastercardEnvelope struct {
	Type     string          `json:"type"`
	ID       string          `json:"id"`
	Metadata models.Metadata `json:"metadata"`
}

func (a *API) PayPalWebhook(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "PayPalWebhook")
	defer span.End()

	var env paypalEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	status, ok := paypalEventStatus[env.EventType]
	if !ok {
		a.logger.Info("unhandled paypal webhook event", zap.String("eventType", env.EventType))
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	// PayPal carries the billing references as a JSON string in custom_id.
	meta := models.Metadata{}
	if env.Resource.CustomID != "" {
		if err := json.Unmarshal([]byte(env.Resource.CustomID), &meta); err != nil {
			a.logger.Warn("unparseable paypal custom_id", zap.Error(err))
		}
	}

	a.finishWebhook(c, ctx, span, paymentEvent{
		TransactionID: env.Resource.ID,
		Status:        status,
		Metadata:      meta,
	})
}

func (a *API) VisaWebhook(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "VisaWebhook")
	defer span.End()

	var env visaEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	status, ok := visaEventStatus[env.Type]
	if !ok {
		a.logger.Info("unhandled visa webhook event", zap.String("eventType", env.Type))
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	a.finishWebhook(c, ctx, span, paymentEvent{
		TransactionID: env.Data.Object.ID,
		Status:        status,
		Metadata:      env.Data.Object.Metadata,
	})
}

func (a *API) MastercardWebhook(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "MastercardWebhook")
	defer span.End()

	var env mastercardEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	status, ok := mastercardEventStatus[env.Type]
	if !ok {
		a.logger.Info("unhandled mastercard webhook event", zap.String("eventType", env.Type))
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	a.finishWebhook(c, ctx, span, paymentEvent{
		TransactionID: env.ID,
		Status:        status,
		Metadata:      env.Metadata,
	})
}

// spanSetter is the slice of the tracer span the shared webhook tail needs.
type spanSetter interface {
	SetError(message, stack string)
}

func (a *API) finishWebhook(c *gin.Context, ctx context.Context, span spanSetter, evt paymentEvent) {
	if evt.TransactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing transaction id"})
		return
	}
	if err := a.applyPaymentEvent(ctx, evt); err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing webhook"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// applyPaymentEvent updates the ledger row and, only when the status actually
// changed, propagates it to the referenced order or subscription. The change
// gate makes redelivered webhooks no-ops.
func (a *API) applyPaymentEvent(ctx context.Context, evt paymentEvent) error {
	txn, changed, err := a.ledger.UpdateStatusByTransactionID(ctx, evt.TransactionID, evt.Status)
	if err != nil {
		return err
	}
	if txn == nil || !changed {
		return nil
	}

	paymentStatus := map[string]string{
		models.TransactionCompleted: models.PaymentStatusPaid,
		models.TransactionFailed:    models.PaymentStatusFailed,
		models.TransactionRefunded:  models.PaymentStatusRefunded,
	}[evt.Status]

	orderID := metaUint(evt.Metadata, "orderId")
	if orderID == nil {
		orderID = txn.OrderID
	}
	subscriptionID := metaUint(evt.Metadata, "subscriptionId")
	if subscriptionID == nil {
		subscriptionID = txn.SubscriptionID
	}

	switch {
	case orderID != nil:
		return a.applyOrderPayment(ctx, *orderID, paymentStatus)
	case subscriptionID != nil && evt.Status != models.TransactionRefunded:
		return a.applySubscriptionPayment(ctx, *subscriptionID, paymentStatus, txn)
	}
	return nil
}

func (a *API) applyOrderPayment(ctx context.Context, orderID uint, status string) error {
	var order models.Order
	err := a.db.WithContext(ctx).
		Preload("Restaurant").Preload("Customer").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		a.logger.Warn("webhook references unknown order", zap.Uint("orderId", orderID))
		return nil
	}
	if err != nil {
		return err
	}

	if order.PaymentStatus != status {
		if err := a.db.WithContext(ctx).Model(&order).Update("payment_status", status).Error; err != nil {
			return err
		}
	}
	if status != models.PaymentStatusPaid {
		return nil
	}

	items := make(models.InvoiceItems, 0, len(order.Items))
	for _, it := range order.Items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		items = append(items, models.InvoiceItem{
			Description: it.Name,
			Quantity:    qty,
			UnitPrice:   it.Price,
			Total:       it.Price * float64(qty),
		})
	}
	customer := models.CustomerInfo{Address: order.DeliveryAddress}
	if order.Customer != nil {
		customer.Name = order.Customer.Username
		customer.Email = order.Customer.Email
	}

	_, err = a.invoices.Generate(ctx, billing.InvoiceData{
		RestaurantID: &order.RestaurantID,
		OrderID:      &order.ID,
		Amount:       order.TotalAmount,
		Items:        items,
		Customer:     customer,
	})
	if err != nil {
		a.logger.Warn("invoice generation failed after order payment",
			zap.Uint("orderId", order.ID), zap.Error(err))
	}
	return nil
}

func (a *API) applySubscriptionPayment(ctx context.Context, subscriptionID uint, status string, txn *models.Transaction) error {
	var sub models.Subscription
	err := a.db.WithContext(ctx).
		Preload("Restaurant.Owner").Preload("Plan").
		First(&sub, subscriptionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		a.logger.Warn("webhook references unknown subscription", zap.Uint("subscriptionId", subscriptionID))
		return nil
	}
	if err != nil {
		return err
	}

	if sub.PaymentStatus != status {
		sub.PaymentStatus = status
		sub.PaymentHistory = append(sub.PaymentHistory, models.PaymentRecord{
			Date:          txn.UpdatedAt,
			Amount:        txn.Amount,
			TransactionID: txn.TransactionID,
			Status:        status,
		})
		if err := a.db.WithContext(ctx).Save(&sub).Error; err != nil {
			return err
		}
	}
	if status != models.PaymentStatusPaid {
		return nil
	}

	_, err = a.invoices.Generate(ctx, billing.InvoiceData{
		RestaurantID:   &sub.RestaurantID,
		SubscriptionID: &sub.ID,
		Amount:         txn.Amount,
		Items: models.InvoiceItems{{
			Description: fmt.Sprintf("Subscription: %s", sub.Plan.Name),
			Quantity:    1,
			UnitPrice:   txn.Amount,
			Total:       txn.Amount,
		}},
		Customer: models.CustomerInfo{
			Name:    sub.Restaurant.Name,
			Email:   sub.Restaurant.Owner.Email,
			Address: sub.Restaurant.Address,
		},
	})
	if err != nil {
		a.logger.Warn("invoice generation failed after subscription payment",
			zap.Uint("subscriptionId", sub.ID), zap.Error(err))
	}
	return nil
}

// metaUint reads an entity id from webhook metadata, where JSON decoding may
// have produced a number or a string.
func metaUint(meta models.Metadata, key string) *uint {
	switch v := meta[key].(type) {
	case float64:
		if v > 0 {
			id := uint(v)
			return &id
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			id := uint(n)
			return &id
		}
	}
	return nil
}
