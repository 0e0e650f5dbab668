package handlers

import (
	"fmt"
	"net/http"
	"time"

	"dinehub/billing"
	"dinehub/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubscribeRequest struct {
	SubscriptionPlanID uint   `json:"subscription_plan_id" binding:"required"`
	PaymentMethod      string `json:"payment_method" binding:"required"`
	AutoRenew          *bool  `json:"auto_renew"`
}

// Subscribe charges the restaurant owner for a plan and opens a subscription
// running one calendar month, renewing seven days before it ends.
func (a *API) Subscribe(c *gin.Context) {
	ctx, span := Tracer.StartSpan(c.Request.Context(), "Subscribe")
	defer span.End()

	restaurant, ok := a.restaurantByParam(c)
	if !ok {
		return
	}
	if !a.canAccessRestaurant(c, restaurant) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this restaurant"})
		return
	}
	if restaurant.ApprovalStatus != models.ApprovalApproved {
		c.JSON(http.StatusForbidden, gin.H{"error": "Restaurant is not approved"})
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gateway, err := billing.ParseGateway(req.PaymentMethod)
	if err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var plan models.SubscriptionPlan
	if err := a.db.WithContext(ctx).First(&plan, req.SubscriptionPlanID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription plan not found"})
		return
	}

	result, err := a.processor.Process(ctx, billing.PaymentRequest{
		Amount:       plan.Price,
		Currency:     plan.Currency,
		Description:  fmt.Sprintf("Subscription for %s - %s", restaurant.Name, plan.Name),
		Email:        restaurant.Owner.Email,
		RestaurantID: &restaurant.ID,
	}, gateway)
	if err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	start := now
	end := start.AddDate(0, 1, 0)
	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}

	sub := models.Subscription{
		RestaurantID:  restaurant.ID,
		PlanID:        plan.ID,
		Amount:        plan.Price,
		Currency:      plan.Currency,
		StartDate:     start,
		EndDate:       end,
		RenewalDate:   end.AddDate(0, 0, -7),
		IsActive:      true,
		AutoRenew:     autoRenew,
		PaymentMethod: string(gateway),
		PaymentStatus: models.PaymentStatusPaid,
		PaymentHistory: models.PaymentHistory{{
			Date:          now,
			Amount:        plan.Price,
			TransactionID: result.TransactionID,
			Status:        models.PaymentStatusPaid,
		}},
	}
	if err := a.db.WithContext(ctx).Create(&sub).Error; err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		return
	}

	err = a.db.WithContext(ctx).Model(restaurant).
		Update("subscription_plan_id", plan.ID).Error
	if err != nil {
		span.SetError(err.Error(), "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign subscription plan"})
		return
	}

	invoice, err := a.invoices.Generate(ctx, billing.InvoiceData{
		RestaurantID:   &restaurant.ID,
		SubscriptionID: &sub.ID,
		Amount:         plan.Price,
		Items: models.InvoiceItems{{
			Description: fmt.Sprintf("Subscription: %s", plan.Name),
			Quantity:    1,
			UnitPrice:   plan.Price,
			Total:       plan.Price,
		}},
		Customer: models.CustomerInfo{
			Name:    restaurant.Name,
			Email:   restaurant.Owner.Email,
			Address: restaurant.Address,
		},
	})
	if err != nil {
		// Subscription and payment already stand; the invoice is best-effort.
		a.logger.Warn("invoice generation failed after subscribe",
			zap.Uint("subscriptionId", sub.ID), zap.Error(err))
	}

	resp := gin.H{
		"message":         "Subscription created",
		"subscription_id": sub.ID,
		"transaction_id":  result.TransactionID,
	}
	if invoice != nil {
		resp["invoice_id"] = invoice.ID
	}
	c.JSON(http.StatusCreated, resp)
}
