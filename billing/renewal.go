package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dinehub/models"
	"dinehub/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// renewalNoticeDays is how far ahead of the end date the next renewal fires.
const renewalNoticeDays = 7

// RenewalEngine drives the subscription renewal cycle: eligibility check,
// charge, date roll-forward, history append, invoice. Payment, subscription
// update and invoice generation are sequential, non-transactional steps; an
// invoice failure after the subscription was persisted does not undo the
// renewal.
type RenewalEngine struct {
	db        *gorm.DB
	processor *Processor
	invoices  *InvoiceGenerator
	notifier  notify.Notifier
	logger    *zap.Logger
}

func NewRenewalEngine(db *gorm.DB, processor *Processor, invoices *InvoiceGenerator, notifier notify.Notifier, logger *zap.Logger) *RenewalEngine {
	return &RenewalEngine{db: db, processor: processor, invoices: invoices, notifier: notifier, logger: logger}
}

type RenewalResult struct {
	Subscription *models.Subscription
	Payment      *PaymentResult
}

// ProcessRenewal renews a single subscription. On a successful charge the
// period rolls forward: start = old end + 1 day, end = start + 1 calendar
// month, renewal = end - 7 days. On a failed charge the dates are untouched,
// the failure is appended to the payment history and the error returned.
func (e *RenewalEngine) ProcessRenewal(ctx context.Context, subscriptionID uint) (*RenewalResult, error) {
	var sub models.Subscription
	err := e.db.WithContext(ctx).
		Preload("Restaurant.Owner").
		Preload("Plan").
		First(&sub, subscriptionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "subscription", ID: subscriptionID}
	}
	if err != nil {
		return nil, err
	}

	if !sub.AutoRenew {
		return nil, &IneligibleSubscriptionError{SubscriptionID: sub.ID, Reason: "not set for auto-renewal"}
	}
	if !sub.IsActive {
		return nil, &IneligibleSubscriptionError{SubscriptionID: sub.ID, Reason: "subscription is inactive"}
	}

	currency := sub.Currency
	if currency == "" {
		currency = "USD"
	}
	req := PaymentRequest{
		Amount:         sub.Amount,
		Currency:       currency,
		Description:    fmt.Sprintf("Subscription renewal for %s - %s", sub.Restaurant.Name, sub.Plan.Name),
		Email:          sub.Restaurant.Owner.Email,
		RestaurantID:   &sub.RestaurantID,
		SubscriptionID: &sub.ID,
	}

	gateway, gwErr := ParseGateway(sub.PaymentMethod)
	if gwErr != nil {
		chargeErr := &GatewayError{Gateway: Gateway(sub.PaymentMethod), Reason: "unsupported payment gateway"}
		e.markRenewalFailed(ctx, &sub, chargeErr)
		return nil, chargeErr
	}

	result, chargeErr := e.processor.Process(ctx, req, gateway)
	if chargeErr == nil && !result.Success {
		chargeErr = &GatewayError{Gateway: gateway, Reason: "payment declined"}
	}
	if chargeErr != nil {
		e.markRenewalFailed(ctx, &sub, chargeErr)
		return nil, fmt.Errorf("payment failed for subscription renewal %d: %w", sub.ID, chargeErr)
	}

	now := time.Now()
	newStart := sub.EndDate.AddDate(0, 0, 1)
	newEnd := newStart.AddDate(0, 1, 0)
	newRenewal := newEnd.AddDate(0, 0, -renewalNoticeDays)

	sub.StartDate = newStart
	sub.EndDate = newEnd
	sub.RenewalDate = newRenewal
	sub.PaymentStatus = models.PaymentStatusPaid
	sub.PaymentHistory = append(sub.PaymentHistory, models.PaymentRecord{
		Date:          now,
		Amount:        sub.Amount,
		TransactionID: result.TransactionID,
		Status:        models.PaymentStatusPaid,
	})
	if err := e.db.WithContext(ctx).Save(&sub).Error; err != nil {
		return nil, fmt.Errorf("failed to persist renewed subscription %d: %w", sub.ID, err)
	}

	if _, err := e.invoices.Generate(ctx, InvoiceData{
		RestaurantID:   &sub.RestaurantID,
		SubscriptionID: &sub.ID,
		Amount:         sub.Amount,
		Items: models.InvoiceItems{{
			Description: fmt.Sprintf("Subscription renewal: %s", sub.Plan.Name),
			Quantity:    1,
			UnitPrice:   sub.Amount,
			Total:       sub.Amount,
		}},
		Customer: models.CustomerInfo{
			Name:    sub.Restaurant.Name,
			Email:   sub.Restaurant.Owner.Email,
			Address: sub.Restaurant.Address,
		},
	}); err != nil {
		// The renewal already stands; losing the invoice is accepted.
		e.logger.Warn("invoice generation failed after renewal",
			zap.Uint("subscriptionId", sub.ID), zap.Error(err))
	}

	return &RenewalResult{Subscription: &sub, Payment: result}, nil
}

func (e *RenewalEngine) markRenewalFailed(ctx context.Context, sub *models.Subscription, cause error) {
	sub.PaymentStatus = models.PaymentStatusFailed
	sub.PaymentHistory = append(sub.PaymentHistory, models.PaymentRecord{
		Date:   time.Now(),
		Amount: sub.Amount,
		Status: models.PaymentStatusFailed,
		Error:  cause.Error(),
	})
	if err := e.db.WithContext(ctx).Save(sub).Error; err != nil {
		e.logger.Error("error updating subscription after payment failure",
			zap.Uint("subscriptionId", sub.ID), zap.Error(err))
	}
}

type RenewalSummary struct {
	Due     int
	Renewed int
	Failed  int
}

// RenewDue processes every subscription whose renewal date has arrived. Each
// subscription is isolated: a failure is logged, a best-effort notification
// goes to the owner, and the batch moves on.
func (e *RenewalEngine) RenewDue(ctx context.Context, now time.Time) (RenewalSummary, error) {
	var due []models.Subscription
	err := e.db.WithContext(ctx).
		Preload("Restaurant.Owner").
		Where("is_active = ? AND auto_renew = ? AND renewal_date <= ?", true, true, now).
		Find(&due).Error
	if err != nil {
		return RenewalSummary{}, err
	}

	summary := RenewalSummary{Due: len(due)}
	e.logger.Info("found subscriptions to renew", zap.Int("count", len(due)))

	for i := range due {
		sub := &due[i]
		if _, err := e.ProcessRenewal(ctx, sub.ID); err != nil {
			summary.Failed++
			e.logger.Error("error renewing subscription", zap.Uint("subscriptionId", sub.ID), zap.Error(err))
			if notifyErr := e.notifier.RenewalFailed(ctx, sub, sub.Restaurant.Owner.Email, err); notifyErr != nil {
				e.logger.Error("error sending renewal failure notification", zap.Error(notifyErr))
			}
			continue
		}
		summary.Renewed++
		e.logger.Info("successfully renewed subscription", zap.Uint("subscriptionId", sub.ID))
	}
	return summary, nil
}
