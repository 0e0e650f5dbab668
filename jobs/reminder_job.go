package jobs

import (
	"context"
	"time"

	"dinehub/models"
	"dinehub/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderJob marks due invoices overdue and reminds whoever owes them:
// the restaurant owner for subscription invoices, the customer for order
// invoices.
type ReminderJob struct {
	db       *gorm.DB
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewReminderJob(db *gorm.DB, notifier notify.Notifier, logger *zap.Logger) *ReminderJob {
	return &ReminderJob{db: db, notifier: notifier, logger: logger}
}

func (j *ReminderJob) Name() string { return "invoice-reminder" }

func (j *ReminderJob) Run(ctx context.Context) error {
	var invoices []models.Invoice
	err := j.db.WithContext(ctx).
		Preload("Restaurant.Owner").
		Preload("Order.Customer").
		Where("status IN ? AND due_date <= ?", []string{models.InvoiceIssued, models.InvoiceOverdue}, time.Now()).
		Find(&invoices).Error
	if err != nil {
		return err
	}
	j.logger.Info("found overdue invoices", zap.Int("count", len(invoices)))

	for i := range invoices {
		invoice := &invoices[i]
		if err := j.remind(ctx, invoice); err != nil {
			j.logger.Error("error processing invoice",
				zap.Uint("invoiceId", invoice.ID), zap.Error(err))
		}
	}
	return nil
}

func (j *ReminderJob) remind(ctx context.Context, invoice *models.Invoice) error {
	if invoice.Status != models.InvoiceOverdue {
		err := j.db.WithContext(ctx).Model(invoice).Update("status", models.InvoiceOverdue).Error
		if err != nil {
			return err
		}
		invoice.Status = models.InvoiceOverdue
	}

	var recipientName, recipientEmail string
	switch {
	case invoice.SubscriptionID != nil && invoice.Restaurant != nil:
		recipientName = invoice.Restaurant.Owner.Username
		recipientEmail = invoice.Restaurant.Owner.Email
	case invoice.OrderID != nil && invoice.Order != nil && invoice.Order.Customer != nil:
		recipientName = invoice.Order.Customer.Username
		recipientEmail = invoice.Order.Customer.Email
	}
	if recipientEmail == "" {
		j.logger.Warn("no recipient email found for invoice", zap.Uint("invoiceId", invoice.ID))
		return nil
	}
	if recipientName == "" {
		recipientName = "Customer"
	}
	return j.notifier.InvoiceOverdue(ctx, invoice, recipientName, recipientEmail)
}
