package notify

import (
	"context"
	"fmt"

	"dinehub/models"

	"go.uber.org/zap"
)

// Notifier delivers owner/customer-facing messages. Implementations must be
// safe to fail: callers treat delivery as best-effort.
type Notifier interface {
	RenewalFailed(ctx context.Context, sub *models.Subscription, email string, cause error) error
	InvoiceOverdue(ctx context.Context, invoice *models.Invoice, recipientName, recipientEmail string) error
}

// LogNotifier writes the message that a mail integration would send.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) RenewalFailed(ctx context.Context, sub *models.Subscription, email string, cause error) error {
	n.logger.Info("sending renewal failure notification",
		zap.Uint("subscriptionId", sub.ID),
		zap.String("to", email),
		zap.Error(cause))
	return nil
}

func (n *LogNotifier) InvoiceOverdue(ctx context.Context, invoice *models.Invoice, recipientName, recipientEmail string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nThis is a reminder that invoice %s for %.2f is overdue. Please make payment as soon as possible.\n\nThank you,\nThe DineHub Team",
		recipientName, invoice.InvoiceNumber, invoice.Amount)
	n.logger.Info("sending invoice reminder",
		zap.String("to", recipientEmail),
		zap.String("subject", fmt.Sprintf("Reminder: Invoice %s is overdue", invoice.InvoiceNumber)),
		zap.String("body", body))
	return nil
}
