package billing

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"dinehub/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const invoiceDueDays = 30

// InvoiceGenerator issues invoices for successful billing events.
type InvoiceGenerator struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewInvoiceGenerator(db *gorm.DB, logger *zap.Logger) *InvoiceGenerator {
	return &InvoiceGenerator{db: db, logger: logger}
}

type InvoiceData struct {
	RestaurantID   *uint
	SubscriptionID *uint
	OrderID        *uint
	Amount         float64
	Items          models.InvoiceItems
	Customer       models.CustomerInfo
}

// GenerateInvoiceNumber produces INV-<last 6 of epoch millis>-<3 random digits>.
// The store's unique index is what actually guards against a collision.
func (g *InvoiceGenerator) GenerateInvoiceNumber() string {
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}
	return fmt.Sprintf("INV-%s-%03d", millis, rand.Intn(1000))
}

// Generate creates an issued invoice due 30 days out. One retry with a fresh
// number covers the unlikely duplicate-number collision.
func (g *InvoiceGenerator) Generate(ctx context.Context, data InvoiceData) (*models.Invoice, error) {
	now := time.Now()
	invoice := models.Invoice{
		InvoiceNumber:  g.GenerateInvoiceNumber(),
		Amount:         data.Amount,
		Status:         models.InvoiceIssued,
		IssueDate:      now,
		DueDate:        now.Add(invoiceDueDays * 24 * time.Hour),
		Items:          data.Items,
		Customer:       data.Customer,
		RestaurantID:   data.RestaurantID,
		SubscriptionID: data.SubscriptionID,
		OrderID:        data.OrderID,
	}

	err := g.db.WithContext(ctx).Create(&invoice).Error
	if err != nil && isDuplicateKey(err) {
		g.logger.Warn("invoice number collision, retrying",
			zap.String("invoiceNumber", invoice.InvoiceNumber))
		invoice.ID = 0
		invoice.InvoiceNumber = g.GenerateInvoiceNumber()
		err = g.db.WithContext(ctx).Create(&invoice).Error
	}
	if err != nil {
		g.logger.Error("error generating invoice", zap.Error(err))
		return nil, err
	}
	return &invoice, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
