package billing

import (
	"regexp"
	"testing"
	"time"

	"dinehub/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var invoiceNumberPattern = regexp.MustCompile(`^INV-\d{1,6}-\d{3}$`)

func TestGenerateInvoiceNumberFormat(t *testing.T) {
	g := NewInvoiceGenerator(newTestDB(t), zap.NewNop())
	for i := 0; i < 50; i++ {
		number := g.GenerateInvoiceNumber()
		assert.Regexp(t, invoiceNumberPattern, number)
	}
}

func TestGenerateInvoice(t *testing.T) {
	db := newTestDB(t)
	g := NewInvoiceGenerator(db, zap.NewNop())

	restaurantID := uint(7)
	invoice, err := g.Generate(testCtx, InvoiceData{
		RestaurantID: &restaurantID,
		Amount:       49.99,
		Items: models.InvoiceItems{{
			Description: "Subscription: Pro",
			Quantity:    1,
			UnitPrice:   49.99,
			Total:       49.99,
		}},
		Customer: models.CustomerInfo{Name: "Testaurant", Email: "owner@test.example"},
	})
	assert.NoError(t, err)
	assert.Regexp(t, invoiceNumberPattern, invoice.InvoiceNumber)
	assert.Equal(t, models.InvoiceIssued, invoice.Status)
	assert.Equal(t, 49.99, invoice.Amount)

	dueIn := invoice.DueDate.Sub(invoice.IssueDate)
	assert.InDelta(t, float64(30*24*time.Hour), float64(dueIn), float64(time.Minute))

	var saved models.Invoice
	assert.NoError(t, db.First(&saved, invoice.ID).Error)
	assert.Equal(t, invoice.InvoiceNumber, saved.InvoiceNumber)
	assert.Len(t, saved.Items, 1)
	assert.Equal(t, "Testaurant", saved.Customer.Name)
}
