package billing

import (
	"context"
	"errors"

	"dinehub/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger is the append-only record of payment attempts. Recording is a
// secondary operation: a write failure is logged, never propagated, so a
// billing flow cannot be aborted by its own bookkeeping.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewLedger(db *gorm.DB, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

type Entry struct {
	Amount         float64
	Currency       string
	Status         string
	Gateway        Gateway
	TransactionID  string
	Description    string
	Metadata       models.Metadata
	RestaurantID   *uint
	SubscriptionID *uint
	OrderID        *uint
}

func (l *Ledger) Record(ctx context.Context, e Entry) *models.Transaction {
	txn := models.Transaction{
		Amount:         e.Amount,
		Currency:       e.Currency,
		Status:         e.Status,
		Gateway:        string(e.Gateway),
		TransactionID:  e.TransactionID,
		Description:    e.Description,
		Metadata:       e.Metadata,
		RestaurantID:   e.RestaurantID,
		SubscriptionID: e.SubscriptionID,
		OrderID:        e.OrderID,
	}
	if err := l.db.WithContext(ctx).Create(&txn).Error; err != nil {
		l.logger.Error("error recording transaction", zap.Error(err))
		return nil
	}
	return &txn
}

// FindByTransactionID looks up a ledger row by the gateway-assigned id.
func (l *Ledger) FindByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := l.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// UpdateStatusByTransactionID transitions the ledger row matching a gateway
// transaction id, reporting whether anything changed. A missing row is a
// warned no-op, and re-applying the current status changes nothing, so
// webhook retries are safe.
func (l *Ledger) UpdateStatusByTransactionID(ctx context.Context, transactionID, status string) (*models.Transaction, bool, error) {
	txn, err := l.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, false, err
	}
	if txn == nil {
		l.logger.Warn("transaction not found for id", zap.String("transactionId", transactionID))
		return nil, false, nil
	}
	if txn.Status == status {
		return txn, false, nil
	}
	if err := l.db.WithContext(ctx).Model(txn).Update("status", status).Error; err != nil {
		return nil, false, err
	}
	txn.Status = status
	return txn, true, nil
}
