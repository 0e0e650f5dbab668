package billing

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"dinehub/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Gateway identifies a supported payment backend. The set is closed; anything
// else is rejected by ParseGateway.
type Gateway string

const (
	GatewayPayPal     Gateway = "paypal"
	GatewayVisa       Gateway = "visa"
	GatewayMastercard Gateway = "mastercard"
)

func ParseGateway(s string) (Gateway, error) {
	switch Gateway(strings.ToLower(s)) {
	case GatewayPayPal:
		return GatewayPayPal, nil
	case GatewayVisa:
		return GatewayVisa, nil
	case GatewayMastercard:
		return GatewayMastercard, nil
	default:
		return "", fmt.Errorf("unsupported payment gateway: %s", s)
	}
}

type PaymentRequest struct {
	Amount      float64
	Currency    string
	Description string
	Email       string
	CardLast4   string

	RestaurantID   *uint
	SubscriptionID *uint
	OrderID        *uint
}

type PaymentResult struct {
	Success       bool              `json:"success"`
	TransactionID string            `json:"transactionId"`
	Timestamp     time.Time         `json:"timestamp"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Fee           float64           `json:"fee"`
	Details       map[string]string `json:"details"`
}

// PaymentGateway is the capability every backend implements. A Charge error
// means the attempt failed; a nil error with Success=false is reserved for
// webhook-reported declines.
type PaymentGateway interface {
	Name() Gateway
	Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// GatewayConfig carries the credentials for the simulated backends.
type GatewayConfig struct {
	PayPalAPIKey     string
	PayPalAPISecret  string
	VisaAPIKey       string
	MastercardAPIKey string
}

func gatewayFee(amount, rate, fixed float64) float64 {
	fee := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Add(decimal.NewFromFloat(fixed))
	return fee.Round(2).InexactFloat64()
}

func syntheticTransactionID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixMilli(), rand.Intn(1000000))
}

type paypalGateway struct {
	apiKey    string
	apiSecret string
	logger    *zap.Logger
}

func (g *paypalGateway) Name() Gateway { return GatewayPayPal }

func (g *paypalGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if g.apiKey == "" || g.apiSecret == "" {
		return nil, &GatewayError{Gateway: GatewayPayPal, Reason: "API credentials not configured"}
	}
	g.logger.Info("processing paypal payment",
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency),
		zap.String("description", req.Description))

	email := req.Email
	if email == "" {
		email = "customer@example.com"
	}
	return &PaymentResult{
		Success:       true,
		TransactionID: syntheticTransactionID("PP"),
		Timestamp:     time.Now(),
		Amount:        req.Amount,
		Currency:      req.Currency,
		Fee:           gatewayFee(req.Amount, 0.029, 0.30),
		Details: map[string]string{
			"status":        "COMPLETED",
			"paymentMethod": "paypal",
			"payerEmail":    email,
		},
	}, nil
}

type visaGateway struct {
	apiKey string
	logger *zap.Logger
}

func (g *visaGateway) Name() Gateway { return GatewayVisa }

func (g *visaGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if g.apiKey == "" {
		return nil, &GatewayError{Gateway: GatewayVisa, Reason: "API credentials not configured"}
	}
	g.logger.Info("processing visa payment",
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency),
		zap.String("description", req.Description))

	last4 := req.CardLast4
	if last4 == "" {
		last4 = "4242"
	}
	return &PaymentResult{
		Success:       true,
		TransactionID: syntheticTransactionID("VISA"),
		Timestamp:     time.Now(),
		Amount:        req.Amount,
		Currency:      req.Currency,
		Fee:           gatewayFee(req.Amount, 0.025, 0.25),
		Details: map[string]string{
			"status":        "approved",
			"paymentMethod": "visa",
			"last4":         last4,
		},
	}, nil
}

type mastercardGateway struct {
	apiKey string
	logger *zap.Logger
}

func (g *mastercardGateway) Name() Gateway { return GatewayMastercard }

func (g *mastercardGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if g.apiKey == "" {
		return nil, &GatewayError{Gateway: GatewayMastercard, Reason: "API credentials not configured"}
	}
	g.logger.Info("processing mastercard payment",
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency),
		zap.String("description", req.Description))

	last4 := req.CardLast4
	if last4 == "" {
		last4 = "5555"
	}
	return &PaymentResult{
		Success:       true,
		TransactionID: syntheticTransactionID("MC"),
		Timestamp:     time.Now(),
		Amount:        req.Amount,
		Currency:      req.Currency,
		Fee:           gatewayFee(req.Amount, 0.027, 0.30),
		Details: map[string]string{
			"status":        "approved",
			"paymentMethod": "mastercard",
			"last4":         last4,
		},
	}, nil
}

// Processor validates payment requests, dispatches them to the right gateway
// and records every attempt in the ledger, on success and failure alike.
type Processor struct {
	gateways map[Gateway]PaymentGateway
	ledger   *Ledger
	logger   *zap.Logger
}

func NewProcessor(cfg GatewayConfig, ledger *Ledger, logger *zap.Logger) *Processor {
	return &Processor{
		gateways: map[Gateway]PaymentGateway{
			GatewayPayPal:     &paypalGateway{apiKey: cfg.PayPalAPIKey, apiSecret: cfg.PayPalAPISecret, logger: logger},
			GatewayVisa:       &visaGateway{apiKey: cfg.VisaAPIKey, logger: logger},
			GatewayMastercard: &mastercardGateway{apiKey: cfg.MastercardAPIKey, logger: logger},
		},
		ledger: ledger,
		logger: logger,
	}
}

func validatePaymentRequest(req PaymentRequest) error {
	if req.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if len(req.Currency) != 3 {
		return &ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	}
	if req.Description == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	return nil
}

// Process charges the request through the named gateway. Both outcomes leave a
// ledger row; errors are returned after being recorded.
func (p *Processor) Process(ctx context.Context, req PaymentRequest, gateway Gateway) (*PaymentResult, error) {
	if err := validatePaymentRequest(req); err != nil {
		p.logger.Error("payment validation failed", zap.Error(err))
		p.recordFailure(ctx, req, gateway, err)
		return nil, err
	}

	gw, ok := p.gateways[gateway]
	if !ok {
		err := &GatewayError{Gateway: gateway, Reason: "unsupported payment gateway"}
		p.logger.Error("payment processing error", zap.Error(err))
		p.recordFailure(ctx, req, gateway, err)
		return nil, err
	}

	result, err := gw.Charge(ctx, req)
	if err != nil {
		p.logger.Error("payment processing error", zap.String("gateway", string(gateway)), zap.Error(err))
		p.recordFailure(ctx, req, gateway, err)
		return nil, err
	}

	status := models.TransactionCompleted
	if !result.Success {
		status = models.TransactionFailed
	}
	p.ledger.Record(ctx, Entry{
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         status,
		Gateway:        gateway,
		TransactionID:  result.TransactionID,
		Description:    req.Description,
		Metadata:       models.Metadata{"fee": result.Fee, "details": result.Details},
		RestaurantID:   req.RestaurantID,
		SubscriptionID: req.SubscriptionID,
		OrderID:        req.OrderID,
	})
	return result, nil
}

func (p *Processor) recordFailure(ctx context.Context, req PaymentRequest, gateway Gateway, cause error) {
	p.ledger.Record(ctx, Entry{
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         models.TransactionFailed,
		Gateway:        gateway,
		Description:    req.Description,
		Metadata:       models.Metadata{"error": cause.Error()},
		RestaurantID:   req.RestaurantID,
		SubscriptionID: req.SubscriptionID,
		OrderID:        req.OrderID,
	})
}
