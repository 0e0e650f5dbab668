package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Subscription payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
)

// Transaction ledger statuses.
const (
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
	TransactionRefunded  = "refunded"
)

// Invoice statuses.
const (
	InvoiceIssued  = "issued"
	InvoiceOverdue = "overdue"
	InvoicePaid    = "paid"
)

// Restaurant approval statuses.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Order statuses considered by settlement and reporting.
const (
	OrderCompleted = "completed"
)

// User roles.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:'owner'"`
}

type SubscriptionPlan struct {
	gorm.Model
	Name                 string `gorm:"unique;not null"`
	Description          string
	Price                float64 `gorm:"not null"`
	Currency             string  `gorm:"not null;default:'USD'"`
	Interval             string  `gorm:"not null;default:'monthly'"`
	AllowAdvancedReports bool    `gorm:"default:false"`
	MaxMenuItems         int     `gorm:"default:20"`
}

type Restaurant struct {
	gorm.Model
	Name               string `gorm:"not null"`
	Address            string
	OwnerID            uint `gorm:"not null"`
	Owner              User
	SubscriptionPlanID *uint
	SubscriptionPlan   *SubscriptionPlan
	ApprovalStatus     string `gorm:"not null;default:'pending'"`
}

// Subscription is a restaurant's paid access to the platform. RenewalDate is
// always on or before EndDate, normally seven days before.
type Subscription struct {
	gorm.Model
	RestaurantID  uint `gorm:"not null"`
	Restaurant    Restaurant
	PlanID        uint `gorm:"not null"`
	Plan          SubscriptionPlan
	Amount        float64   `gorm:"not null"`
	Currency      string    `gorm:"not null;default:'USD'"`
	StartDate     time.Time `gorm:"not null"`
	EndDate       time.Time `gorm:"not null"`
	RenewalDate   time.Time `gorm:"not null"`
	IsActive      bool      `gorm:"default:true"`
	AutoRenew     bool      `gorm:"default:true"`
	PaymentMethod string    `gorm:"not null"`
	PaymentStatus string    `gorm:"not null;default:'pending'"`
	// PaymentHistory is append-only; entries are never rewritten.
	PaymentHistory PaymentHistory `gorm:"type:text"`
}

// Transaction is one row in the append-only payment ledger. Status only
// changes through webhook-driven updates.
type Transaction struct {
	gorm.Model
	Amount         float64 `gorm:"not null"`
	Currency       string  `gorm:"not null"`
	Status         string  `gorm:"not null"`
	Gateway        string  `gorm:"not null"`
	TransactionID  string  `gorm:"index"`
	Description    string
	Metadata       Metadata `gorm:"type:text"`
	RestaurantID   *uint
	SubscriptionID *uint
	OrderID        *uint
}

type Invoice struct {
	gorm.Model
	InvoiceNumber  string  `gorm:"uniqueIndex;not null"`
	Amount         float64 `gorm:"not null"`
	Status         string  `gorm:"not null;default:'issued'"`
	IssueDate      time.Time
	DueDate        time.Time
	Items          InvoiceItems `gorm:"type:text"`
	Customer       CustomerInfo `gorm:"type:text"`
	RestaurantID   *uint
	Restaurant     *Restaurant
	SubscriptionID *uint
	Subscription   *Subscription
	OrderID        *uint
	Order          *Order
}

type Order struct {
	gorm.Model
	OrderNumber     string `gorm:"not null"`
	RestaurantID    uint   `gorm:"not null"`
	Restaurant      Restaurant
	CustomerID      *uint
	Customer        *User
	Items           OrderItems `gorm:"type:text"`
	TotalAmount     float64    `gorm:"not null"`
	Status          string     `gorm:"not null"`
	PaymentStatus   string     `gorm:"not null;default:'pending'"`
	DeliveryAddress string
}

type MenuItem struct {
	gorm.Model
	RestaurantID uint   `gorm:"not null"`
	Name         string `gorm:"not null"`
	Price        float64
}

// APIToken allows server-to-server access scoped to one restaurant.
type APIToken struct {
	gorm.Model
	Token        string `gorm:"uniqueIndex;not null"`
	RestaurantID *uint
	Restaurant   *Restaurant
	IsActive     bool `gorm:"default:true"`
	ExpiresAt    *time.Time
	LastUsed     *time.Time
}

// PaymentRecord is one entry in a subscription's payment history.
type PaymentRecord struct {
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transactionId,omitempty"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
}

type PaymentHistory []PaymentRecord

type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

type InvoiceItems []InvoiceItem

type OrderItem struct {
	MenuItemID uint    `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type OrderItems []OrderItem

type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type Metadata map[string]interface{}

func (h PaymentHistory) Value() (driver.Value, error) {
	if h == nil {
		h = PaymentHistory{}
	}
	return json.Marshal(h)
}

func (h *PaymentHistory) Scan(value interface{}) error {
	return scanJSON(value, h)
}

func (i InvoiceItems) Value() (driver.Value, error) {
	if i == nil {
		i = InvoiceItems{}
	}
	return json.Marshal(i)
}

func (i *InvoiceItems) Scan(value interface{}) error {
	return scanJSON(value, i)
}

func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		o = OrderItems{}
	}
	return json.Marshal(o)
}

func (o *OrderItems) Scan(value interface{}) error {
	return scanJSON(value, o)
}

func (c CustomerInfo) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *CustomerInfo) Scan(value interface{}) error {
	return scanJSON(value, c)
}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		m = Metadata{}
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
