package handlers

import (
	"net/http"

	"dinehub/billing"
	"dinehub/config"
	"dinehub/jobs"
	"dinehub/reporting"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries everything the HTTP layer needs. All wiring happens in main
// (and in tests); handlers never construct their own collaborators.
type Deps struct {
	DB          *gorm.DB
	Config      *config.Config
	Logger      *zap.Logger
	Ledger      *billing.Ledger
	Processor   *billing.Processor
	Invoices    *billing.InvoiceGenerator
	Settlements *billing.SettlementCalculator
	Reports     *reporting.SalesEngine
	Scheduler   *jobs.Scheduler
}

// API exposes the HTTP handlers as methods over a shared dependency set.
type API struct {
	db          *gorm.DB
	cfg         *config.Config
	logger      *zap.Logger
	ledger      *billing.Ledger
	processor   *billing.Processor
	invoices    *billing.InvoiceGenerator
	settlements *billing.SettlementCalculator
	reports     *reporting.SalesEngine
	scheduler   *jobs.Scheduler
}

func New(d Deps) *API {
	return &API{
		db:          d.DB,
		cfg:         d.Config,
		logger:      d.Logger,
		ledger:      d.Ledger,
		processor:   d.Processor,
		invoices:    d.Invoices,
		settlements: d.Settlements,
		reports:     d.Reports,
		scheduler:   d.Scheduler,
	}
}

func (a *API) RegisterRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/login", a.Login)
	r.POST("/restaurants/register", a.RegisterRestaurant)

	r.POST("/webhooks/paypal", a.PayPalWebhook)
	r.POST("/webhooks/visa", a.VisaWebhook)
	r.POST("/webhooks/mastercard", a.MastercardWebhook)

	authRequired := r.Group("/")
	authRequired.Use(a.AuthRequired())
	{
		authRequired.POST("/restaurants/:id/subscribe", a.Subscribe)
		authRequired.GET("/restaurants/:id/reports/sales", a.SalesReport)
		authRequired.GET("/restaurants/:id/reports/customers", a.CustomerReport)
		authRequired.GET("/restaurants/:id/reports/settlement", a.SettlementReport)

		admin := authRequired.Group("/admin")
		admin.Use(a.RequireAdmin())
		{
			admin.GET("/restaurants", a.ListRestaurants)
			admin.POST("/restaurants/:id/approve", a.ApproveRestaurant)
			admin.POST("/restaurants/:id/reject", a.RejectRestaurant)
			admin.POST("/jobs/:name/run", a.RunJob)
			admin.POST("/clear_db", a.ClearDatabase)
		}
	}
}
