package main

import (
	"log"

	"dinehub/billing"
	"dinehub/config"
	"dinehub/database"
	"dinehub/handlers"
	"dinehub/jobs"
	"dinehub/notify"
	"dinehub/reporting"

	tracer "github.com/dhawal-pandya/aeonis/packages/tracer-sdk/go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	aeonisTracer := tracer.NewTracer(
		cfg.TracerServiceName,
		cfg.TracerEndpoint,
		cfg.TracerAPIKey,
		tracer.NewPIISanitizer(),
	)
	defer aeonisTracer.Shutdown()
	handlers.SetTracer(aeonisTracer)

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	ledger := billing.NewLedger(db, logger)
	processor := billing.NewProcessor(billing.GatewayConfig{
		PayPalAPIKey:     cfg.PayPalAPIKey,
		PayPalAPISecret:  cfg.PayPalAPISecret,
		VisaAPIKey:       cfg.VisaAPIKey,
		MastercardAPIKey: cfg.MastercardAPIKey,
	}, ledger, logger)
	invoices := billing.NewInvoiceGenerator(db, logger)
	notifier := notify.NewLogNotifier(logger)
	renewals := billing.NewRenewalEngine(db, processor, invoices, notifier, logger)
	settlements := billing.NewSettlementCalculator(db)
	reports := reporting.NewSalesEngine(db, logger)

	scheduler := jobs.NewScheduler(logger)
	scheduler.Register(jobs.NewRenewalJob(renewals, logger), cfg.RenewalHour, cfg.RenewalMinute)
	scheduler.Register(jobs.NewReminderJob(db, notifier, logger), cfg.ReminderHour, cfg.ReminderMinute)
	if cfg.JobsEnabled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	api := handlers.New(handlers.Deps{
		DB:          db,
		Config:      cfg,
		Logger:      logger,
		Ledger:      ledger,
		Processor:   processor,
		Invoices:    invoices,
		Settlements: settlements,
		Reports:     reports,
		Scheduler:   scheduler,
	})

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Token"},
		AllowCredentials: true,
	}))
	r.Use(handlers.TraceMiddleware(aeonisTracer))
	api.RegisterRoutes(r)

	logger.Info("starting server", zap.String("port", cfg.Port))
	log.Fatal(r.Run(":" + cfg.Port))
}
