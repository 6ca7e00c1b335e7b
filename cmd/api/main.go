package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/tillpoint/internal/application/outbox"
	"github.com/sangkips/tillpoint/internal/application/register"
	"github.com/sangkips/tillpoint/internal/application/service"
	"github.com/sangkips/tillpoint/internal/clock"
	"github.com/sangkips/tillpoint/internal/config"
	"github.com/sangkips/tillpoint/internal/domain/pricing"
	domainRepo "github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/internal/infrastructure/database"
	"github.com/sangkips/tillpoint/internal/infrastructure/gateway"
	"github.com/sangkips/tillpoint/internal/infrastructure/repository"
	"github.com/sangkips/tillpoint/internal/logger"
	"github.com/sangkips/tillpoint/internal/observability/metrics"
	"github.com/sangkips/tillpoint/internal/presentation/http/handler"
	"github.com/sangkips/tillpoint/internal/presentation/http/routes"
	"github.com/sangkips/tillpoint/pkg/terminal"
	"github.com/sangkips/tillpoint/pkg/utils"
	"go.uber.org/zap"
)

// backOffice is everything a register needs from the server side.
type backOffice interface {
	register.TransactionAPI
	register.InventoryAPI
	register.CreditLedger
}

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Logger.Level, cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Open(&cfg.Database, cfg.App.Debug, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	// Seed a starter catalog outside production
	if cfg.App.Env != "production" {
		if err := database.SeedDefaultData(db, zlog); err != nil {
			zlog.Warn("failed to seed default data", zap.Error(err))
		}
	}

	clk := clock.System()
	m := metrics.New(prometheus.DefaultRegisterer, metrics.Config{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	outboxRepo := repository.NewLedgerOutboxRepository(db)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, zlog)
	transactionService := service.NewTransactionService(transactionRepo, zlog)
	creditService := service.NewCreditService(creditRepo, zlog)

	// Initialize card terminal
	card, err := terminal.NewTerminalFromConfig(cfg.Terminal.Type, cfg.Terminal.Address, cfg.Terminal.Timeout)
	if err != nil {
		zlog.Warn("failed to initialize payment terminal", zap.Error(err))
		card = terminal.NewNullTerminal()
	}
	terminalService := service.NewTerminalService(card, cfg.Terminal.Type, cfg.Terminal.Processor, cfg.Terminal.TerminalID, zlog)

	// Registers talk to this process unless a remote back office is configured
	var office backOffice = gateway.NewLocal(catalogService, transactionService, creditService)
	if cfg.Register.APIURL != "" {
		office = gateway.NewClient(cfg.Register.APIURL, cfg.Register.APIToken, cfg.Register.RequestTimeout)
		zlog.Info("registers use remote back office", zap.String("url", cfg.Register.APIURL))
	}

	queue := outbox.NewQueue(outboxRepo, clk, m, zlog)
	worker := outbox.NewWorker(outboxRepo, office, clk, outbox.Config{
		RetryInterval: cfg.Outbox.RetryInterval,
		MaxAttempts:   cfg.Outbox.MaxAttempts,
		BatchSize:     cfg.Outbox.BatchSize,
		PerSecond:     cfg.Outbox.PerSecond,
	}, m, zlog)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error("ledger outbox worker stopped", zap.Error(err))
		}
	}()
	go purgeIdempotencyKeys(ctx, idempotencyRepo, clk, zlog)

	manager := register.NewManager(register.Deps{
		Transactions: office,
		Inventory:    office,
		Ledger:       office,
		Terminal:     terminalService,
		Queue:        queue,
		Reconciler: settlement.NewReconciler(pricing.Config{
			TaxRate: cfg.Store.TaxRate,
			CardFee: cfg.Store.CardFee,
		}),
		Clock:            clk,
		Metrics:          m,
		Log:              zlog,
		ScannerThreshold: cfg.Scanner.Threshold,
		AutofillTender:   cfg.Register.AutofillTender,
		RequestTimeout:   cfg.Register.RequestTimeout,
	})

	// Initialize handlers
	handlers := &routes.Handlers{
		Inventory:   handler.NewInventoryHandler(catalogService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Credit:      handler.NewCreditHandler(creditService),
		Terminal:    handler.NewTerminalHandler(terminalService),
		Register:    handler.NewRegisterHandler(manager),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours),
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Gatherer:        prometheus.DefaultGatherer,
		Clock:           clk,
		Log:             zlog,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zlog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Error("server shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("starting server",
		zap.String("service", cfg.App.Name),
		zap.String("port", port),
		zap.String("env", cfg.App.Env),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, clk clock.Clock, log *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx, clk.Now()); err != nil {
				log.Warn("failed to purge idempotency keys", zap.Error(err))
			}
		}
	}
}
