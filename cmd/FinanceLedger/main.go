package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	database "github.com/sebuszqo/FinanceLedger/db"
	"github.com/sebuszqo/FinanceLedger/internal/auth"
	"github.com/sebuszqo/FinanceLedger/internal/config"
	"github.com/sebuszqo/FinanceLedger/internal/events"
	"github.com/sebuszqo/FinanceLedger/internal/finance/application"
	"github.com/sebuszqo/FinanceLedger/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceLedger/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceLedger/internal/log"
	"github.com/sebuszqo/FinanceLedger/internal/user"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	logger := log.New(log.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.OperationError(context.Background(), log.OpStartup, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbService, err := database.NewDBService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer dbService.Close()

	if cfg.RunMigrations {
		if err := database.MigrateUp(dbService.DB); err != nil {
			return err
		}
		logger.Info("migrations applied", log.FieldOperation, log.OpMigrate)
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		return err
	}

	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo)
	authenticator := auth.NewAuthenticator(jwtManager, userService, logger)

	ledgerOpts := []application.LedgerOption{application.WithMaxRetries(cfg.LedgerMaxRetries)}
	if cfg.EventsEnabled() {
		publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		ledgerOpts = append(ledgerOpts, application.WithPublisher(publisher))
		logger.Info("balance events enabled", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	}

	ledgerRepo := infrastructure.NewLedgerRepository(dbService.DB, logger)
	ledgerService := application.NewLedgerService(ledgerRepo, logger, ledgerOpts...)
	transactionService := application.NewTransactionService(infrastructure.NewTransactionRepository(dbService.DB), userService)
	accountService := application.NewAccountService(infrastructure.NewAccountRepository(dbService.DB))
	categoryService := application.NewCategoryService(infrastructure.NewCategoryRepository(dbService.DB))

	server := NewServer(
		logger,
		authenticator.JWTAccessTokenMiddleware(),
		dbService,
		interfaces.NewTransactionHandler(ledgerService, transactionService, interfaces.RespondJSON, interfaces.RespondError),
		interfaces.NewBalanceHandler(ledgerService, interfaces.RespondJSON, interfaces.RespondError),
		interfaces.NewAccountHandler(accountService, interfaces.RespondJSON, interfaces.RespondError),
		interfaces.NewCategoryHandler(categoryService, interfaces.RespondJSON, interfaces.RespondError),
	)
	server.RegisterRoutes()

	if cfg.ReconcileSchedule != "" {
		scheduler, err := StartReconcileScheduler(cfg.ReconcileSchedule, ledgerService, logger)
		if err != nil {
			return err
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", log.FieldOperation, log.OpShutdown)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
