package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/sebuszqo/FinanceLedger/internal/log"
)

const reconcileTimeout = 5 * time.Minute

type BalanceVerifier interface {
	VerifyBalances(ctx context.Context) ([]domain.BalanceDrift, error)
}

// StartReconcileScheduler periodically compares every balance with its transactions.
// Drift is only reported; repairing it is left to an operator.
func StartReconcileScheduler(schedule string, verifier BalanceVerifier, logger *log.Logger) (*cron.Cron, error) {
	schedulerLogger := logger.WithComponent(log.ComponentScheduler)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		reconcileBalances(verifier, schedulerLogger)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	schedulerLogger.Info("balance reconciliation scheduled", "schedule", schedule)
	return c, nil
}

func reconcileBalances(verifier BalanceVerifier, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	drifts, err := verifier.VerifyBalances(ctx)
	if err != nil {
		logger.OperationError(ctx, log.OpVerify, err)
		return
	}
	if len(drifts) > 0 {
		logger.WarnContext(ctx, "balance reconciliation found drift", "accounts", len(drifts))
		return
	}
	logger.InfoContext(ctx, "balances verified successfully")
}
