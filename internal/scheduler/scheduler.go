package scheduler

import (
	"context"
	"fmt"
	"time"

	"rental-service/internal/billing"
	"github.com/sirupsen/logrus"
)

const runTimeout = 5 * time.Minute

// Run periodically checks whether a calendar month has ended without being
// billed yet and, if so, runs the monthly invoice batch for it. State is the
// last billed period held in memory; restarting mid-month re-runs at most
// the previous period, which the engine permits (duplicate-per-period
// protection is a caller concern by design).
func Run(
	ctx context.Context,
	engine *billing.Service,
	interval time.Duration,
	log *logrus.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastPeriod string

	// Check once at startup
	lastPeriod = runOnce(ctx, engine, lastPeriod, log)

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping billing scheduler")
			return
		case <-ticker.C:
			lastPeriod = runOnce(ctx, engine, lastPeriod, log)
		}
	}
}

func runOnce(ctx context.Context, engine *billing.Service, lastPeriod string, log *logrus.Logger) string {
	now := time.Now().UTC()
	prev := now.AddDate(0, 0, -now.Day()) // last day of the previous month
	period := fmt.Sprintf("%04d-%02d", prev.Year(), int(prev.Month()))
	if period == lastPeriod {
		return lastPeriod
	}

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	log.WithField("period", period).Info("starting scheduled invoice run")

	generated, rentalErrs, err := engine.GenerateMonthlyInvoices(ctx, prev.Year(), prev.Month())
	if err != nil {
		log.WithError(err).WithField("period", period).Error("scheduled invoice run failed")
		// Leave lastPeriod unchanged so the next tick retries.
		return lastPeriod
	}

	log.WithFields(logrus.Fields{
		"period":    period,
		"generated": generated,
		"failed":    len(rentalErrs),
	}).Info("scheduled invoice run completed")

	return period
}
