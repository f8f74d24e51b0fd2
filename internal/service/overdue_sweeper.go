package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OverdueSweeper periodically flips payments past their due date to overdue.
type OverdueSweeper struct {
	payments *PaymentService
	interval time.Duration
	logger   *zap.Logger
}

// NewOverdueSweeper constructs the sweeper.
func NewOverdueSweeper(payments *PaymentService, interval time.Duration, logger *zap.Logger) *OverdueSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &OverdueSweeper{payments: payments, interval: interval, logger: logger}
}

// Start runs an immediate sweep and then sweeps on the configured interval
// until the context is cancelled.
func (s *OverdueSweeper) Start(ctx context.Context) {
	go func() {
		s.payments.SweepOverdue()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.payments.SweepOverdue()
			}
		}
	}()
	s.logger.Info("overdue sweeper started", zap.Duration("interval", s.interval))
}
