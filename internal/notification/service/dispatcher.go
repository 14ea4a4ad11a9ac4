package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunForever polls the outbox at the configured interval until the
// context is cancelled.
func (s *Service) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Outbox.PollInterval)
	defer ticker.Stop()

	for {
		sent, err := s.DispatchPending(ctx)
		if err != nil {
			s.log.Warn("outbox dispatch failed", zap.Error(err))
		} else if sent > 0 {
			s.log.Info("outbox dispatched", zap.Int("sent", sent))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
