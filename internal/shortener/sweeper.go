package shortener

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically removes expired entries so abandoned links do not accumulate.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a sweeper. A non-positive interval disables it.
func NewSweeper(registry *Registry, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		registry: registry,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the sweep loop in the background.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("expired link sweeper disabled")

		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.loop(ctx)

	s.logger.Info("expired link sweeper started", zap.Duration("interval", s.interval))

	return nil
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	removed, err := s.registry.Sweep(ctx)
	if err != nil {
		s.logger.Error("failed to sweep expired links", zap.Error(err))

		return
	}

	if removed > 0 {
		s.logger.Info("swept expired links", zap.Int("removed", removed))
	}
}

// Shutdown stops the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Shutdown() error {
	if s.cancel == nil {
		return nil
	}

	s.cancel()
	<-s.done

	return nil
}
