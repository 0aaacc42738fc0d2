package battle

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically settles expired sessions and drops expired
// challenges, reporting each expiry to the Notifier. It implements the
// server lifecycle Service contract.
type Sweeper struct {
	registry *Registry
	notifier Notifier
	logger   *zap.Logger
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
}

// NewSweeper creates a sweeper over the given registry.
//
// Precondition: registry, notifier, and logger must be non-nil; interval
// must be positive.
func NewSweeper(registry *Registry, notifier Notifier, logger *zap.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		registry: registry,
		notifier: notifier,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called.
//
// Postcondition: Blocks until Stop; always returns nil.
func (s *Sweeper) Start() error {
	defer close(s.stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return nil
		}
	}
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.done)
	<-s.stopped
}

func (s *Sweeper) sweep() {
	start := time.Now()
	turns := s.registry.Sweep()
	if len(turns) == 0 {
		return
	}

	ctx := context.Background()
	for _, turn := range turns {
		for _, player := range turn.Players {
			for _, outcome := range turn.Outcomes {
				s.notifier.NotifyOutcome(ctx, player.AccountID, outcome)
			}
		}
	}

	s.logger.Info("swept expired sessions",
		zap.Int("count", len(turns)),
		zap.Duration("elapsed", time.Since(start)),
	)
}
