package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs dispatch batches on a fixed interval.
type Scheduler struct {
	mu         sync.RWMutex
	orch       *Orchestrator
	log        *slog.Logger
	interval   time.Duration
	runTimeout time.Duration
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewScheduler(orch *Orchestrator, log *slog.Logger, interval, runTimeout time.Duration) *Scheduler {
	return &Scheduler{
		orch:       orch,
		log:        log,
		interval:   interval,
		runTimeout: runTimeout,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler, waiting for an in-flight run.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	start := time.Now()
	stats, err := s.orch.Run(runCtx)
	if err != nil {
		s.log.Error("dispatch run failed", slog.String("error", err.Error()))
		return
	}

	s.log.Info("dispatch run complete",
		slog.Int("processed", stats.Processed),
		slog.Int("notified", stats.Notified),
		slog.Int("skipped", stats.Skipped),
		slog.Int("cooldown_skipped", stats.CooldownSkipped),
		slog.Int("expired", stats.Expired),
		slog.Int("failed", stats.Failed),
		slog.Duration("elapsed", time.Since(start)))
}
