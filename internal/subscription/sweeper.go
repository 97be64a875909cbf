// AngelaMos | 2026
// sweeper.go

package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/angelamos/questledger/internal/cache"
	"github.com/angelamos/questledger/internal/config"
	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/user"
)

// Sweeper expires lapsed subscriptions on a schedule, independent of
// the request-driven paths. Each batch runs in its own transaction.
type Sweeper struct {
	store     Store
	clock     core.Clock
	cfg       config.SubscriptionConfig
	cache     cache.Invalidator
	scheduler gocron.Scheduler

	mu        sync.Mutex
	lastRun   time.Time
	lastSwept int
	lastErr   error
}

func NewSweeper(
	store Store,
	clock core.Clock,
	cfg config.SubscriptionConfig,
	invalidator cache.Invalidator,
) *Sweeper {
	if invalidator == nil {
		invalidator = cache.Noop{}
	}
	return &Sweeper{
		store: store,
		clock: clock,
		cfg:   cfg,
		cache: invalidator,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.cfg.SweepInterval),
		gocron.NewTask(func() {
			if err := s.SweepOnce(ctx); err != nil {
				slog.Error("subscription sweep failed", "error", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("schedule sweep job: %w", err)
	}

	scheduler.Start()
	s.scheduler = scheduler

	slog.Info("subscription sweeper started",
		"interval", s.cfg.SweepInterval,
		"batch", s.cfg.SweepBatch,
	)

	return nil
}

func (s *Sweeper) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

// LastSweep reports when the sweeper last ran, how many subscriptions
// it expired, and whether the run failed. The zero time means no sweep
// has completed yet.
func (s *Sweeper) LastSweep() (time.Time, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastSwept, s.lastErr
}

// SweepOnce expires one batch of subscriptions whose renewal date has
// passed and demotes the affected users back to the free tier.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	count, err := s.sweep(ctx)

	s.mu.Lock()
	s.lastRun = s.clock.Now()
	s.lastSwept = count
	s.lastErr = err
	s.mu.Unlock()

	return err
}

func (s *Sweeper) sweep(ctx context.Context) (int, error) {
	var swept []string

	err := s.store.InTx(ctx, func(r Repository) error {
		due, err := r.ListExpirable(ctx, s.clock.Now(), s.cfg.SweepBatch)
		if err != nil {
			return err
		}

		for _, sub := range due {
			expired, err := r.Expire(ctx, sub.SessionID)
			if err != nil {
				return err
			}
			if !expired {
				continue
			}

			if err := r.UpdateUserTier(ctx, sub.Wallet, user.TierFree); err != nil {
				return err
			}

			swept = append(swept, sub.Wallet)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(swept) > 0 {
		keys := make([]string, 0, len(swept))
		for _, wallet := range swept {
			keys = append(keys, cache.UserKey(wallet))
		}
		s.cache.Invalidate(ctx, keys...)

		slog.Info("subscriptions expired", "count", len(swept))
	}

	return len(swept), nil
}
