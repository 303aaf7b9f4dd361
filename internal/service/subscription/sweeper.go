package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
)

// Sweeper periodically deletes subscriptions whose expiry has passed.
type Sweeper struct {
	cron     *cron.Cron
	store    domain.Store[domain.Subscription]
	schedule string
	now      func() time.Time
	logger   *slog.Logger
}

// NewSweeper creates a sweeper running on the given cron schedule.
func NewSweeper(store domain.Store[domain.Subscription], schedule string, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		store:    store,
		schedule: schedule,
		now:      time.Now,
		logger:   logger.With("component", "subscription-sweeper"),
	}
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.logger.Warn("subscription sweep failed", "error", err)
		}
	})
	if err != nil {
		return domain.ErrValidation("invalid sweep schedule %q: %v", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("subscription sweeper started", "schedule", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("subscription sweeper stopped")
}

// Sweep deletes every expired subscription and returns how many were
// removed. Subscriptions without an expiry never expire.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	expired, err := s.store.Find(ctx, filter.Query{
		Where: filter.Cmp{Field: "expires", Op: filter.Lt, Value: s.now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	var errs []error
	n := 0
	for i := range expired {
		ok, err := s.store.Delete(ctx, expired[i].ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			n++
		}
	}
	if n > 0 {
		s.logger.Info("expired subscriptions removed", "count", n)
	}
	return n, errors.Join(errs...)
}
