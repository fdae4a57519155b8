package application

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/ledger"
)

// AccrualScheduler credits per-second income to every logged-in user that
// owns at least one order. Suspended periods are never backfilled.
type AccrualScheduler struct {
	svc      *Service
	interval time.Duration
	cron     *cron.Cron
}

func NewAccrualScheduler(svc *Service, interval time.Duration) *AccrualScheduler {
	if interval < time.Second {
		interval = time.Second
	}
	return &AccrualScheduler{svc: svc, interval: interval}
}

// Start runs the tick loop until ctx is cancelled or Stop is called.
func (a *AccrualScheduler) Start(ctx context.Context) {
	a.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	a.cron.Schedule(cron.Every(a.interval), cron.FuncJob(func() {
		if _, err := a.RunOnce(ctx); err != nil {
			a.svc.Logger.WithError(err).Warn("accrual tick failed")
		}
	}))
	a.cron.Start()
	a.svc.Logger.WithField("interval", a.interval.String()).Info("accrual scheduler started")

	go func() {
		<-ctx.Done()
		a.Stop()
	}()
}

// Stop halts scheduling and waits for a running tick to finish.
func (a *AccrualScheduler) Stop() {
	if a.cron == nil {
		return
	}
	<-a.cron.Stop().Done()
}

// RunOnce applies one interval worth of ticks and returns the number of
// users credited.
func (a *AccrualScheduler) RunOnce(ctx context.Context) (int, error) {
	s := a.svc
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	phones, err := s.Sessions.ActivePhones(ctx)
	if err != nil {
		return 0, err
	}
	econ, err := s.economics(ctx)
	if err != nil {
		return 0, err
	}

	ticks := int(a.interval / time.Second)
	credited := make([]*entity.User, 0, len(phones))
	for _, phone := range phones {
		u, err := s.Users.Get(ctx, phone)
		if err != nil {
			s.Logger.WithError(err).WithField("phone", phone).Debug("accrual skipped user")
			continue
		}
		if !u.HasOrders() {
			continue
		}
		for i := 0; i < ticks; i++ {
			ledger.Tick(u, econ)
		}
		credited = append(credited, u)
	}

	if len(credited) > 0 {
		if err := s.Users.UpsertMany(ctx, credited); err != nil {
			return 0, err
		}
	}

	if s.Metrics != nil {
		s.Metrics.AccrualRuns.Inc()
		s.Metrics.AccrualUsers.Set(float64(len(credited)))
		s.Metrics.AccrualDuration.Observe(time.Since(start).Seconds())
	}
	return len(credited), nil
}
