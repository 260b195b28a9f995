package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CouponExpirer deactivates coupons past their expiry
type CouponExpirer interface {
	ExpireDue(ctx context.Context) (int64, error)
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs background maintenance on a cron schedule
type Scheduler struct {
	sched   *cron.Cron
	coupons CouponExpirer
	timeout time.Duration
}

// New registers the coupon sweep under schedule. Nothing runs until Start.
func New(schedule string, coupons CouponExpirer) (*Scheduler, error) {
	s := &Scheduler{
		sched:   cron.New(cron.WithLocation(time.UTC), cron.WithParser(cronParser)),
		coupons: coupons,
		timeout: time.Minute,
	}
	if _, err := s.sched.AddFunc(schedule, s.RunCouponSweep); err != nil {
		return nil, fmt.Errorf("invalid coupon sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start launches the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.sched.Stop().Done()
}

// RunCouponSweep deactivates every coupon whose expiry has passed
func (s *Scheduler) RunCouponSweep() {
	defer func() {
		if err := recover(); err != nil {
			logrus.WithField("panic", err).Error("Coupon sweep panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.coupons.ExpireDue(ctx)
	if err != nil {
		logrus.WithError(err).Error("Coupon sweep failed")
		return
	}
	logrus.WithField("deactivated", n).Debug("Coupon sweep finished")
}
