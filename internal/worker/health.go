package worker

import (
	"context"
	"time"
)

// HealthChecker pings the store and records the result.
type HealthChecker interface {
	CheckHealth(ctx context.Context) bool
}

// HealthPoller checks store connectivity once at start and then on every
// tick until its context is cancelled.
type HealthPoller struct {
	checker  HealthChecker
	interval time.Duration
	timeout  time.Duration
}

func NewHealthPoller(checker HealthChecker, interval, timeout time.Duration) *HealthPoller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}
	return &HealthPoller{checker: checker, interval: interval, timeout: timeout}
}

// Run blocks until ctx is done and always returns nil.
func (p *HealthPoller) Run(ctx context.Context) error {
	p.check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.check(ctx)
		}
	}
}

func (p *HealthPoller) check(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	p.checker.CheckHealth(cctx)
}
