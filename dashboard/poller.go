package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often the task list is re-fetched.
const DefaultPollInterval = 500 * time.Second

// Poller refreshes a dashboard on a fixed interval until stopped.
type Poller struct {
	dashboard *Dashboard
	interval  time.Duration
	onResult  func(error)
	wg        sync.WaitGroup
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewPoller creates a poller. onResult, if set, is called after every
// refresh attempt.
func (d *Dashboard) NewPoller(interval time.Duration, onResult func(error)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		dashboard: d,
		interval:  interval,
		onResult:  onResult,
		stop:      make(chan struct{}),
	}
}

// Start begins polling in the background.
func (p *Poller) Start(ctx context.Context) {
	p.dashboard.logger.Debug("starting poller", zap.Duration("interval", p.interval))
	p.wg.Add(1)
	go p.run(ctx)
}

// Stop ends polling and waits for an in-flight refresh to finish.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := p.dashboard.Refresh(ctx)
			if err != nil {
				p.dashboard.logger.Warn("poll refresh failed", zap.Error(err))
			}
			if p.onResult != nil {
				p.onResult(err)
			}
		}
	}
}
