package poller

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
)

const defaultInterval = 24 * time.Hour

// FreshnessRunner is the slice of the freshness usecase the loop drives.
type FreshnessRunner interface {
	RunOnce(ctx context.Context) (usecase.CheckResult, error)
}

// Poller runs the freshness check on a fixed interval. One cycle fires
// immediately on Start so a freshly deployed instance does not wait a
// full day for its first check.
type Poller struct {
	runner   FreshnessRunner
	logger   *logging.Logger
	interval time.Duration

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the polling loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the loop has had a recent success and is not
// failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

func New(runner FreshnessRunner, logger *logging.Logger, interval time.Duration) *Poller {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		runner:   runner,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins polling until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	p.ticker = time.NewTicker(p.interval)

	go func() {
		p.logger.Info("poller started", "interval", p.interval.String())
		p.runCycle(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				p.logger.Info("poller stopped")
				return
			case <-p.done:
				p.stopTicker()
				p.logger.Info("poller stopped")
				return
			case <-p.ticker.C:
				p.runCycle(ctx)
			}
		}
	}()
}

// Stop halts the polling loop. Safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.stopTicker()
	})
}

func (p *Poller) runCycle(ctx context.Context) {
	start := time.Now()
	p.recordAttempt(start)

	result, err := p.runner.RunOnce(ctx)
	if err != nil {
		p.recordFailure(err, start)
		p.logger.ErrorContext(ctx, "freshness cycle failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}

	p.recordSuccess(start)
	p.logger.InfoContext(ctx, "freshness cycle finished",
		"fixture_id", result.FixtureID,
		"refreshed", result.Refreshed,
		"message", result.Message,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (p *Poller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the loop's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
