package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"updatewatch/internal/domain"
)

// ErrCycleInFlight is returned by CheckNow when a poll cycle is already
// running. Cycles never overlap; a busy tick is skipped, not queued.
var ErrCycleInFlight = errors.New("poll cycle already in flight")

// Poller drives the notifier on a fixed interval. One cycle runs at a time;
// ticker ticks that land while a cycle is in flight are dropped and counted.
type Poller struct {
	mu sync.Mutex

	logger   *zap.Logger
	notifier *Notifier
	metrics  domain.Metrics

	interval  time.Duration
	honorFeed bool

	ticker   *time.Ticker
	stop     chan struct{}
	done     chan struct{}
	inFlight bool
}

type PollerOptions struct {
	Logger *zap.Logger
	// Interval between poll cycles. Zero falls back to the default.
	Interval time.Duration
	// HonorFeedInterval lets the announcement feed's fetch_interval_hours
	// shorten or stretch the configured interval.
	HonorFeedInterval bool
	Metrics           domain.Metrics
}

func NewPoller(notifier *Notifier, opts PollerOptions) *Poller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Duration(domain.DefaultPollIntervalHours) * time.Hour
	}
	return &Poller{
		logger:    logger.Named("poller"),
		notifier:  notifier,
		metrics:   metrics,
		interval:  interval,
		honorFeed: opts.HonorFeedInterval,
	}
}

// Start begins the polling loop, running one cycle immediately. Calling
// Start on a running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	ticker := p.ticker
	stop := p.stop
	done := p.done
	p.mu.Unlock()

	go p.run(ticker, stop, done)
}

// Stop halts the loop and waits for the loop goroutine, including any cycle
// it is in the middle of. No timer survives Stop.
func (p *Poller) Stop() {
	done := p.beginStop()
	if done == nil {
		return
	}
	<-done
}

// StopWithTimeout is Stop with a bound on how long to wait for an in-flight
// cycle to finish.
func (p *Poller) StopWithTimeout(timeout time.Duration) error {
	done := p.beginStop()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}

func (p *Poller) beginStop() chan struct{} {
	p.mu.Lock()
	ticker := p.ticker
	if ticker == nil {
		p.mu.Unlock()
		return nil
	}
	stop := p.stop
	done := p.done
	p.ticker = nil
	p.stop = nil
	p.done = nil
	p.mu.Unlock()

	ticker.Stop()
	close(stop)
	return done
}

// CheckNow runs a single cycle outside the timer. It refuses to overlap a
// cycle that is already running.
func (p *Poller) CheckNow(ctx context.Context) (CycleResult, error) {
	if !p.beginCycle() {
		return CycleResult{}, ErrCycleInFlight
	}
	defer p.endCycle()
	return p.notifier.RunCycle(ctx)
}

// Interval reports the currently effective polling interval.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// SetInterval changes the polling interval, restarting the ticker when the
// loop is running.
func (p *Poller) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	p.mu.Lock()
	changed := interval != p.interval
	p.interval = interval
	ticker := p.ticker
	p.mu.Unlock()

	if changed && ticker != nil {
		ticker.Reset(interval)
		p.logger.Info("poll interval changed", zap.Duration("interval", interval))
	}
}

func (p *Poller) run(ticker *time.Ticker, stop chan struct{}, done chan struct{}) {
	defer close(done)

	p.cycle(context.Background())

	for {
		select {
		case <-ticker.C:
			p.cycle(context.Background())
		case <-stop:
			return
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	if !p.beginCycle() {
		p.metrics.ObserveSkippedTick()
		p.logger.Debug("tick skipped, cycle in flight")
		return
	}
	defer p.endCycle()

	result, err := p.notifier.RunCycle(ctx)
	if err != nil {
		p.logger.Warn("poll cycle finished with errors", zap.Error(err))
	}
	if p.honorFeed && result.FeedInterval > 0 {
		p.SetInterval(result.FeedInterval)
	}
}

func (p *Poller) beginCycle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight {
		return false
	}
	p.inFlight = true
	return true
}

func (p *Poller) endCycle() {
	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()
}
