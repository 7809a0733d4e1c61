package hood

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Poller issues periodic state reads on a fixed cadence. Each tick runs
// under a bounded timeout so a wedged link can never stall the loop, and
// the loop is restartable: Stop waits for the running tick to yield before
// returning.
type Poller struct {
	interval time.Duration
	timeout  time.Duration
	tick     func(ctx context.Context)
	log      *logrus.Entry

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func newPoller(interval, timeout time.Duration, tick func(ctx context.Context), log *logrus.Entry) *Poller {
	return &Poller{
		interval: interval,
		timeout:  timeout,
		tick:     tick,
		log:      log,
	}
}

// Start launches the polling loop. The first tick fires immediately so a
// fresh session has state before the first full interval elapses. No-op if
// already running.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	p.log.WithField("interval", p.interval).Debug("Polling started")
	go p.run(ctx, done)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tickOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tickOnce(ctx)
		}
	}
}

func (p *Poller) tickOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	tickCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	p.tick(tickCtx)
}

// Stop halts the loop and waits for an in-flight tick to finish so no
// dangling operation outlives the poller. Safe to call when not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.log.Debug("Polling stopped")
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}
