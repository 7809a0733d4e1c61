package hood

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hoodlink/hoodlink/pkg/gatt"
)

// ConnectionManager owns the BLE link of one session: connect, validate,
// serialize radio operations, reconnect with bounded exponential backoff,
// disconnect. One manager per physical device, never shared.
type ConnectionManager struct {
	address string
	dialer  gatt.Dialer
	cfg     *Config
	log     *logrus.Entry

	// opMu serializes all radio operations. GATT transactions are not safe
	// to interleave on one link, so concurrent callers queue here in
	// submission order.
	opMu sync.Mutex

	mu     sync.Mutex // guards state, link, cancel
	state  ConnectionState
	link   gatt.Link
	cancel context.CancelFunc // cancels an in-flight connect or backoff wait

	// Test seams; real clock and jitter by default.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(d time.Duration) time.Duration
	rng    *rand.Rand
}

func newConnectionManager(address string, dialer gatt.Dialer, cfg *Config, log *logrus.Entry) *ConnectionManager {
	m := &ConnectionManager{
		address: address,
		dialer:  dialer,
		cfg:     cfg,
		log:     log,
		state:   StateDisconnected,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	m.sleep = func(ctx context.Context, d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
	// Jitter spreads reconnects of multiple hoods over [d/2, d].
	m.jitter = func(d time.Duration) time.Duration {
		return d/2 + time.Duration(m.rng.Int63n(int64(d/2)+1))
	}
	return m
}

// State reports the current connection state.
func (m *ConnectionManager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *ConnectionManager) setState(s ConnectionState) {
	m.mu.Lock()
	if m.state != s {
		m.log.WithFields(logrus.Fields{"from": m.state.String(), "to": s.String()}).Debug("Connection state changed")
		m.state = s
	}
	m.mu.Unlock()
}

// Connect establishes the link, running the bounded retry/backoff schedule.
// A manager in StateFailed refuses until Reset is called; a connected
// manager is a no-op.
func (m *ConnectionManager) Connect(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return nil
	case StateFailed:
		m.mu.Unlock()
		return fmt.Errorf("%w: explicit reset required", ErrConnectionExhausted)
	}
	m.mu.Unlock()

	return m.establish(ctx, StateConnecting)
}

// establish runs the dial/backoff loop. Caller holds opMu.
func (m *ConnectionManager) establish(ctx context.Context, via ConnectionState) error {
	attemptCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()
	defer func() {
		cancel()
		m.mu.Lock()
		m.cancel = nil
		m.mu.Unlock()
	}()

	m.setState(via)

	var lastErr error
	for attempt := 1; attempt <= m.cfg.MaxConnectAttempts; attempt++ {
		link, err := m.dialer.Dial(attemptCtx, m.address)
		if err == nil {
			m.mu.Lock()
			if attemptCtx.Err() != nil {
				// Disconnect (or the caller) cancelled while the dial was in
				// flight but the dialer still produced a link. Committing it
				// would resurrect a connection the session believes is
				// released; close it and stay disconnected.
				m.state = StateDisconnected
				m.mu.Unlock()
				_ = link.Close()
				return attemptCtx.Err()
			}
			m.link = link
			m.state = StateConnected
			m.mu.Unlock()
			m.log.WithField("attempt", attempt).Info("Hood link established")
			return nil
		}

		if errors.Is(err, gatt.ErrProtocolMismatch) {
			// Wrong or missing characteristics will not fix themselves;
			// park the session until something external changes.
			m.setState(StateFailed)
			m.log.WithError(err).Error("Device does not speak the expected hood protocol")
			return err
		}
		if attemptCtx.Err() != nil {
			m.setState(StateDisconnected)
			return attemptCtx.Err()
		}

		lastErr = err
		m.log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"max":     m.cfg.MaxConnectAttempts,
		}).Warn("Connect attempt failed")

		if attempt < m.cfg.MaxConnectAttempts {
			delay := m.jitter(m.backoff(attempt))
			if err := m.sleep(attemptCtx, delay); err != nil {
				m.setState(StateDisconnected)
				return err
			}
		}
	}

	m.setState(StateFailed)
	return fmt.Errorf("%w: %d attempts against %s, last error: %v",
		ErrConnectionExhausted, m.cfg.MaxConnectAttempts, m.address, lastErr)
}

// backoff returns the undithered delay before the given attempt's retry:
// base doubled per attempt, capped at BackoffMax.
func (m *ConnectionManager) backoff(attempt int) time.Duration {
	d := m.cfg.BackoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= m.cfg.BackoffMax {
			return m.cfg.BackoffMax
		}
	}
	if d > m.cfg.BackoffMax {
		return m.cfg.BackoffMax
	}
	return d
}

// Read reads a characteristic through the serialized operation queue. A
// transport failure triggers one reconnect cycle and a single retry of the
// read; reconnect exhaustion surfaces as ErrConnectionExhausted.
func (m *ConnectionManager) Read(ctx context.Context, characteristic string) ([]byte, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	link, err := m.currentLink()
	if err != nil {
		return nil, err
	}
	data, err := link.Read(ctx, characteristic)
	if err == nil {
		return data, nil
	}
	link, err = m.recover(ctx, err)
	if err != nil {
		return nil, err
	}
	return link.Read(ctx, characteristic)
}

// Write writes a characteristic through the serialized operation queue, with
// the same single reconnect-and-retry behavior as Read.
func (m *ConnectionManager) Write(ctx context.Context, characteristic string, payload []byte) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	link, err := m.currentLink()
	if err != nil {
		return err
	}
	if err = link.Write(ctx, characteristic, payload); err == nil {
		return nil
	}
	link, err = m.recover(ctx, err)
	if err != nil {
		return err
	}
	return link.Write(ctx, characteristic, payload)
}

// currentLink returns the established link or ErrNotConnected. Caller holds
// opMu.
func (m *ConnectionManager) currentLink() (gatt.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected || m.link == nil {
		return nil, fmt.Errorf("%w: hood %s is %s", ErrNotConnected, m.address, m.state)
	}
	return m.link, nil
}

// recover handles a transport failure mid-operation: it tears the link down
// and runs one reconnect cycle, unless the failure was a cancellation or an
// explicit disconnect raced the operation. Caller holds opMu.
func (m *ConnectionManager) recover(ctx context.Context, opErr error) (gatt.Link, error) {
	if errors.Is(opErr, context.Canceled) || errors.Is(opErr, context.DeadlineExceeded) {
		return nil, opErr
	}

	m.mu.Lock()
	if m.state == StateDisconnected {
		// Explicit disconnect closed the link under us; not a failure.
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, opErr)
	}
	link := m.link
	m.link = nil
	m.mu.Unlock()
	if link != nil {
		_ = link.Close()
	}

	m.log.WithError(opErr).Warn("Transport failure, reconnecting")
	if err := m.establish(ctx, StateReconnecting); err != nil {
		return nil, err
	}
	return m.currentLink()
}

// Disconnect releases the link and resets the state machine to
// StateDisconnected. It cancels a pending backoff wait or in-flight connect
// and aborts a blocked read/write by closing the link; it intentionally does
// not take opMu.
func (m *ConnectionManager) Disconnect() error {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	link := m.link
	m.link = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	if link != nil {
		m.log.Debug("Hood link released")
		return link.Close()
	}
	return nil
}

// Reset returns a failed manager to StateDisconnected so Connect may be
// retried. No-op in any other state.
func (m *ConnectionManager) Reset() {
	m.mu.Lock()
	if m.state == StateFailed {
		m.state = StateDisconnected
	}
	m.mu.Unlock()
}
