// Package hood implements the BLE device session for Berbel-style range
// hoods: connection lifecycle with bounded reconnect backoff, periodic state
// polling, command dispatch with optional immediate refresh, and a
// fail-closed gate for legacy devices. A Session is the single object a host
// automation platform holds per physical hood.
package hood

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/hoodlink/hoodlink/pkg/gatt"
	"github.com/hoodlink/hoodlink/pkg/protocol"
)

// Session composes the connection manager, poller and dispatcher for one
// hood. Sessions are independent: nothing is shared across devices, so any
// number of hoods can be driven concurrently.
type Session struct {
	identity DeviceIdentity
	cfg      *Config
	log      *logrus.Entry

	conn   *ConnectionManager
	poller *Poller

	immediateRefresh atomic.Bool

	snapMu   sync.RWMutex
	snapshot protocol.Snapshot
	hasSnap  bool
	failures int

	subMu   sync.Mutex
	subs    map[int]func(protocol.Snapshot)
	nextSub int

	legacyWarn sync.Once
}

// NewSession creates a session for the identified hood using the given
// transport. cfg nil means DefaultConfig; logger nil means a fresh default
// logger.
func NewSession(identity DeviceIdentity, dialer gatt.Dialer, cfg *Config, logger *logrus.Logger) *Session {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	log := logger.WithFields(logrus.Fields{
		"device":   identity.Address,
		"protocol": identity.Protocol.String(),
	})

	s := &Session{
		identity: identity,
		cfg:      cfg,
		log:      log,
		conn:     newConnectionManager(identity.Address, dialer, cfg, log),
		subs:     make(map[int]func(protocol.Snapshot)),
	}
	s.immediateRefresh.Store(cfg.ImmediateRefresh)
	s.poller = newPoller(cfg.PollInterval, cfg.OperationTimeout, s.pollTick, log)
	return s
}

// Identity returns the immutable device identity.
func (s *Session) Identity() DeviceIdentity { return s.identity }

// State reports the connection state.
func (s *Session) State() ConnectionState { return s.conn.State() }

// guard refuses all radio traffic for devices that do not speak the modern
// dialect. Logged once per session rather than per refused call.
func (s *Session) guard() error {
	if s.identity.Protocol == ProtocolModern {
		return nil
	}
	err := &UnsupportedProtocolError{
		Name:     s.identity.Name,
		Address:  s.identity.Address,
		Protocol: s.identity.Protocol,
		Reason:   "only the modern binary GATT dialect is supported; commands and polling are disabled",
	}
	s.legacyWarn.Do(func() {
		s.log.WithError(err).Warn("Refusing to drive device")
	})
	return err
}

// Connect establishes the link. An explicit Connect clears a Failed state
// first, making it the "reconnect requested" surface after exhaustion.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.conn.Reset()
	return s.conn.Connect(ctx)
}

// Start begins periodic polling. Refused for legacy/unknown devices.
func (s *Session) Start() error {
	if err := s.guard(); err != nil {
		return err
	}
	s.poller.Start()
	return nil
}

// Stop halts polling without releasing the link.
func (s *Session) Stop() { s.poller.Stop() }

// Disconnect stops polling and releases the BLE link, cancelling any pending
// reconnect backoff.
func (s *Session) Disconnect() error {
	s.poller.Stop()
	return s.conn.Disconnect()
}

// Snapshot returns the latest cached state. ok is false until the first
// successful read. Non-blocking.
func (s *Session) Snapshot() (snap protocol.Snapshot, ok bool) {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snapshot, s.hasSnap
}

// ConsecutiveFailures reports how many state refreshes have failed since the
// last successful one; hosts may surface staleness from it.
func (s *Session) ConsecutiveFailures() int {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.failures
}

// Subscribe registers a callback invoked with every new snapshot. The
// returned function unsubscribes. Callbacks run synchronously on the
// refreshing goroutine and must not block.
func (s *Session) Subscribe(fn func(protocol.Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// SetImmediateRefresh toggles the out-of-cycle state read after commands.
func (s *Session) SetImmediateRefresh(enabled bool) {
	s.immediateRefresh.Store(enabled)
	s.log.WithField("enabled", enabled).Info("Immediate refresh toggled")
}

// ImmediateRefresh reports the current toggle.
func (s *Session) ImmediateRefresh() bool { return s.immediateRefresh.Load() }

// Refresh performs an out-of-cycle state read and returns the fresh
// snapshot.
func (s *Session) Refresh(ctx context.Context) (protocol.Snapshot, error) {
	if err := s.guard(); err != nil {
		return protocol.Snapshot{}, err
	}
	return s.refresh(ctx)
}

// refresh reads the three state records, decodes them and atomically
// replaces the cached snapshot.
func (s *Session) refresh(ctx context.Context) (protocol.Snapshot, error) {
	status, err := s.conn.Read(ctx, gatt.CharStatus)
	if err != nil {
		return protocol.Snapshot{}, s.refreshFailed(err)
	}
	brightness, err := s.conn.Read(ctx, gatt.CharBrightness)
	if err != nil {
		return protocol.Snapshot{}, s.refreshFailed(err)
	}
	colors, err := s.conn.Read(ctx, gatt.CharColor)
	if err != nil {
		return protocol.Snapshot{}, s.refreshFailed(err)
	}

	snap, err := protocol.DecodeState(status, brightness, colors)
	if err != nil {
		// Treated as a transient read error: keep the cache, let the next
		// poll tick retry.
		return protocol.Snapshot{}, s.refreshFailed(err)
	}

	s.snapMu.Lock()
	s.snapshot = snap
	s.hasSnap = true
	s.failures = 0
	s.snapMu.Unlock()

	s.log.WithFields(logrus.Fields{
		"fan":     snap.FanLevel,
		"postrun": snap.PostrunActive,
		"top":     snap.Top.On,
		"bottom":  snap.Bottom.On,
	}).Debug("State refreshed")

	s.publish(snap)
	return snap, nil
}

func (s *Session) refreshFailed(err error) error {
	s.snapMu.Lock()
	s.failures++
	n := s.failures
	s.snapMu.Unlock()
	s.log.WithError(err).WithField("consecutive_failures", n).Warn("State refresh failed")
	return err
}

func (s *Session) publish(snap protocol.Snapshot) {
	s.subMu.Lock()
	fns := make([]func(protocol.Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// pollTick is one cycle of the polling loop: refresh when connected, attempt
// a connect when disconnected, stay quiet when failed (an explicit reconnect
// is required to leave StateFailed).
func (s *Session) pollTick(ctx context.Context) {
	switch s.conn.State() {
	case StateConnected:
		_, _ = s.refresh(ctx)
	case StateDisconnected:
		if err := s.conn.Connect(ctx); err != nil {
			s.log.WithError(err).Warn("Poll-triggered connect failed")
			return
		}
		_, _ = s.refresh(ctx)
	default:
		// Connecting/Reconnecting is already in progress elsewhere; Failed
		// waits for an explicit reconnect.
	}
}
