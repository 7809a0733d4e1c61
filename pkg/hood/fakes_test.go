package hood

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hoodlink/hoodlink/pkg/gatt"
)

const testAddress = "aa:bb:cc:dd:ee:ff"

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("test", true)
}

func testConfig() *Config {
	return &Config{
		PollInterval:       10 * time.Millisecond,
		ImmediateRefresh:   true,
		MaxConnectAttempts: 3,
		BackoffBase:        10 * time.Millisecond,
		BackoffMax:         40 * time.Millisecond,
		OperationTimeout:   time.Second,
	}
}

// stateRecord returns the canned device state the fake link serves: fan
// level 2, both lights on, bottom at 40% and top at 80%, top color wire
// 0x80.
func stateRecord(characteristic string) []byte {
	switch characteristic {
	case gatt.CharStatus:
		return []byte{0x00, 0x10, 0x10, 0x00, 0x10, 0x00}
	case gatt.CharBrightness:
		return []byte{0x00, 0x00, 0x00, 0x00, 0x66, 0xCC}
	case gatt.CharColor:
		return []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80}
	default:
		return nil
	}
}

type writeOp struct {
	characteristic string
	payload        []byte
}

// fakeLink is a scriptable gatt.Link. With no hooks set it serves
// stateRecord reads and accepts all writes.
type fakeLink struct {
	mu      sync.Mutex
	onRead  func(characteristic string) ([]byte, error)
	onWrite func(characteristic string, payload []byte) error
	reads   []string
	writes  []writeOp
	closes  int
}

func (l *fakeLink) Read(ctx context.Context, characteristic string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.reads = append(l.reads, characteristic)
	fn := l.onRead
	l.mu.Unlock()
	if fn != nil {
		return fn(characteristic)
	}
	return stateRecord(characteristic), nil
}

func (l *fakeLink) Write(ctx context.Context, characteristic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	l.mu.Lock()
	l.writes = append(l.writes, writeOp{characteristic: characteristic, payload: cp})
	fn := l.onWrite
	l.mu.Unlock()
	if fn != nil {
		return fn(characteristic, payload)
	}
	return nil
}

func (l *fakeLink) Close() error {
	l.mu.Lock()
	l.closes++
	l.mu.Unlock()
	return nil
}

func (l *fakeLink) readCount(characteristic string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.reads {
		if c == characteristic {
			n++
		}
	}
	return n
}

func (l *fakeLink) writeLog() []writeOp {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]writeOp, len(l.writes))
	copy(out, l.writes)
	return out
}

func (l *fakeLink) closeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes
}

// fakeDialer hands out fakeLinks and can be scripted to fail the first N
// dials or every dial.
type fakeDialer struct {
	mu        sync.Mutex
	failFirst int   // fail this many dials, then succeed
	stickyErr error // when set, every dial fails with it
	makeLink  func() *fakeLink
	dials     int
	links     []*fakeLink
}

func (d *fakeDialer) Dial(ctx context.Context, address string) (gatt.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.stickyErr != nil {
		return nil, d.stickyErr
	}
	if d.failFirst > 0 {
		d.failFirst--
		return nil, fmt.Errorf("%w: le connection timed out", gatt.ErrDeviceUnreachable)
	}
	link := &fakeLink{}
	if d.makeLink != nil {
		link = d.makeLink()
	}
	d.links = append(d.links, link)
	return link, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) setSticky(err error) {
	d.mu.Lock()
	d.stickyErr = err
	d.mu.Unlock()
}

func (d *fakeDialer) lastLink() *fakeLink {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.links) == 0 {
		return nil
	}
	return d.links[len(d.links)-1]
}

// newTestManager builds a connection manager with the jitter disabled and
// sleeps recorded instead of slept.
func newTestManager(cfg *Config, dialer gatt.Dialer) (*ConnectionManager, *[]time.Duration) {
	m := newConnectionManager(testAddress, dialer, cfg, testLogger())
	sleeps := &[]time.Duration{}
	m.jitter = func(d time.Duration) time.Duration { return d }
	m.sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return ctx.Err()
	}
	return m, sleeps
}

func modernIdentity() DeviceIdentity {
	return NewDeviceIdentity(testAddress, "SKE Hood", []string{gatt.ServiceHood})
}

// newTestSession builds a session over a fake dialer, with a no-op sleep so
// reconnect cycles run instantly.
func newTestSession(dialer *fakeDialer, cfg *Config) *Session {
	if cfg == nil {
		cfg = testConfig()
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := NewSession(modernIdentity(), dialer, cfg, logger)
	s.conn.jitter = func(d time.Duration) time.Duration { return d }
	s.conn.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return s
}
