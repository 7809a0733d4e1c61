package gatt

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/sirupsen/logrus"
)

// DeviceFactory creates ble.Device instances (can be overridden in tests).
var DeviceFactory = func() (ble.Device, error) {
	dev, err := linux.NewDevice()
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			return nil, fmt.Errorf("insufficient permissions for HCI access - run with CAP_NET_ADMIN or as root: %w", err)
		}
		return nil, err
	}
	return dev, nil
}

// BLEDialer dials hoods over a shared HCI adapter. The adapter is created
// lazily on first use and reused for subsequent dials; each Link owns only
// its connection, never the adapter.
type BLEDialer struct {
	logger *logrus.Logger

	mu     sync.Mutex
	device ble.Device
}

// NewBLEDialer creates a Dialer backed by the host's Bluetooth adapter.
func NewBLEDialer(logger *logrus.Logger) *BLEDialer {
	if logger == nil {
		logger = logrus.New()
	}
	return &BLEDialer{logger: logger}
}

func (d *BLEDialer) adapter() (ble.Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device != nil {
		return d.device, nil
	}
	dev, err := DeviceFactory()
	if err != nil {
		return nil, err
	}
	d.device = dev
	return dev, nil
}

// Dial connects to the hood at address, discovers its GATT profile and
// validates the expected service and characteristics.
func (d *BLEDialer) Dial(ctx context.Context, address string) (Link, error) {
	dev, err := d.adapter()
	if err != nil {
		return nil, unreachable(err)
	}

	d.logger.WithField("address", address).Debug("Dialing hood")

	client, err := dev.Dial(ctx, ble.NewAddr(address))
	if err != nil {
		return nil, unreachable(err)
	}

	profile, err := withContext(ctx, func() (*ble.Profile, error) {
		return client.DiscoverProfile(true)
	})
	if err != nil {
		_ = client.CancelConnection()
		return nil, unreachable(err)
	}

	chars, err := hoodCharacteristics(profile)
	if err != nil {
		_ = client.CancelConnection()
		return nil, err
	}

	d.logger.WithFields(logrus.Fields{
		"address":  address,
		"services": len(profile.Services),
	}).Info("Hood connected")

	return &bleLink{client: client, chars: chars, logger: d.logger}, nil
}

// hoodCharacteristics locates the hood service and maps its characteristics
// by normalized UUID.
func hoodCharacteristics(profile *ble.Profile) (map[string]*ble.Characteristic, error) {
	serviceUUID := ble.MustParse(ServiceHood)

	var service *ble.Service
	for _, s := range profile.Services {
		if s.UUID.Equal(serviceUUID) {
			service = s
			break
		}
	}
	if service == nil {
		return nil, &MismatchError{Resource: "service", UUID: ServiceHood}
	}

	chars := make(map[string]*ble.Characteristic, len(service.Characteristics))
	for _, c := range service.Characteristics {
		chars[NormalizeUUID(c.UUID.String())] = c
	}
	for _, uuid := range []string{CharStatus, CharCommand, CharBrightness, CharColor} {
		if _, ok := chars[NormalizeUUID(uuid)]; !ok {
			return nil, &MismatchError{Resource: "characteristic", UUID: uuid}
		}
	}
	return chars, nil
}

type bleLink struct {
	client ble.Client
	chars  map[string]*ble.Characteristic
	logger *logrus.Logger

	closeOnce sync.Once
	closeErr  error
}

func (l *bleLink) characteristic(uuid string) (*ble.Characteristic, error) {
	c, ok := l.chars[NormalizeUUID(uuid)]
	if !ok {
		return nil, &MismatchError{Resource: "characteristic", UUID: uuid}
	}
	return c, nil
}

func (l *bleLink) Read(ctx context.Context, characteristic string) ([]byte, error) {
	c, err := l.characteristic(characteristic)
	if err != nil {
		return nil, err
	}
	data, err := withContext(ctx, func() ([]byte, error) {
		return l.client.ReadCharacteristic(c)
	})
	if err != nil {
		return nil, unreachable(err)
	}
	l.logger.WithFields(logrus.Fields{
		"characteristic": NormalizeUUID(characteristic),
		"bytes":          len(data),
	}).Debug("Characteristic read")
	return data, nil
}

func (l *bleLink) Write(ctx context.Context, characteristic string, payload []byte) error {
	c, err := l.characteristic(characteristic)
	if err != nil {
		return err
	}
	_, err = withContext(ctx, func() ([]byte, error) {
		return nil, l.client.WriteCharacteristic(c, payload, false)
	})
	if err != nil {
		return unreachable(err)
	}
	l.logger.WithFields(logrus.Fields{
		"characteristic": NormalizeUUID(characteristic),
		"bytes":          len(payload),
	}).Debug("Characteristic written")
	return nil
}

func (l *bleLink) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.client.CancelConnection()
	})
	return l.closeErr
}

// withContext runs a blocking GATT operation in a goroutine so callers can
// give up on ctx expiry. The operation itself keeps running until the stack
// times it out; the link is torn down by the caller after a failure, which
// bounds the leak to one goroutine per reconnect.
func withContext[T any](ctx context.Context, op func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := op()
		done <- result{value, err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-done:
		return res.value, res.err
	}
}
