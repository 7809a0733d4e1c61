// Package scanner discovers range hoods over BLE advertisements and derives
// their immutable DeviceIdentity, including the protocol classification that
// gates legacy devices.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cornelk/hashmap"
	blelib "github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/hoodlink/hoodlink/pkg/gatt"
	"github.com/hoodlink/hoodlink/pkg/hood"
)

// Discovery is one sighted device.
type Discovery struct {
	Identity    hood.DeviceIdentity
	RSSI        int
	Connectable bool
	LastSeen    time.Time
}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	Duration        time.Duration
	DuplicateFilter bool

	// All includes devices that do not classify as any hood dialect; by
	// default only modern and legacy hoods are reported.
	All bool

	AllowList []string
	BlockList []string
}

// DefaultScanOptions returns default scanning options.
func DefaultScanOptions() *ScanOptions {
	return &ScanOptions{
		Duration:        10 * time.Second,
		DuplicateFilter: true,
	}
}

// Scanner handles BLE hood discovery.
type Scanner struct {
	devices *hashmap.Map[string, Discovery]
	logger  *logrus.Logger

	scanOptions *ScanOptions
	onDiscovery func(Discovery)
}

// NewScanner creates a new hood scanner.
func NewScanner(logger *logrus.Logger) *Scanner {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scanner{logger: logger}
}

// Scan performs BLE discovery with the provided options. onDiscovery, if not
// nil, is invoked for every newly sighted hood while the scan runs.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions, onDiscovery func(Discovery)) (map[string]Discovery, error) {
	s.devices = hashmap.New[string, Discovery]()

	if opts == nil {
		opts = DefaultScanOptions()
	}
	s.scanOptions = opts
	s.onDiscovery = onDiscovery
	defer func() {
		s.scanOptions = nil
		s.onDiscovery = nil
	}()

	s.logger.WithField("duration", opts.Duration).Info("Starting hood scan...")

	dev, err := gatt.DeviceFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to create BLE device: %w", err)
	}

	scanCtx, cancel := context.WithTimeout(ctx, opts.Duration)
	defer cancel()

	err = dev.Scan(scanCtx, !opts.DuplicateFilter, s.handleAdvertisement)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	s.logger.WithField("device_count", s.devices.Len()).Info("Hood scan completed")

	devices := make(map[string]Discovery, s.devices.Len())
	s.devices.Range(func(key string, value Discovery) bool {
		devices[key] = value
		return true
	})
	return devices, nil
}

// handleAdvertisement updates an existing sighting or records a new one.
func (s *Scanner) handleAdvertisement(adv blelib.Advertisement) {
	addr := adv.Addr().String()
	if !s.shouldIncludeDevice(addr, s.scanOptions) {
		return
	}

	uuids := make([]string, 0, len(adv.Services()))
	for _, u := range adv.Services() {
		uuids = append(uuids, u.String())
	}

	prev, existing := s.devices.Get(addr)
	name := adv.LocalName()
	if name == "" && existing {
		// Scan responses often omit the name; keep the one we saw first.
		name = prev.Identity.Name
	}

	d := Discovery{
		Identity:    hood.NewDeviceIdentity(addr, name, uuids),
		RSSI:        adv.RSSI(),
		Connectable: adv.Connectable(),
		LastSeen:    time.Now(),
	}
	if !s.scanOptions.All && d.Identity.Protocol == hood.ProtocolUnknown {
		return
	}
	s.devices.Set(addr, d)

	if !existing {
		s.logger.WithFields(logrus.Fields{
			"device":   d.Identity.Name,
			"address":  d.Identity.Address,
			"protocol": d.Identity.Protocol.String(),
			"rssi":     d.RSSI,
		}).Info("Discovered hood")
		if s.onDiscovery != nil {
			s.onDiscovery(d)
		}
	}
}

// shouldIncludeDevice applies allow/block filters.
func (s *Scanner) shouldIncludeDevice(addr string, opts *ScanOptions) bool {
	for _, blocked := range opts.BlockList {
		if addr == blocked {
			return false
		}
	}
	if len(opts.AllowList) > 0 {
		for _, a := range opts.AllowList {
			if addr == a {
				return true
			}
		}
		return false
	}
	return true
}
