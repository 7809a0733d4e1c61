package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hoodlink/hoodlink/pkg/gatt"
	"github.com/hoodlink/hoodlink/pkg/hood"
	"github.com/hoodlink/hoodlink/scanner"
)

// resolveIdentity classifies the device at address. By default it runs a
// short discovery scan so the advertised name and service UUIDs drive the
// protocol classification; assumeModern skips the scan and trusts the
// caller.
func resolveIdentity(ctx context.Context, logger *logrus.Logger, address string, assumeModern bool, scanDuration time.Duration) (hood.DeviceIdentity, error) {
	if assumeModern {
		identity := hood.NewDeviceIdentity(address, "", []string{gatt.ServiceHood})
		return identity, nil
	}

	s := scanner.NewScanner(logger)
	opts := scanner.DefaultScanOptions()
	opts.Duration = scanDuration
	opts.All = true
	opts.AllowList = []string{address}

	found, err := s.Scan(ctx, opts, nil)
	if err != nil {
		return hood.DeviceIdentity{}, err
	}
	d, ok := found[address]
	if !ok {
		return hood.DeviceIdentity{}, fmt.Errorf("device %s not seen within %s; is the hood advertising?", address, scanDuration)
	}
	return d.Identity, nil
}

// newSession wires a session for one command invocation: logger from flags,
// config file, identity resolution, go-ble dialer.
func newSession(cmd *cobra.Command, address string, assumeModern bool) (*hood.Session, *logrus.Logger, error) {
	logger, err := configureLogger(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadSessionConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	identity, err := resolveIdentity(cmd.Context(), logger, address, assumeModern, 5*time.Second)
	if err != nil {
		return nil, nil, err
	}

	dialer := gatt.NewBLEDialer(logger)
	return hood.NewSession(identity, dialer, cfg, logger), logger, nil
}
