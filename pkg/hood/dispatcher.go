package hood

import (
	"context"

	"github.com/hoodlink/hoodlink/pkg/gatt"
	"github.com/hoodlink/hoodlink/pkg/protocol"
)

// Submit validates, encodes and writes one command, then triggers an
// out-of-cycle state read when immediate refresh is enabled. Transport
// errors surface unchanged — reconnect policy lives in the connection
// manager, and validation errors are never retried.
func (s *Session) Submit(ctx context.Context, cmd protocol.Command) error {
	if err := s.guard(); err != nil {
		return err
	}

	s.log.WithField("command", cmd.String()).Info("Submitting command")

	if s.conn.State() != StateConnected {
		if err := s.conn.Connect(ctx); err != nil {
			return err
		}
	}

	if err := s.dispatch(ctx, cmd); err != nil {
		return err
	}

	if s.immediateRefresh.Load() {
		if _, err := s.refresh(ctx); err != nil {
			// The command was applied; a failed refresh only delays the
			// cache update until the next poll tick.
			s.log.WithError(err).Warn("Post-command refresh failed")
		}
	}
	return nil
}

func (s *Session) dispatch(ctx context.Context, cmd protocol.Command) error {
	switch cmd.Kind() {
	case protocol.KindSetLightColorTemp:
		// Color temperature rides on the color characteristic as a
		// read-modify-write so the other zone and any unknown bytes are
		// preserved verbatim.
		record, err := s.conn.Read(ctx, gatt.CharColor)
		if err != nil {
			return err
		}
		updated, err := protocol.UpdateColorRecord(record, cmd.Zone(), cmd.Kelvin())
		if err != nil {
			return err
		}
		return s.conn.Write(ctx, gatt.CharColor, updated)

	default:
		// Light frames carry both zone levels; the latest snapshot supplies
		// the untouched zone. A zero snapshot is safe: it encodes the other
		// zone as off, which matches a hood we have never read.
		current, _ := s.Snapshot()
		frame, err := protocol.Encode(cmd, current)
		if err != nil {
			return err
		}
		return s.conn.Write(ctx, gatt.CharCommand, frame)
	}
}
