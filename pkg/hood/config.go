package hood

import (
	"time"

	"github.com/mcuadros/go-defaults"
)

// Config holds per-session tunables. It is fixed for the session's lifetime
// except for ImmediateRefresh, which is mutable through
// Session.SetImmediateRefresh.
type Config struct {
	// PollInterval is the cadence of periodic state reads.
	PollInterval time.Duration `default:"18s"`

	// ImmediateRefresh triggers an out-of-cycle state read right after a
	// successful command instead of waiting for the next poll tick.
	ImmediateRefresh bool `default:"true"`

	// MaxConnectAttempts bounds one connect/reconnect cycle. Exhausting it
	// parks the session in StateFailed until an explicit reconnect.
	MaxConnectAttempts int `default:"5"`

	// BackoffBase is the first reconnect delay; it doubles per attempt.
	BackoffBase time.Duration `default:"1s"`

	// BackoffMax caps the exponential reconnect delay.
	BackoffMax time.Duration `default:"30s"`

	// OperationTimeout bounds a single poll tick or radio operation.
	OperationTimeout time.Duration `default:"15s"`
}

// DefaultConfig returns a Config populated from the default tags.
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}
