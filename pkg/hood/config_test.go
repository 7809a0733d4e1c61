package hood

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 18*time.Second, cfg.PollInterval)
	assert.True(t, cfg.ImmediateRefresh)
	assert.Equal(t, 5, cfg.MaxConnectAttempts)
	assert.Equal(t, time.Second, cfg.BackoffBase)
	assert.Equal(t, 30*time.Second, cfg.BackoffMax)
	assert.Equal(t, 15*time.Second, cfg.OperationTimeout)
}
