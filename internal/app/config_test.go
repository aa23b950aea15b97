package app

import (
	"bytes"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("api", flag.ContinueOnError)

	cfg, displayVersion, err := parseConfig(fs, nil)

	require.NoError(t, err)
	assert.False(t, displayVersion)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "atomic", cfg.SeatLockStrategy)
	assert.True(t, cfg.ReservationDegradedMode)
	assert.Equal(t, 15*time.Minute, cfg.DB.MaxIdleTime)
}

func TestParseConfig_Overrides(t *testing.T) {
	fs := flag.NewFlagSet("api", flag.ContinueOnError)

	cfg, displayVersion, err := parseConfig(fs, []string{
		"-port", "8080",
		"-seat-lock-strategy", "sequential",
		"-reservation-degraded-mode=false",
		"-version",
	})

	require.NoError(t, err)
	assert.True(t, displayVersion)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sequential", cfg.SeatLockStrategy)
	assert.False(t, cfg.ReservationDegradedMode)
}

func TestParseConfig_SeatLockStrategyUsage(t *testing.T) {
	var out bytes.Buffer
	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(&out)

	_, _, err := parseConfig(fs, nil)
	require.NoError(t, err)

	fs.PrintDefaults()

	assert.Contains(t, out.String(), "exactly one caller")
	assert.Contains(t, out.String(), "never both win")
}
