package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
)

func TestParseTimeframe(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]models.Timeframe{
		"1m": models.M1, "M1": models.M1,
		"5m": models.M5, " m5 ": models.M5, "candle5m": models.M5,
		"15m": models.M15, "M15": models.M15,
	} {
		got, err := ParseTimeframe(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseTimeframe("1h")
	assert.Error(t, err)
}

func TestRoundToTick(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.23, RoundDownToTick(1.2399, 0.01), 1e-12)
	assert.InDelta(t, 1.24, RoundUpToTick(1.2301, 0.01), 1e-12)
	// значения уже на сетке не сдвигаются из-за float-шума
	assert.InDelta(t, 101.9, RoundDownToTick(101.9, 0.01), 1e-9)
	assert.InDelta(t, 98.1, RoundUpToTick(98.1, 0.01), 1e-9)
	assert.Equal(t, 1.23456, RoundDownToTick(1.23456, 0))
}
