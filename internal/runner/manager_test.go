package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
)

func TestNewSupervisor_Validation(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	_, err := NewSupervisor(nil, Deps{}, cfg)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewSupervisor([]string{"EURUSD", "EURUSD"}, Deps{}, cfg)
	assert.ErrorIs(t, err, models.ErrConfiguration)
	assert.True(t, models.IsFatal(err))

	bad := cfg
	bad.Interval = 0
	_, err = NewSupervisor([]string{"EURUSD"}, Deps{}, bad)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestSupervisor_RunsEverySymbolUntilCancel(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(90)
	f.broker.position = func(int) (models.Position, error) {
		return models.Position{Side: models.SideBuy}, nil
	}
	s, err := NewSupervisor([]string{"EURUSD", "GBPUSD"}, f.deps, f.cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return f.broker.marketCount() == 2 },
		5*time.Second, 5*time.Millisecond, "each symbol opens one position")
	assert.Equal(t, []string{"EURUSD", "GBPUSD"}, s.Running())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop")
	}
	assert.Empty(t, s.Running())
	assert.Equal(t, 2, f.broker.marketCount(), "one entry per symbol, flags are per loop")
}
