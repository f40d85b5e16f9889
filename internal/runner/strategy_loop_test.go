package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
)

type loopFixture struct {
	feed    *fakeFeed
	broker  *fakeBroker
	clock   *fakeClock
	journal *recordingJournal
	cfg     Config
	deps    Deps
}

func newLoopFixture(stoch float64) *loopFixture {
	f := &loopFixture{
		feed: &fakeFeed{
			candles: fallingVolume(),
			tick:    models.Tick{Bid: 99.9, Ask: 100.1},
		},
		broker:  newFakeBroker(),
		clock:   &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		journal: &recordingJournal{},
		cfg:     DefaultConfig(),
	}
	f.cfg.PendingEnabled = false
	f.deps = Deps{
		Feed:    f.feed,
		Broker:  f.broker,
		Signals: newSignals(1, stoch),
		Clock:   f.clock,
		Journal: f.journal,
	}
	return f
}

// runCycles прогоняет n циклов и останавливает наблюдателей позиций.
func (f *loopFixture) runCycles(t *testing.T, l *StrategyLoop, n int) []error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errs := make([]error, 0, n)
	for i := 0; i < n; i++ {
		errs = append(errs, l.cycle(ctx))
	}
	cancel()
	require.NoError(t, l.watchers.Wait())
	return errs
}

func TestStrategyLoop_BuyVoteTwiceOpensOnce(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(90)
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

	errs := f.runCycles(t, l, 2)
	for _, err := range errs {
		assert.NoError(t, err)
	}

	require.Equal(t, 1, f.broker.marketCount())
	o := f.broker.market[0]
	assert.Equal(t, models.SideBuy, o.Side)
	assert.Equal(t, 0.01, o.Volume)
	// ATR=1: SL = ask - 2, TP = bid + 1.5
	assert.InDelta(t, 98.1, o.StopLoss, 1e-6)
	assert.InDelta(t, 101.4, o.TakeProfit, 1e-6)

	assert.True(t, l.State().BuyOpen)
	assert.False(t, l.State().SellOpen)
	require.Len(t, f.journal.opened, 1)
	assert.Equal(t, 51, f.journal.opened[0].Score)
}

func TestStrategyLoop_SellVote(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(10)
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

	f.runCycles(t, l, 1)

	require.Equal(t, 1, f.broker.marketCount())
	o := f.broker.market[0]
	assert.Equal(t, models.SideSell, o.Side)
	assert.InDelta(t, 101.9, o.StopLoss, 1e-6)
	assert.InDelta(t, 98.6, o.TakeProfit, 1e-6)
	assert.True(t, l.State().SellOpen)
}

func TestStrategyLoop_MarginGate(t *testing.T) {
	t.Parallel()

	t.Run("exactly at ratio", func(t *testing.T) {
		f := newLoopFixture(90)
		f.broker.required, f.broker.free = 800, 1000
		l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

		errs := f.runCycles(t, l, 1)
		assert.NoError(t, errs[0])
		assert.Equal(t, 1, f.broker.marketCount())
	})

	t.Run("a cent above", func(t *testing.T) {
		f := newLoopFixture(90)
		f.broker.required, f.broker.free = 800.01, 1000
		l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

		errs := f.runCycles(t, l, 1)
		assert.ErrorIs(t, errs[0], models.ErrInsufficientMargin)
		assert.Zero(t, f.broker.marketCount())
		assert.False(t, l.State().BuyOpen)
	})
}

func TestStrategyLoop_RejectedOrderLeavesFlagUnset(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(90)
	f.broker.submitErr = &models.OrderRejectedError{Reason: "market closed"}
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

	errs := f.runCycles(t, l, 2)

	for _, err := range errs {
		assert.ErrorIs(t, err, models.ErrOrderRejected)
		assert.False(t, models.IsFatal(err))
	}
	assert.False(t, l.State().BuyOpen)
	assert.Empty(t, f.journal.opened)
}

func TestStrategyLoop_DataUnavailableSkipsCycle(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(90)
	f.feed.err = fmt.Errorf("%w: timeout", models.ErrDataUnavailable)
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

	errs := f.runCycles(t, l, 1)

	assert.ErrorIs(t, errs[0], models.ErrDataUnavailable)
	assert.Zero(t, f.broker.marketCount())
}

func TestStrategyLoop_VolumeGateWaits(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(90)
	f.feed.candles = risingVolume()
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

	errs := f.runCycles(t, l, 1)

	assert.NoError(t, errs[0])
	assert.Zero(t, f.broker.marketCount())
	assert.Equal(t, PhaseWaiting, l.LastPhase())
}

func TestStrategyLoop_NeutralScoreWaits(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(50)
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

	f.runCycles(t, l, 1)

	assert.Zero(t, f.broker.marketCount())
}

func TestStrategyLoop_ReconcileWhenBothOpen(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(90)
	f.broker.positions = []models.Position{{Side: models.SideBuy, OrderID: "1"}}
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)
	l.state = SymbolState{BuyOpen: true, SellOpen: true}

	errs := f.runCycles(t, l, 1)

	assert.NoError(t, errs[0])
	assert.Equal(t, SymbolState{BuyOpen: true}, l.State())
	assert.Zero(t, f.broker.marketCount(), "reconcile cycle makes no decision")
}

func TestStrategyLoop_DeclinedConfirmation(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(90)
	f.cfg.ConfirmEntries = true
	f.deps.Notifier = declineNotifier{}
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

	errs := f.runCycles(t, l, 1)

	assert.NoError(t, errs[0])
	assert.Zero(t, f.broker.marketCount())
	assert.False(t, l.State().BuyOpen)
}

func TestStrategyLoop_ReplacesPendingOrders(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(90)
	f.cfg.PendingEnabled = true
	f.feed.candles = blockWindow()
	f.feed.tick = models.Tick{Bid: 3.4, Ask: 3.5}
	f.broker.existing = []models.PendingOrder{{ID: "7"}, {ID: "8"}}
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

	errs := f.runCycles(t, l, 1)
	assert.NoError(t, errs[0])

	assert.Equal(t, []string{"7", "8"}, f.broker.cancelled)
	require.Len(t, f.broker.pending, 1)
	p := f.broker.pending[0]
	assert.Equal(t, models.LimitBuy, p.Kind)
	assert.InDelta(t, 0.99, p.Price, 1e-9)
	assert.InDelta(t, 0.99*0.95, p.StopLoss, 0.01)
	assert.InDelta(t, 0.99*1.03, p.TakeProfit, 0.01)
	assert.Equal(t, 0.01, p.Volume)
}

// blockWindow: 19 мелких свечей и одна крупная в конце, объём растёт.
func blockWindow() []models.Candle {
	vols := make([]float64, 20)
	for i := range vols {
		vols[i] = float64(i + 1)
	}
	out := candlesWithVolume(vols...)
	out[19].Open, out[19].Close = 1.0, 3.0
	out[19].Low, out[19].High = 1.0, 3.1
	return out
}

func TestStrategyLoop_RunStopsOnCancel(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(50)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.clock.onSleep = func(n int) {
		if n == 3 {
			cancel()
		}
	}
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	assert.Equal(t, PhaseIdle, l.LastPhase())
}

func TestStrategyLoop_RunSurvivesCycleErrors(t *testing.T) {
	t.Parallel()
	f := newLoopFixture(90)
	f.feed.err = errors.New("boom")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.clock.onSleep = func(n int) {
		if n == 4 {
			cancel()
		}
	}
	l := NewStrategyLoop("EURUSD", f.deps, f.cfg)

	require.NoError(t, l.Run(ctx))
	assert.GreaterOrEqual(t, f.feed.calls, 4)
}
