package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
	"scalper_bot/internal/strategy"
)

type mapFeed map[string][]models.Candle

func (m mapFeed) FetchCandles(_ context.Context, symbol string, _ models.Timeframe, _ int) ([]models.Candle, error) {
	c, ok := m[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrDataUnavailable, symbol)
	}
	return c, nil
}

// quietIndicators: NATR ниже порога, решение всегда Wait.
type quietIndicators struct{}

func (quietIndicators) ATR([]models.Candle, int) []float64  { return nil }
func (quietIndicators) NATR([]models.Candle, int) []float64 { return []float64{0, 0} }
func (quietIndicators) MACD([]models.Candle, int, int, int) ([]float64, []float64, []float64) {
	return nil, nil, nil
}
func (quietIndicators) Aroon([]models.Candle, int) ([]float64, []float64) { return nil, nil }
func (quietIndicators) StochRSI([]models.Candle, int, int, int) ([]float64, []float64) {
	return nil, nil
}

func TestScanMarket(t *testing.T) {
	t.Parallel()

	block := []models.Candle{
		{Open: 1, High: 2, Low: 0.5, Close: 1.2},
		{Open: 1.2, High: 1.3, Low: 1.1, Close: 1.25},
		{Open: 1.25, High: 5, Low: 1.2, Close: 4.8},
	}
	f := mapFeed{"EURUSD": block}
	agg := strategy.NewAggregator(quietIndicators{}, strategy.DefaultConfig())

	res := scanMarket(context.Background(), f, agg, []string{"EURUSD", "MISSING"}, scanOptions{
		Timeframe: models.M5, DecisionWindow: 100, RegionWindow: 6, RegionK: 2,
	})
	require.Len(t, res, 2)

	assert.NoError(t, res[0].Err)
	assert.Equal(t, models.VoteWait, res[0].Decision)
	require.Len(t, res[0].Regions, 1)
	assert.Equal(t, models.PriceRegion{Lower: 1.1, Upper: 5, Side: models.SideBuy, Index: 2}, res[0].Regions[0])

	assert.ErrorIs(t, res[1].Err, models.ErrDataUnavailable)

	var buf bytes.Buffer
	printResults(&buf, res)
	assert.Contains(t, buf.String(), "EURUSD     WAIT  buy[1.10000,5.00000]")
	assert.Contains(t, buf.String(), "MISSING    ERROR")
}

func TestTailCandles(t *testing.T) {
	t.Parallel()
	c := make([]models.Candle, 10)
	assert.Len(t, tailCandles(c, 6), 6)
	assert.Len(t, tailCandles(c, 20), 10)
	assert.Len(t, tailCandles(c, 0), 10)
}
