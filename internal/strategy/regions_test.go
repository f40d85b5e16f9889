package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
)

func candle(o, h, l, c float64) models.Candle {
	return models.Candle{Open: o, High: h, Low: l, Close: c}
}

func TestDetectRegions_BlockOrderScenario(t *testing.T) {
	t.Parallel()

	candles := []models.Candle{
		candle(1, 2, 0.5, 1.2),
		candle(1.2, 1.3, 1.1, 1.25),
		candle(1.25, 5, 1.2, 4.8),
	}

	regions := DetectRegions(candles, 2)
	require.Len(t, regions, 1)
	assert.Equal(t, models.PriceRegion{Lower: 1.1, Upper: 5, Side: models.SideBuy, Index: 2}, regions[0])
}

func TestDetectRegions_SellRegion(t *testing.T) {
	t.Parallel()

	// большая медвежья свеча целиком ниже минимума предыдущей
	candles := []models.Candle{
		candle(10, 10.2, 9.9, 10.1),
		candle(10.1, 10.2, 10, 10.05),
		candle(9.5, 9.6, 6, 6.2),
	}

	regions := DetectRegions(candles, 2)
	require.Len(t, regions, 1)
	assert.Equal(t, models.SideSell, regions[0].Side)
	assert.Equal(t, 6.0, regions[0].Lower)
	assert.Equal(t, 10.0, regions[0].Upper)
}

func TestDetectRegions_TooFewCandles(t *testing.T) {
	t.Parallel()

	assert.Empty(t, DetectRegions(nil, 2))
	assert.Empty(t, DetectRegions([]models.Candle{candle(1, 9, 0.1, 8)}, 2))
}

func TestDetectRegions_SkipsFirstCandle(t *testing.T) {
	t.Parallel()

	candles := []models.Candle{
		candle(1, 20, 1, 19),
		candle(19, 19.1, 18.9, 19),
		candle(19, 19.1, 18.9, 19.05),
	}
	assert.Empty(t, DetectRegions(candles, 2))
}

func TestDetectRegions_FlatWindow(t *testing.T) {
	t.Parallel()

	candles := []models.Candle{candle(1, 1, 1, 1), candle(1, 1, 1, 1), candle(1, 1, 1, 1)}
	assert.Empty(t, DetectRegions(candles, 2))
}

func TestDetectRegions_DisjointProvenance(t *testing.T) {
	t.Parallel()

	candles := make([]models.Candle, 0, 60)
	price := 100.0
	for i := 0; i < 60; i++ {
		body := 0.1
		if i%7 == 3 {
			body = 3
		}
		if i%11 == 5 {
			body = -4
		}
		candles = append(candles, candle(price, price+max(body, 0)+0.05, price+min(body, 0)-0.05, price+body))
		price += body
	}

	regions := DetectRegions(candles, 2)
	require.NotEmpty(t, regions)

	seen := make(map[int]models.Side)
	for _, r := range regions {
		if prev, ok := seen[r.Index]; ok {
			t.Fatalf("candle %d produced %s and %s regions", r.Index, prev, r.Side)
		}
		seen[r.Index] = r.Side
		assert.LessOrEqual(t, r.Lower, r.Upper)
	}

	buy, sell := SplitRegions(regions)
	assert.Equal(t, len(regions), len(buy)+len(sell))
}

func TestDetectRegions_Deterministic(t *testing.T) {
	t.Parallel()

	candles := []models.Candle{
		candle(1, 2, 0.5, 1.2),
		candle(1.2, 1.3, 1.1, 1.25),
		candle(1.25, 5, 1.2, 4.8),
		candle(4.8, 4.9, 1, 1.1),
	}
	assert.Equal(t, DetectRegions(candles, 1.5), DetectRegions(candles, 1.5))
}
