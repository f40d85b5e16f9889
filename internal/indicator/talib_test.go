package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
	"scalper_bot/internal/strategy"
)

var _ strategy.Indicators = (*Talib)(nil)

func flatCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = models.Candle{Open: 100, High: 101, Low: 99, Close: 100}
	}
	return out
}

func risingCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		p := 100 + float64(i) + math.Sin(float64(i))
		out[i] = models.Candle{Open: p - 0.5, High: p + 1, Low: p - 1, Close: p}
	}
	return out
}

func TestTalib_ATRAndNATR(t *testing.T) {
	t.Parallel()

	ind := NewTalib()
	candles := flatCandles(50)

	atr := ind.ATR(candles, 14)
	require.Len(t, atr, 50-14)
	for _, v := range atr {
		assert.InDelta(t, 2.0, v, 1e-9)
	}

	natr := ind.NATR(candles, 14)
	require.Len(t, natr, 50-14)
	assert.InDelta(t, 2.0, natr[len(natr)-1], 1e-9)
}

func TestTalib_Aroon(t *testing.T) {
	t.Parallel()

	down, up := NewTalib().Aroon(risingCandles(60), 14)
	require.Len(t, up, 60-14)
	require.Len(t, down, 60-14)
	assert.Equal(t, 100.0, up[len(up)-1])
}

func TestTalib_MACDAndStochRSI(t *testing.T) {
	t.Parallel()

	var ind strategy.Indicators = NewTalib()
	candles := risingCandles(200)

	line, sig, hist := ind.MACD(candles, 12, 26, 9)
	require.Len(t, hist, 200-33)
	require.Len(t, line, len(hist))
	require.Len(t, sig, len(hist))
	assert.InDelta(t, line[len(line)-1]-sig[len(sig)-1], hist[len(hist)-1], 1e-9)

	k, d := ind.StochRSI(candles, 14, 5, 3)
	require.Len(t, k, 200-(14+4+2))
	require.Len(t, d, len(k))
	for _, v := range d {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0+1e-9)
	}
}

func TestTalib_ShortSeries(t *testing.T) {
	t.Parallel()

	ind := NewTalib()
	short := flatCandles(10)

	assert.Nil(t, ind.ATR(short, 14))
	assert.Nil(t, ind.NATR(short, 14))
	_, _, hist := ind.MACD(short, 12, 26, 9)
	assert.Nil(t, hist)
	down, up := ind.Aroon(short, 14)
	assert.Nil(t, down)
	assert.Nil(t, up)
	k, d := ind.StochRSI(short, 14, 5, 3)
	assert.Nil(t, k)
	assert.Nil(t, d)
}
