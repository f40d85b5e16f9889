package indicator

import (
	talib "github.com/markcheno/go-talib"

	"scalper_bot/internal/models"
)

// Talib считает индикаторы через go-talib. go-talib заполняет период прогрева
// нулями, поэтому каждый результат обрезается на lookback соответствующей функции.
type Talib struct{}

func NewTalib() *Talib { return &Talib{} }

func (Talib) ATR(candles []models.Candle, period int) []float64 {
	if period < 1 || len(candles) <= period {
		return nil
	}
	h, l, c := hlc(candles)
	return trim(talib.Atr(h, l, c, period), period)
}

func (Talib) NATR(candles []models.Candle, period int) []float64 {
	if period < 1 || len(candles) <= period {
		return nil
	}
	h, l, c := hlc(candles)
	return trim(talib.Natr(h, l, c, period), period)
}

func (Talib) MACD(candles []models.Candle, fast, slow, signal int) (line, sig, hist []float64) {
	lookback := slow - 1 + signal - 1
	if fast < 2 || slow <= fast || signal < 1 || len(candles) <= lookback {
		return nil, nil, nil
	}
	m, s, h := talib.Macd(closes(candles), fast, slow, signal)
	return trim(m, lookback), trim(s, lookback), trim(h, lookback)
}

func (Talib) Aroon(candles []models.Candle, period int) (down, up []float64) {
	if period < 2 || len(candles) <= period {
		return nil, nil
	}
	h, l, _ := hlc(candles)
	d, u := talib.Aroon(h, l, period)
	return trim(d, period), trim(u, period)
}

func (Talib) StochRSI(candles []models.Candle, period, fastK, fastD int) (k, d []float64) {
	lookback := period + fastK - 1 + fastD - 1
	if period < 2 || fastK < 1 || fastD < 1 || len(candles) <= lookback {
		return nil, nil
	}
	fk, fd := talib.StochRsi(closes(candles), period, fastK, fastD, talib.SMA)
	return trim(fk, lookback), trim(fd, lookback)
}

func hlc(candles []models.Candle) (high, low, closeP []float64) {
	high = make([]float64, len(candles))
	low = make([]float64, len(candles))
	closeP = make([]float64, len(candles))
	for i, c := range candles {
		high[i], low[i], closeP[i] = c.High, c.Low, c.Close
	}
	return high, low, closeP
}

func closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func trim(series []float64, lookback int) []float64 {
	if lookback >= len(series) {
		return nil
	}
	return series[lookback:]
}
