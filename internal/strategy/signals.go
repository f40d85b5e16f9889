package strategy

import (
	"scalper_bot/internal/models"
)

const (
	stochOversold   = 20.0
	stochOverbought = 80.0

	aroonStrong = 70.0
	aroonWeak   = 30.0
)

// Веса таймфреймов в мульти-TF голосовании StochRSI.
const (
	weightM1  = 5
	weightM5  = 10
	weightM15 = 2
)

type trend uint8

const (
	trendNone trend = iota
	trendInc
	trendDec
)

// Aggregator превращает свечи в голоса через Indicators.
// Сами пороги живут в чистых функциях ниже.
type Aggregator struct {
	ind Indicators
	cfg Config
}

func NewAggregator(ind Indicators, cfg Config) *Aggregator {
	return &Aggregator{ind: ind, cfg: cfg}
}

func (a *Aggregator) Config() Config { return a.cfg }

func (a *Aggregator) VolatilityOK(candles []models.Candle) bool {
	return VolatilityOK(a.ind.NATR(candles, a.cfg.NATRPeriod), a.cfg.NATRThreshold)
}

func (a *Aggregator) AroonVote(candles []models.Candle) models.Vote {
	down, up := a.ind.Aroon(candles, a.cfg.AroonPeriod)
	return AroonTrend(down, up, a.cfg.AroonLookback, a.cfg.AroonMinAgree)
}

func (a *Aggregator) StochRSIVote(candles []models.Candle) models.Vote {
	k, d := a.ind.StochRSI(candles, a.cfg.StochPeriod, a.cfg.StochFastK, a.cfg.StochFastD)
	return StochTrend(k, d, a.cfg.StochLookback, a.cfg.StochMinScore, a.cfg.StochWindow)
}

func (a *Aggregator) MACDVote(candles []models.Candle) models.Vote {
	_, _, hist := a.ind.MACD(candles, a.cfg.MACDFast, a.cfg.MACDSlow, a.cfg.MACDSignal)
	return MACDTrend(hist, a.cfg.MACDMeanOver, a.cfg.MACDConfirm)
}

// MarketDecision: рыночное решение: NATR-фильтр и ровно 2 из 3 голосов.
func (a *Aggregator) MarketDecision(candles []models.Candle) models.Vote {
	if !a.VolatilityOK(candles) {
		return models.VoteWait
	}
	return TwoOfThree(a.AroonVote(candles), a.StochRSIVote(candles), a.MACDVote(candles))
}

// MultiTimeframeVote считает очки по %D трёх таймфреймов.
func (a *Aggregator) MultiTimeframeVote(m1, m5, m15 []models.Candle) (models.Vote, int) {
	_, d1 := a.ind.StochRSI(m1, a.cfg.StochPeriod, a.cfg.StochFastK, a.cfg.StochFastD)
	_, d5 := a.ind.StochRSI(m5, a.cfg.StochPeriod, a.cfg.StochFastK, a.cfg.StochFastD)
	_, d15 := a.ind.StochRSI(m15, a.cfg.StochPeriod, a.cfg.StochFastK, a.cfg.StochFastD)

	score := TimeframeScore(d1, d5, d15, a.cfg.TFLookback)
	return ScoreVote(score, a.cfg.TFThreshold), score
}

func (a *Aggregator) VolumeTrendOK(candles []models.Candle) bool {
	return VolumeTrendOK(candles, a.cfg.VolumeLookback, a.cfg.VolumeMaxCatch, a.cfg.VolumeMinDecreases)
}

// MeanATR: среднее последних ATRMeanOver значений ATR.
func (a *Aggregator) MeanATR(candles []models.Candle) (float64, bool) {
	atr := a.ind.ATR(candles, a.cfg.ATRPeriod)
	if len(atr) == 0 {
		return 0, false
	}
	return mean(tail(atr, a.cfg.ATRMeanOver)), true
}

// VolatilityOK: два последних значения NATR не ниже порога.
func VolatilityOK(natr []float64, threshold float64) bool {
	n := len(natr)
	if n < 2 {
		return false
	}
	return natr[n-1] >= threshold && natr[n-2] >= threshold
}

// AroonTrend считает периоды тренда в последних lookback значениях.
func AroonTrend(down, up []float64, lookback, minAgree int) models.Vote {
	n := min(len(down), len(up))
	if n == 0 {
		return models.VoteWait
	}
	from := max(0, n-lookback)

	var upTrend, downTrend int
	for i := from; i < n; i++ {
		switch {
		case down[i] >= aroonStrong && up[i] <= aroonWeak:
			downTrend++
		case down[i] <= aroonWeak && up[i] >= aroonStrong:
			upTrend++
		}
	}
	if upTrend >= minAgree {
		return models.VoteBuy
	}
	if downTrend >= minAgree {
		return models.VoteSell
	}
	return models.VoteWait
}

// StochTrend: серия роста/падения %K со штрафом -1 за смену направления.
func StochTrend(k, d []float64, lookback, minScore int, window StochWindow) models.Vote {
	n := len(k)
	if n < lookback+1 || len(d) == 0 {
		return models.VoteWait
	}

	from, to := n-lookback, n
	if window == StochWindowNarrow {
		to = from + 1
	}

	dir, points := trendNone, 0
	for i := from; i < to; i++ {
		var next trend
		switch {
		case k[i] > k[i-1]:
			next = trendInc
		case k[i] < k[i-1]:
			next = trendDec
		default:
			continue
		}
		if dir == next {
			points++
			continue
		}
		dir = next
		if points == 0 {
			points++
		} else {
			points--
		}
	}

	lastD := d[len(d)-1]
	switch {
	case lastD <= stochOversold && dir == trendInc && points >= minScore:
		return models.VoteBuy
	case lastD >= stochOversold && dir == trendDec && points >= minScore:
		return models.VoteSell
	}
	return models.VoteWait
}

// MACDTrend сравнивает гистограмму со средними её положительной и
// отрицательной частей за последние meanOver значений.
func MACDTrend(hist []float64, meanOver, confirm int) models.Vote {
	n := len(hist)
	if n < confirm+1 {
		return models.VoteWait
	}

	var pos, neg []float64
	for _, h := range hist {
		if h >= 0 {
			pos = append(pos, h)
		}
		if h <= 0 {
			neg = append(neg, h)
		}
	}

	last := hist[n-1]
	if last < 0 && len(neg) > 0 {
		downThreshold := mean(tail(neg, meanOver))
		if last > downThreshold {
			return models.VoteWait
		}
		for j := 2; j <= confirm+1; j++ {
			h := hist[n-j]
			if h > 0 || h > downThreshold {
				return models.VoteWait
			}
		}
		return models.VoteSell
	}
	if last >= 0 && len(pos) > 0 {
		upThreshold := mean(tail(pos, meanOver))
		if last < upThreshold {
			return models.VoteWait
		}
		for j := 2; j <= confirm+1; j++ {
			h := hist[n-j]
			if h < 0 || h < upThreshold {
				return models.VoteWait
			}
		}
		return models.VoteBuy
	}
	return models.VoteWait
}

// TimeframeScore: перепроданность даёт минус, перекупленность плюс.
func TimeframeScore(d1, d5, d15 []float64, lookback int) int {
	score := 0
	for i := 1; i <= lookback; i++ {
		score += zoneScore(d5, i, weightM5)
		score += zoneScore(d15, i, weightM15)
		score += zoneScore(d1, i, weightM1)
	}
	return score
}

func zoneScore(d []float64, back, weight int) int {
	if len(d) < back {
		return 0
	}
	v := d[len(d)-back]
	switch {
	case v <= stochOversold:
		return -weight
	case v >= stochOverbought:
		return weight
	}
	return 0
}

func ScoreVote(score, threshold int) models.Vote {
	switch {
	case score >= threshold:
		return models.VoteBuy
	case score <= -threshold:
		return models.VoteSell
	}
	return models.VoteWait
}

// VolumeTrendOK идёт от новой свечи к старой и считает снижения тикового объёма.
// Больше maxCatch пропусков: сканирование останавливается.
func VolumeTrendOK(candles []models.Candle, lookback, maxCatch, minDecreases int) bool {
	n := len(candles)
	if n < lookback || lookback < 2 {
		return false
	}

	points, catch := 0, 0
	for i := n - 1; i > n-lookback; i-- {
		if candles[i].TickVolume <= candles[i-1].TickVolume {
			points++
			continue
		}
		catch++
		if catch > maxCatch {
			break
		}
	}
	return points >= minDecreases
}

// TwoOfThree требует ровно двух совпавших голосов.
func TwoOfThree(votes ...models.Vote) models.Vote {
	var buy, sell int
	for _, v := range votes {
		switch v {
		case models.VoteBuy:
			buy++
		case models.VoteSell:
			sell++
		}
	}
	switch {
	case buy == 2:
		return models.VoteBuy
	case sell == 2:
		return models.VoteSell
	}
	return models.VoteWait
}

func tail(xs []float64, n int) []float64 {
	if n <= 0 || len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}
