package strategy

import "scalper_bot/internal/models"

// Indicators: источник индикаторов. Все серии возвращаются без прогревочного
// префикса, последний элемент соответствует последней свече.
type Indicators interface {
	ATR(candles []models.Candle, period int) []float64
	NATR(candles []models.Candle, period int) []float64
	MACD(candles []models.Candle, fast, slow, signal int) (line, sig, hist []float64)
	Aroon(candles []models.Candle, period int) (down, up []float64)
	StochRSI(candles []models.Candle, period, fastK, fastD int) (k, d []float64)
}

// StochWindow выбирает, сколько сравнений %K учитывает подсчёт серии.
type StochWindow string

const (
	// StochWindowFull: 11 сравнений по последним 12 значениям %K.
	StochWindowFull StochWindow = "full"
	// StochWindowNarrow: одно сравнение в начале окна, как в первой версии бота.
	StochWindowNarrow StochWindow = "narrow"
)

// Config: пороги и окна голосования.
type Config struct {
	NATRPeriod    int
	NATRThreshold float64

	AroonPeriod   int
	AroonLookback int
	AroonMinAgree int

	StochPeriod   int
	StochFastK    int
	StochFastD    int
	StochLookback int
	StochMinScore int
	StochWindow   StochWindow

	MACDFast     int
	MACDSlow     int
	MACDSignal   int
	MACDMeanOver int
	MACDConfirm  int

	TFLookback  int
	TFThreshold int

	VolumeLookback     int
	VolumeMaxCatch     int
	VolumeMinDecreases int

	ATRPeriod   int
	ATRMeanOver int
}

func DefaultConfig() Config {
	return Config{
		NATRPeriod:    14,
		NATRThreshold: 0.01,

		AroonPeriod:   14,
		AroonLookback: 11,
		AroonMinAgree: 7,

		StochPeriod:   14,
		StochFastK:    5,
		StochFastD:    3,
		StochLookback: 11,
		StochMinScore: 6,
		StochWindow:   StochWindowFull,

		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		MACDMeanOver: 20,
		MACDConfirm:  3,

		TFLookback:  3,
		TFThreshold: 7,

		VolumeLookback:     6,
		VolumeMaxCatch:     2,
		VolumeMinDecreases: 3,

		ATRPeriod:   14,
		ATRMeanOver: 10,
	}
}
