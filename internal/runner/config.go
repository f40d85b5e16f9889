package runner

import (
	"time"

	"scalper_bot/internal/models"
)

// Config: параметры цикла стратегии и наблюдения за позицией.
type Config struct {
	Interval     time.Duration // период цикла стратегии
	PollInterval time.Duration // период опроса открытой позиции

	RegionTimeframe models.Timeframe
	RegionWindow    int
	RegionK         float64

	// окна мульти-таймфреймового голосования
	M1Window  int
	M5Window  int
	M15Window int

	ATRWindow int // свечей M5 для ATR при подтяжке SL/TP

	MarginRatio float64

	PendingEnabled bool
	PendingSLPct   float64
	PendingTPPct   float64

	// 0: минимальный объём инструмента
	Volume float64

	ConfirmEntries bool
	ConfirmTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:        30 * time.Second,
		PollInterval:    time.Second,
		RegionTimeframe: models.M5,
		RegionWindow:    1000,
		RegionK:         10,
		M1Window:        200,
		M5Window:        100,
		M15Window:       50,
		ATRWindow:       100,
		MarginRatio:     0.8,
		PendingEnabled:  true,
		PendingSLPct:    5,
		PendingTPPct:    3,
		ConfirmTimeout:  time.Minute,
	}
}
