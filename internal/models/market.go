package models

import "time"

type Timeframe string

const (
	M1  Timeframe = "M1"
	M5  Timeframe = "M5"
	M15 Timeframe = "M15"
)

// Candle: OHLCV свеча. Серии всегда упорядочены от старой к новой.
type Candle struct {
	Time       time.Time `json:"time"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	TickVolume float64   `json:"tick_volume"`
}

type Tick struct {
	Symbol string
	Bid    float64
	Ask    float64
	Time   time.Time
}

// SymbolInfo: торговые параметры инструмента.
type SymbolInfo struct {
	Symbol    string
	VolumeMin float64
	Point     float64
}
