package models

import "time"

// Position: открытая позиция, как её отдаёт брокер.
type Position struct {
	Symbol       string
	Side         Side
	Volume       float64
	EntryPrice   float64
	CurrentPrice float64
	StopLoss     float64
	TakeProfit   float64
	OrderID      string
	Profit       float64
}

type PendingOrder struct {
	ID         string
	Symbol     string
	Kind       PendingKind
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Volume     float64
}

// MarketOrder: запрос на рыночный ордер.
type MarketOrder struct {
	Symbol     string
	Side       Side
	Volume     float64
	StopLoss   float64
	TakeProfit float64
}

// Trade: запись журнала об открытой рыночной сделке.
type Trade struct {
	OrderID    string
	Symbol     string
	Side       Side
	Volume     float64
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	ATR        float64
	Score      int
	OpenedAt   time.Time
}
