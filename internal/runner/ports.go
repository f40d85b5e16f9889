package runner

import (
	"context"
	"time"

	"scalper_bot/internal/models"
)

// MarketDataFeed: источник свечей и котировок.
type MarketDataFeed interface {
	FetchCandles(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]models.Candle, error)
	FetchTick(ctx context.Context, symbol string) (models.Tick, error)
}

// BrokerGateway: всё, что цикл и наблюдатель позиции делают у брокера.
type BrokerGateway interface {
	SymbolInfo(ctx context.Context, symbol string) (models.SymbolInfo, error)

	SubmitMarketOrder(ctx context.Context, o models.MarketOrder) (string, error)
	SubmitPendingOrder(ctx context.Context, o models.PendingOrder) (string, error)
	PendingOrders(ctx context.Context, symbol string) ([]models.PendingOrder, error)
	CancelOrder(ctx context.Context, orderID string) error
	ModifyStopLossTakeProfit(ctx context.Context, orderID string, sl, tp float64) error

	GetOpenPosition(ctx context.Context, orderID string) (models.Position, error)
	GetOpenPositions(ctx context.Context, symbol string) ([]models.Position, error)
	ComputeMargin(ctx context.Context, side models.Side, symbol string, volume float64) (float64, error)
	GetFreeMargin(ctx context.Context) (float64, error)
}

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
	Confirm(ctx context.Context, prompt string, timeout time.Duration) bool
}

// Journal пишет историю сделок. Ошибки журнала торговлю не останавливают.
type Journal interface {
	RecordOpen(ctx context.Context, t models.Trade) error
	RecordRatchet(ctx context.Context, orderID string, sl, tp float64, at time.Time) error
	RecordClose(ctx context.Context, orderID string, at time.Time) error
}

// CycleReporter получает отметку о каждом завершённом цикле (health).
type CycleReporter interface {
	TouchCycle(symbol string, at time.Time)
}

type nopJournal struct{}

func (nopJournal) RecordOpen(context.Context, models.Trade) error { return nil }
func (nopJournal) RecordRatchet(context.Context, string, float64, float64, time.Time) error {
	return nil
}
func (nopJournal) RecordClose(context.Context, string, time.Time) error { return nil }

type nopNotifier struct{}

func (nopNotifier) Send(string)                                         {}
func (nopNotifier) Sendf(string, ...any)                                {}
func (nopNotifier) Confirm(context.Context, string, time.Duration) bool { return true }

type nopReporter struct{}

func (nopReporter) TouchCycle(string, time.Time) {}
