package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/opentracing/opentracing-go"

	"scalper_bot/internal/metrics"
	"scalper_bot/internal/models"
	"scalper_bot/internal/strategy"
	"scalper_bot/pkg/logger"
)

// OrderLifecycle ведёт одну рыночную позицию: открывает её и подтягивает
// SL/TP, пока брокер не перестанет её отдавать.
type OrderLifecycle struct {
	symbol string
	side   models.Side
	volume float64
	point  float64

	broker  BrokerGateway
	feed    MarketDataFeed
	signals *strategy.Aggregator
	clock   Clock
	n       Notifier
	journal Journal
	cfg     Config

	orderID string
	phase   Phase
}

func newOrderLifecycle(symbol string, side models.Side, volume float64, info models.SymbolInfo, d Deps, cfg Config) *OrderLifecycle {
	return &OrderLifecycle{
		symbol:  symbol,
		side:    side,
		volume:  volume,
		point:   info.Point,
		broker:  d.Broker,
		feed:    d.Feed,
		signals: d.Signals,
		clock:   d.Clock,
		n:       d.Notifier,
		journal: d.Journal,
		cfg:     cfg,
	}
}

func (o *OrderLifecycle) OrderID() string { return o.orderID }
func (o *OrderLifecycle) Phase() Phase    { return o.phase }

// Open отправляет рыночный ордер. При отказе брокера наблюдение не начинается.
func (o *OrderLifecycle) Open(ctx context.Context, t models.Trade) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "lifecycle.open")
	defer span.Finish()
	span.SetTag("symbol", o.symbol)
	span.SetTag("side", o.side.String())

	id, err := o.broker.SubmitMarketOrder(ctx, models.MarketOrder{
		Symbol:     o.symbol,
		Side:       o.side,
		Volume:     o.volume,
		StopLoss:   t.StopLoss,
		TakeProfit: t.TakeProfit,
	})
	if err != nil {
		metrics.OrdersSubmitted.WithLabelValues(o.symbol, "market", "rejected").Inc()
		span.SetTag("error", true)
		return fmt.Errorf("open %s %s: %w", o.side, o.symbol, err)
	}
	metrics.OrdersSubmitted.WithLabelValues(o.symbol, "market", "ok").Inc()

	o.orderID = id
	o.phase = PhaseOpened

	t.OrderID = id
	t.OpenedAt = o.clock.Now()
	if err := o.journal.RecordOpen(ctx, t); err != nil {
		logger.Warn("[JOURNAL] record open %s: %v", id, err)
	}
	logger.Info("[OPEN] %s %s #%s vol=%.4f sl=%.5f tp=%.5f",
		o.symbol, o.side, id, o.volume, t.StopLoss, t.TakeProfit)
	o.n.Sendf("🚀 [%s] %s открыт #%s vol=%.4f SL=%.5f TP=%.5f",
		o.symbol, o.side, id, o.volume, t.StopLoss, t.TakeProfit)
	return nil
}

// Watch опрашивает позицию каждые PollInterval. Возвращается, когда позиция
// закрыта или ctx отменён. После возврата модификаций больше не будет.
func (o *OrderLifecycle) Watch(ctx context.Context) {
	if o.orderID == "" {
		return
	}
	o.phase = PhaseWatching
	gauge := metrics.PositionsWatched.WithLabelValues(o.symbol, o.side.String())
	gauge.Inc()
	defer gauge.Dec()

	for {
		closed, err := o.poll(ctx)
		if closed {
			o.finish(ctx)
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("[WATCH] %s #%s: %v", o.symbol, o.orderID, err)
		}
		if err := o.clock.Sleep(ctx, o.cfg.PollInterval); err != nil {
			return
		}
	}
}

func (o *OrderLifecycle) poll(ctx context.Context) (bool, error) {
	pos, err := o.broker.GetOpenPosition(ctx, o.orderID)
	if errors.Is(err, models.ErrPositionNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !RatchetTriggered(pos) {
		return false, nil
	}

	candles, err := o.feed.FetchCandles(ctx, o.symbol, models.M5, o.cfg.ATRWindow)
	if err != nil {
		return false, fmt.Errorf("ratchet candles: %w", err)
	}
	atr, ok := o.signals.MeanATR(candles)
	if !ok {
		return false, fmt.Errorf("ratchet atr: %w", models.ErrDataUnavailable)
	}
	margin, err := o.broker.ComputeMargin(ctx, o.side, o.symbol, o.volume)
	if err != nil {
		return false, fmt.Errorf("ratchet margin: %w", err)
	}

	sl, tp := RatchetStops(pos, margin, atr)
	sl, tp = roundStops(o.side, sl, tp, o.point)
	if !improves(o.side, pos.StopLoss, sl, o.point/2) {
		return false, nil
	}
	if err := o.broker.ModifyStopLossTakeProfit(ctx, o.orderID, sl, tp); err != nil {
		if errors.Is(err, models.ErrPositionNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("ratchet modify: %w", err)
	}

	metrics.Ratchets.WithLabelValues(o.symbol, o.side.String()).Inc()
	if err := o.journal.RecordRatchet(ctx, o.orderID, sl, tp, o.clock.Now()); err != nil {
		logger.Warn("[JOURNAL] record ratchet %s: %v", o.orderID, err)
	}
	logger.Info("[RATCHET] %s #%s sl=%.5f tp=%.5f profit=%.2f",
		o.symbol, o.orderID, sl, tp, pos.Profit)
	o.n.Sendf("🛡 [%s] SL/TP подтянуты #%s -> SL=%.5f TP=%.5f", o.symbol, o.orderID, sl, tp)
	return false, nil
}

func (o *OrderLifecycle) finish(ctx context.Context) {
	o.phase = PhaseClosed
	if err := o.journal.RecordClose(ctx, o.orderID, o.clock.Now()); err != nil {
		logger.Warn("[JOURNAL] record close %s: %v", o.orderID, err)
	}
	logger.Info("[CLOSE] %s #%s position gone", o.symbol, o.orderID)
	o.n.Sendf("🏁 [%s] позиция #%s закрыта", o.symbol, o.orderID)
}
