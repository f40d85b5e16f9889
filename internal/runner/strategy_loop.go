package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"golang.org/x/sync/errgroup"

	"scalper_bot/internal/metrics"
	"scalper_bot/internal/models"
	"scalper_bot/internal/strategy"
	"scalper_bot/pkg/logger"
)

// Deps: общие зависимости всех циклов.
type Deps struct {
	Feed     MarketDataFeed
	Broker   BrokerGateway
	Signals  *strategy.Aggregator
	Clock    Clock
	Notifier Notifier
	Journal  Journal
	Reporter CycleReporter
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = RealClock{}
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Journal == nil {
		d.Journal = nopJournal{}
	}
	if d.Reporter == nil {
		d.Reporter = nopReporter{}
	}
	return d
}

// StrategyLoop: бесконечный цикл решений по одному инструменту.
// Флаги состояния принадлежат только этому циклу.
type StrategyLoop struct {
	symbol string
	d      Deps
	cfg    Config

	state   SymbolState
	phase   Phase
	regions []models.PriceRegion
	info    *models.SymbolInfo

	watchers errgroup.Group
}

func NewStrategyLoop(symbol string, d Deps, cfg Config) *StrategyLoop {
	return &StrategyLoop{
		symbol: symbol,
		d:      d.withDefaults(),
		cfg:    cfg,
		phase:  PhaseIdle,
	}
}

func (l *StrategyLoop) Symbol() string { return l.symbol }

// Run крутит цикл до отмены ctx и дожидается наблюдателей позиций.
// Ошибки отдельного цикла логируются, цикл продолжается.
func (l *StrategyLoop) Run(ctx context.Context) error {
	defer func() { _ = l.watchers.Wait() }()

	logger.Info("[LOOP] %s started, every %s", l.symbol, l.cfg.Interval)
	for {
		l.phase = PhaseEvaluating
		result := "ok"
		if err := l.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			result = "error"
			logger.Warn("[LOOP] %s cycle: %v", l.symbol, err)
		}
		metrics.Cycles.WithLabelValues(l.symbol, result).Inc()
		l.d.Reporter.TouchCycle(l.symbol, l.d.Clock.Now())

		l.phase = PhaseIdle
		if err := l.d.Clock.Sleep(ctx, l.cfg.Interval); err != nil {
			logger.Info("[LOOP] %s stopped", l.symbol)
			return nil
		}
	}
}

func (l *StrategyLoop) cycle(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "strategy.cycle")
	defer span.Finish()
	span.SetTag("symbol", l.symbol)

	window, err := l.d.Feed.FetchCandles(ctx, l.symbol, l.cfg.RegionTimeframe, l.cfg.RegionWindow)
	if err != nil {
		return fmt.Errorf("region window: %w", err)
	}
	l.refreshRegions(window)

	if l.cfg.PendingEnabled {
		if err := l.replacePending(ctx); err != nil {
			logger.Warn("[PENDING] %s: %v", l.symbol, err)
		}
	}

	if l.state.Both() {
		return l.reconcile(ctx)
	}

	if !l.d.Signals.VolumeTrendOK(window) {
		l.phase = PhaseWaiting
		return nil
	}

	vote, score, err := l.timeframeVote(ctx)
	if err != nil {
		return err
	}
	span.SetTag("vote", vote.String())
	metrics.Votes.WithLabelValues(l.symbol, vote.String()).Inc()
	metrics.TimeframeScore.WithLabelValues(l.symbol).Set(float64(score))

	side, ok := vote.Side()
	if !ok || l.state.Open(side) {
		l.phase = PhaseWaiting
		return nil
	}
	return l.open(ctx, side, score, window)
}

func (l *StrategyLoop) refreshRegions(window []models.Candle) {
	l.regions = strategy.DetectRegions(window, l.cfg.RegionK)
	buy, sell := strategy.SplitRegions(l.regions)
	metrics.Regions.WithLabelValues(l.symbol, models.SideBuy.String()).Set(float64(len(buy)))
	metrics.Regions.WithLabelValues(l.symbol, models.SideSell.String()).Set(float64(len(sell)))
}

func (l *StrategyLoop) timeframeVote(ctx context.Context) (models.Vote, int, error) {
	m1, err := l.d.Feed.FetchCandles(ctx, l.symbol, models.M1, l.cfg.M1Window)
	if err != nil {
		return models.VoteWait, 0, fmt.Errorf("m1 candles: %w", err)
	}
	m5, err := l.d.Feed.FetchCandles(ctx, l.symbol, models.M5, l.cfg.M5Window)
	if err != nil {
		return models.VoteWait, 0, fmt.Errorf("m5 candles: %w", err)
	}
	m15, err := l.d.Feed.FetchCandles(ctx, l.symbol, models.M15, l.cfg.M15Window)
	if err != nil {
		return models.VoteWait, 0, fmt.Errorf("m15 candles: %w", err)
	}
	vote, score := l.d.Signals.MultiTimeframeVote(m1, m5, m15)
	return vote, score, nil
}

// reconcile сверяет флаги с фактическими позициями брокера.
func (l *StrategyLoop) reconcile(ctx context.Context) error {
	positions, err := l.d.Broker.GetOpenPositions(ctx, l.symbol)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	next := stateFromPositions(positions)
	if next != l.state {
		logger.Info("[LOOP] %s reconciled buy=%t sell=%t", l.symbol, next.BuyOpen, next.SellOpen)
	}
	l.state = next
	return nil
}

func (l *StrategyLoop) symbolInfo(ctx context.Context) (models.SymbolInfo, error) {
	if l.info != nil {
		return *l.info, nil
	}
	info, err := l.d.Broker.SymbolInfo(ctx, l.symbol)
	if err != nil {
		return models.SymbolInfo{}, fmt.Errorf("symbol info: %w", err)
	}
	l.info = &info
	return info, nil
}

func (l *StrategyLoop) volume(info models.SymbolInfo) float64 {
	if l.cfg.Volume > 0 {
		return l.cfg.Volume
	}
	return info.VolumeMin
}

// checkMargin: требуемая маржа не выше MarginRatio от свободной.
func (l *StrategyLoop) checkMargin(ctx context.Context, side models.Side, volume float64) error {
	required, err := l.d.Broker.ComputeMargin(ctx, side, l.symbol, volume)
	if err != nil {
		return fmt.Errorf("margin: %w", err)
	}
	free, err := l.d.Broker.GetFreeMargin(ctx)
	if err != nil {
		return fmt.Errorf("free margin: %w", err)
	}
	if !MarginAllowed(required, free, l.cfg.MarginRatio) {
		metrics.MarginRejections.WithLabelValues(l.symbol).Inc()
		return fmt.Errorf("%w: need %.2f, free %.2f", models.ErrInsufficientMargin, required, free)
	}
	return nil
}

func (l *StrategyLoop) open(ctx context.Context, side models.Side, score int, window []models.Candle) error {
	l.phase = PhaseOpening

	info, err := l.symbolInfo(ctx)
	if err != nil {
		return err
	}
	volume := l.volume(info)
	if err := l.checkMargin(ctx, side, volume); err != nil {
		return err
	}

	atr, ok := l.d.Signals.MeanATR(window)
	if !ok {
		return fmt.Errorf("atr: %w", models.ErrDataUnavailable)
	}
	tick, err := l.d.Feed.FetchTick(ctx, l.symbol)
	if err != nil {
		return fmt.Errorf("tick: %w", err)
	}

	sl, tp := InitialStops(side, tick, atr)
	sl, tp = roundStops(side, sl, tp, info.Point)

	if l.cfg.ConfirmEntries {
		prompt := fmt.Sprintf("📈 %s %s score=%d\nSL=%.5f TP=%.5f ATR=%.5f", l.symbol, side, score, sl, tp, atr)
		if !l.d.Notifier.Confirm(ctx, prompt, l.cfg.ConfirmTimeout) {
			logger.Info("[LOOP] %s %s entry declined", l.symbol, side)
			return nil
		}
	}

	entry := tick.Ask
	if side == models.SideSell {
		entry = tick.Bid
	}
	lc := newOrderLifecycle(l.symbol, side, volume, info, l.d, l.cfg)
	err = lc.Open(ctx, models.Trade{
		Symbol:     l.symbol,
		Side:       side,
		Volume:     volume,
		EntryPrice: entry,
		StopLoss:   sl,
		TakeProfit: tp,
		ATR:        atr,
		Score:      score,
	})
	if err != nil {
		if errors.Is(err, models.ErrOrderRejected) {
			l.d.Notifier.Sendf("⚠️ [%s] %s отклонён: %v", l.symbol, side, err)
		}
		return err
	}

	l.state.Set(side, true)
	l.watchers.Go(func() error {
		lc.Watch(ctx)
		return nil
	})
	return nil
}

// replacePending снимает все отложенные ордера инструмента и ставит заново по
// свежим зонам.
func (l *StrategyLoop) replacePending(ctx context.Context) error {
	existing, err := l.d.Broker.PendingOrders(ctx, l.symbol)
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}
	for _, o := range existing {
		if err := l.d.Broker.CancelOrder(ctx, o.ID); err != nil {
			logger.Warn("[PENDING] %s cancel #%s: %v", l.symbol, o.ID, err)
		}
	}
	if len(l.regions) == 0 {
		return nil
	}

	info, err := l.symbolInfo(ctx)
	if err != nil {
		return err
	}
	tick, err := l.d.Feed.FetchTick(ctx, l.symbol)
	if err != nil {
		return fmt.Errorf("tick: %w", err)
	}

	for _, r := range l.regions {
		kind, price, ok := PendingFor(r, tick.Ask)
		if !ok {
			continue
		}
		sl, tp := PendingStops(kind, price, l.cfg.PendingSLPct, l.cfg.PendingTPPct)
		sl, tp = roundStops(kind.Side(), sl, tp, info.Point)
		_, err := l.d.Broker.SubmitPendingOrder(ctx, models.PendingOrder{
			Symbol:     l.symbol,
			Kind:       kind,
			Price:      price,
			StopLoss:   sl,
			TakeProfit: tp,
			Volume:     l.volume(info),
		})
		if err != nil {
			metrics.OrdersSubmitted.WithLabelValues(l.symbol, kind.String(), "rejected").Inc()
			logger.Warn("[PENDING] %s %s @ %.5f: %v", l.symbol, kind, price, err)
			continue
		}
		metrics.OrdersSubmitted.WithLabelValues(l.symbol, kind.String(), "ok").Inc()
	}
	return nil
}

// LastPhase: для логов и тестов, читать только после Run.
func (l *StrategyLoop) LastPhase() Phase { return l.phase }

// State: копия флагов, читать только после Run.
func (l *StrategyLoop) State() SymbolState { return l.state }
