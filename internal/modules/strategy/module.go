package strategy

import (
	"go.uber.org/fx"

	"scalper_bot/internal/indicator"
	"scalper_bot/internal/modules/config"
	"scalper_bot/internal/strategy"
)

// Module собирает агрегатор сигналов поверх go-talib.
func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			func() strategy.Indicators { return indicator.NewTalib() },
			func(ind strategy.Indicators, cfg *config.Config) *strategy.Aggregator {
				return strategy.NewAggregator(ind, cfg.StrategyConfig())
			},
		),
	)
}
