package broker

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"scalper_bot/internal/exchange"
	"scalper_bot/internal/modules/config"
	"scalper_bot/internal/modules/health/service"
	"scalper_bot/internal/runner"
	"scalper_bot/pkg/logger"
)

func newFeed(c *exchange.Client, rdb *goredis.Client, cfg *config.Config) runner.MarketDataFeed {
	if rdb == nil {
		return c
	}
	return exchange.NewCachingFeed(rdb, c, exchange.DefaultCandleTTL(), cfg.Redis.Namespace)
}

// Module поднимает клиента моста и поток котировок.
func Module() fx.Option {
	return fx.Module("broker",
		fx.Provide(
			func(cfg *config.Config) *exchange.Client {
				return exchange.NewClient(cfg.ExchangeConfig())
			},
			func(c *exchange.Client) runner.BrokerGateway { return c },
			newFeed,
		),
		fx.Invoke(func(lc fx.Lifecycle, c *exchange.Client, cfg *config.Config, state *service.State) {
			if cfg.Broker.WSURL == "" {
				logger.Info("[WS] tick stream disabled, REST only")
				return
			}
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})

			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					ticks := c.StreamTicks(ctx, cfg.Symbols, state.SetWSConnected)
					go func() {
						defer close(done)
						for t := range ticks {
							state.TouchTick(t.Time)
						}
					}()
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					cancel()
					select {
					case <-done:
					case <-stopCtx.Done():
					}
					return nil
				},
			})
		}),
	)
}
