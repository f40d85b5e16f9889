package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"scalper_bot/internal/modules/config"
	"scalper_bot/pkg/logger"
)

// Module отдаёт клиента redis. Без адреса в конфиге: nil, кэш свечей выключен.
func Module() fx.Option {
	return fx.Module("redis",
		fx.Provide(
			func(lc fx.Lifecycle, cfg *config.Config) (*goredis.Client, error) {
				if cfg.Redis.Addr == "" {
					logger.Info("[REDIS] disabled")
					return nil, nil
				}
				rdb := goredis.NewClient(&goredis.Options{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						if err := rdb.Ping(ctx).Err(); err != nil {
							return fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
						}
						return nil
					},
					OnStop: func(context.Context) error {
						return rdb.Close()
					},
				})
				return rdb, nil
			},
		),
	)
}
