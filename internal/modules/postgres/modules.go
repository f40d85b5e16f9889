package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"scalper_bot/internal/modules/config"
	"scalper_bot/pkg/db"
	"scalper_bot/pkg/logger"
)

// Module отдаёт менеджер транзакций. Без DSN: nil, журнал выключен.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(lc fx.Lifecycle, cfg *config.Config) (*db.PgTxManager, error) {
				if cfg.DB == "" {
					logger.Info("[PG] disabled")
					return nil, nil
				}
				poolMaster, err := db.NewPool(context.Background(), db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}
				m := db.NewPgTxManager(poolMaster)

				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return poolMaster.Ping(ctx)
					},
					OnStop: func(context.Context) error {
						m.Close()
						return nil
					},
				})
				return m, nil
			},
		),
	)
}
