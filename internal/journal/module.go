package journal

import (
	"context"

	"go.uber.org/fx"

	"scalper_bot/pkg/db"
)

// Module отдаёт *PG или nil, если postgres не настроен.
func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			func(lc fx.Lifecycle, tx *db.PgTxManager) *PG {
				if tx == nil {
					return nil
				}
				j := NewPG(tx)
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return j.Migrate(ctx)
					},
				})
				return j
			},
		),
	)
}
