package telegram

import (
	"context"

	"go.uber.org/fx"

	"scalper_bot/internal/journal"
	"scalper_bot/internal/modules/config"
	"scalper_bot/internal/notify"
	"scalper_bot/internal/runner"
	"scalper_bot/pkg/logger"
)

type params struct {
	fx.In

	Cfg     *config.Config
	Broker  runner.BrokerGateway
	Journal *journal.PG
}

func newNotifier(lc fx.Lifecycle, p params) (runner.Notifier, error) {
	if p.Cfg.Telegram.Token == "" || p.Cfg.Telegram.ChatID == 0 {
		logger.Info("[TG] token or chat id missing, notifications go to log")
		return notify.NewStdout(), nil
	}

	tg, err := notify.NewTelegram(p.Cfg.Telegram.Token, p.Cfg.Telegram.ChatID, p.Cfg.Symbols, p.Broker)
	if err != nil {
		return nil, err
	}
	if p.Journal != nil {
		tg.WithTrades(p.Journal)
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return tg.Start(ctx)
		},
		OnStop: func(context.Context) error {
			cancel()
			tg.Stop()
			return nil
		},
	})
	return tg, nil
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(newNotifier),
	)
}
