package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/fx"

	"scalper_bot/internal/journal"
	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/broker"
	"scalper_bot/internal/modules/config"
	"scalper_bot/internal/modules/health"
	"scalper_bot/internal/modules/postgres"
	"scalper_bot/internal/modules/redis"
	"scalper_bot/internal/modules/strategy"
	"scalper_bot/internal/modules/supervisor"
	telegram "scalper_bot/internal/modules/telegram_bot"
	"scalper_bot/pkg/logger"
	"scalper_bot/pkg/tracing"
)

const serviceName = "scalper_bot"

func setupObservability(lc fx.Lifecycle, cfg *config.Config) error {
	logger.SetServiceName(serviceName)
	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}
	if !cfg.Tracing.Enabled {
		return nil
	}

	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		ServiceName: serviceName,
		Host:        cfg.Tracing.Host,
		Port:        cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			logger.Sync()
			return nil
		},
	})
	return nil
}

func main() {
	app := fx.New(
		fx.NopLogger,
		config.Module(),
		fx.Module("observability", fx.Invoke(setupObservability)),
		health.Module(),
		postgres.Module(),
		redis.Module(),
		journal.Module(),
		broker.Module(),
		strategy.Module(),
		telegram.Module(),
		supervisor.Module(),
	)
	if err := app.Err(); err != nil {
		if models.IsFatal(err) {
			log.Printf("configuration: %v", err)
			os.Exit(2)
		}
		log.Fatal(err)
	}
	app.Run()
}
