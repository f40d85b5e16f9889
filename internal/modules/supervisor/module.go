package supervisor

import (
	"context"

	"go.uber.org/fx"

	"scalper_bot/internal/journal"
	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/config"
	"scalper_bot/internal/modules/health/service"
	"scalper_bot/internal/notify"
	"scalper_bot/internal/runner"
	"scalper_bot/internal/strategy"
	"scalper_bot/pkg/logger"
)

type params struct {
	fx.In

	Cfg      *config.Config
	Feed     runner.MarketDataFeed
	Broker   runner.BrokerGateway
	Signals  *strategy.Aggregator
	Notifier runner.Notifier
	Journal  *journal.PG
	State    *service.State
}

func newSupervisor(p params) (*runner.Supervisor, error) {
	d := runner.Deps{
		Feed:     p.Feed,
		Broker:   p.Broker,
		Signals:  p.Signals,
		Clock:    runner.RealClock{},
		Notifier: p.Notifier,
		Reporter: p.State,
	}
	if p.Journal != nil {
		d.Journal = p.Journal
	}
	return runner.NewSupervisor(p.Cfg.Symbols, d, p.Cfg.RunnerConfig())
}

// attachStatus отдаёт /status живой список циклов супервизора.
func attachStatus(n runner.Notifier, s *runner.Supervisor) bool {
	tg, ok := n.(*notify.Telegram)
	if !ok || tg == nil {
		return false
	}
	tg.WithStatus(s)
	return true
}

func Module() fx.Option {
	return fx.Module("supervisor",
		fx.Provide(newSupervisor),
		fx.Invoke(func(n runner.Notifier, s *runner.Supervisor) {
			attachStatus(n, s)
		}),
		fx.Invoke(func(lc fx.Lifecycle, s *runner.Supervisor, state *service.State, shutdowner fx.Shutdowner) {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})

			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						defer close(done)
						if err := s.Run(ctx); err != nil {
							logger.Error("[SUPERVISOR] %v", err)
							if models.IsFatal(err) {
								_ = shutdowner.Shutdown(fx.ExitCode(1))
							}
						}
					}()
					state.SetReady(true)
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					state.SetReady(false)
					cancel()
					select {
					case <-done:
					case <-stopCtx.Done():
						logger.Warn("[SUPERVISOR] stop timeout, loops still running")
					}
					return nil
				},
			})
		}),
	)
}
