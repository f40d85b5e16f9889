package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"scalper_bot/internal/models"
	"scalper_bot/pkg/logger"
)

// Supervisor держит по одному StrategyLoop на инструмент.
type Supervisor struct {
	d       Deps
	cfg     Config
	symbols []string

	mu      sync.Mutex
	running map[string]*StrategyLoop
}

func NewSupervisor(symbols []string, d Deps, cfg Config) (*Supervisor, error) {
	if len(symbols) == 0 {
		return nil, &models.ConfigError{Field: "symbols", Reason: "empty"}
	}
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if s == "" {
			return nil, &models.ConfigError{Field: "symbols", Reason: "empty symbol"}
		}
		if _, dup := seen[s]; dup {
			return nil, &models.ConfigError{Field: "symbols", Reason: fmt.Sprintf("duplicate %q", s)}
		}
		seen[s] = struct{}{}
	}
	if cfg.Interval <= 0 || cfg.PollInterval <= 0 {
		return nil, &models.ConfigError{Field: "interval", Reason: "must be positive"}
	}
	return &Supervisor{
		d:       d.withDefaults(),
		cfg:     cfg,
		symbols: symbols,
		running: make(map[string]*StrategyLoop, len(symbols)),
	}, nil
}

// Run запускает циклы всех инструментов и ждёт, пока отмена ctx не остановит
// их вместе с наблюдателями позиций. Сбой одного инструмента другие не трогает.
func (s *Supervisor) Run(ctx context.Context) error {
	var g errgroup.Group
	for _, symbol := range s.symbols {
		loop := NewStrategyLoop(symbol, s.d, s.cfg)

		s.mu.Lock()
		s.running[symbol] = loop
		s.mu.Unlock()

		g.Go(func() error {
			defer func() {
				s.mu.Lock()
				delete(s.running, symbol)
				s.mu.Unlock()
			}()
			return loop.Run(ctx)
		})
	}
	logger.Info("[SUPERVISOR] %d symbols running", len(s.symbols))
	err := g.Wait()
	logger.Info("[SUPERVISOR] all loops stopped")
	return err
}

// Running: инструменты с живым циклом, по алфавиту.
func (s *Supervisor) Running() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.running))
	for sym := range s.running {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
