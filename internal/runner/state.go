package runner

import "scalper_bot/internal/models"

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseEvaluating Phase = "evaluating"
	PhaseOpening    Phase = "opening"
	PhaseWaiting    Phase = "waiting"

	PhaseOpened   Phase = "opened"
	PhaseWatching Phase = "watching"
	PhaseClosed   Phase = "closed"
)

// SymbolState: флаги открытых направлений по инструменту.
// Живёт внутри одного StrategyLoop, наружу не отдаётся.
type SymbolState struct {
	BuyOpen  bool
	SellOpen bool
}

func (s SymbolState) Open(side models.Side) bool {
	if side == models.SideBuy {
		return s.BuyOpen
	}
	return s.SellOpen
}

func (s *SymbolState) Set(side models.Side, v bool) {
	if side == models.SideBuy {
		s.BuyOpen = v
		return
	}
	s.SellOpen = v
}

func (s SymbolState) Both() bool { return s.BuyOpen && s.SellOpen }

// stateFromPositions: реконсиляция флагов по фактическим позициям брокера.
func stateFromPositions(positions []models.Position) SymbolState {
	var s SymbolState
	for _, p := range positions {
		s.Set(p.Side, true)
	}
	return s
}
