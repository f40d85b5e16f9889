package service

import (
	"sync"
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	wsConnected  atomic.Bool
	lastTickUnix atomic.Int64 // unix seconds

	mu         sync.RWMutex
	lastCycles map[string]time.Time // symbol -> последний завершённый цикл
}

func NewState() *State {
	s := &State{
		startedAt:  time.Now(),
		lastCycles: make(map[string]time.Time),
	}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

func (s *State) TouchTick(t time.Time) { s.lastTickUnix.Store(t.Unix()) }
func (s *State) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

// TouchCycle отмечает завершённый цикл стратегии по инструменту.
func (s *State) TouchCycle(symbol string, at time.Time) {
	s.mu.Lock()
	s.lastCycles[symbol] = at
	s.mu.Unlock()
}

// StaleSymbols: инструменты, чей цикл не отмечался дольше maxAge.
func (s *State) StaleSymbols(now time.Time, maxAge time.Duration) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for sym, at := range s.lastCycles {
		if now.Sub(at) > maxAge {
			out = append(out, sym)
		}
	}
	return out
}

func (s *State) LastCycles() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.lastCycles))
	for sym, at := range s.lastCycles {
		out[sym] = at.Unix()
	}
	return out
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
