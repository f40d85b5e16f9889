package helper

import (
	"fmt"
	"math"
	"strings"

	"scalper_bot/internal/models"
)

// ParseTimeframe принимает "5m", "M5", "candle5m" и т.п.
func ParseTimeframe(raw string) (models.Timeframe, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "candle")
	switch s {
	case "1m", "m1":
		return models.M1, nil
	case "5m", "m5":
		return models.M5, nil
	case "15m", "m15":
		return models.M15, nil
	default:
		return "", fmt.Errorf("unsupported timeframe %q", raw)
	}
}

func RoundDownToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Floor(px/tick + 1e-9)
	return steps * tick
}

func RoundUpToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Ceil(px/tick - 1e-9)
	return steps * tick
}
