package runner

import (
	"github.com/shopspring/decimal"

	"scalper_bot/internal/helper"
	"scalper_bot/internal/models"
)

const (
	initialSLATR = 2.0
	initialTPATR = 1.5

	ratchetSLATR = 1.5
	ratchetTPATR = 2.0

	buyRatchetTrigger  = 0.8
	sellRatchetTrigger = 0.6
)

// InitialStops считает SL/TP рыночного входа от котировки и ATR.
// Buy: SL = ask - 2*ATR, TP = bid + 1.5*ATR. Sell зеркально.
func InitialStops(side models.Side, tick models.Tick, atr float64) (sl, tp float64) {
	if side == models.SideBuy {
		return tick.Ask - initialSLATR*atr, tick.Bid + initialTPATR*atr
	}
	return tick.Bid + initialSLATR*atr, tick.Ask - initialTPATR*atr
}

// PendingFor выбирает тип отложенного ордера для зоны при текущем ask.
// Цена внутри зоны: ничего не ставим.
func PendingFor(r models.PriceRegion, ask float64) (models.PendingKind, float64, bool) {
	switch r.Side {
	case models.SideBuy:
		if ask <= r.Lower {
			return models.StopBuy, r.Lower, true
		}
		if ask >= r.Upper {
			return models.LimitBuy, r.Lower, true
		}
	case models.SideSell:
		if ask <= r.Lower {
			return models.LimitSell, r.Upper, true
		}
		if ask >= r.Upper {
			return models.StopSell, r.Upper, true
		}
	}
	return 0, 0, false
}

// PendingStops: процентные SL/TP отложенного ордера от цены срабатывания.
func PendingStops(kind models.PendingKind, price, slPct, tpPct float64) (sl, tp float64) {
	if kind.Side() == models.SideBuy {
		return price * (1 - slPct/100), price * (1 + tpPct/100)
	}
	return price * (1 + slPct/100), price * (1 - tpPct/100)
}

// RatchetTriggered: Buy: прибыль >= 0.8 расстояния до TP, Sell: >= 0.6.
func RatchetTriggered(p models.Position) bool {
	if p.TakeProfit <= 0 {
		return false
	}
	if p.Side == models.SideBuy {
		return p.Profit >= buyRatchetTrigger*(p.TakeProfit-p.CurrentPrice)
	}
	return p.Profit >= sellRatchetTrigger*(p.CurrentPrice-p.TakeProfit)
}

// RatchetStops переносит SL за цену открытия с учётом маржи и сдвигает TP дальше.
func RatchetStops(p models.Position, margin, atr float64) (sl, tp float64) {
	if p.Side == models.SideBuy {
		return p.EntryPrice + margin + ratchetSLATR*atr, p.TakeProfit + ratchetTPATR*atr
	}
	return p.EntryPrice - margin - ratchetSLATR*atr, p.TakeProfit - ratchetTPATR*atr
}

// improves: SL двигается только в сторону прибыли и минимум на minStep.
func improves(side models.Side, oldSL, newSL, minStep float64) bool {
	if oldSL == 0 {
		return true
	}
	if side == models.SideBuy {
		return newSL-oldSL >= minStep && newSL > oldSL
	}
	return oldSL-newSL >= minStep && newSL < oldSL
}

// roundStops прижимает SL/TP к шагу цены в сторону входа: SL чуть теснее,
// TP чуть ближе, ни один не уходит дальше расчётного уровня.
func roundStops(side models.Side, sl, tp, point float64) (float64, float64) {
	if side == models.SideBuy {
		return helper.RoundUpToTick(sl, point), helper.RoundDownToTick(tp, point)
	}
	return helper.RoundDownToTick(sl, point), helper.RoundUpToTick(tp, point)
}

// MarginAllowed: требуемая маржа не больше ratio свободной. Граница включительно.
func MarginAllowed(required, free, ratio float64) bool {
	ceiling := decimal.NewFromFloat(free).Mul(decimal.NewFromFloat(ratio))
	return decimal.NewFromFloat(required).LessThanOrEqual(ceiling)
}
