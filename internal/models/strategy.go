package models

import "fmt"

// Vote: решение отдельного индикатора или итоговое решение цикла.
type Vote uint8

const (
	VoteWait Vote = iota
	VoteBuy
	VoteSell
)

func (v Vote) String() string {
	switch v {
	case VoteBuy:
		return "BUY"
	case VoteSell:
		return "SELL"
	default:
		return "WAIT"
	}
}

// Side returns the order side the vote asks for.
func (v Vote) Side() (Side, bool) {
	switch v {
	case VoteBuy:
		return SideBuy, true
	case VoteSell:
		return SideSell, true
	}
	return 0, false
}

// Side: направление позиции. Нулевое значение невалидно.
type Side uint8

const (
	SideBuy Side = iota + 1
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	}
	return fmt.Sprintf("side(%d)", uint8(s))
}

func (s Side) Valid() bool { return s == SideBuy || s == SideSell }

// ParseSide accepts the bridge representation ("buy"/"sell", any case).
func ParseSide(raw string) (Side, error) {
	switch raw {
	case "buy", "BUY", "Buy":
		return SideBuy, nil
	case "sell", "SELL", "Sell":
		return SideSell, nil
	}
	return 0, fmt.Errorf("unknown side %q", raw)
}

// PendingKind: тип отложенного ордера.
type PendingKind uint8

const (
	StopBuy PendingKind = iota + 1
	LimitBuy
	StopSell
	LimitSell
)

func (k PendingKind) String() string {
	switch k {
	case StopBuy:
		return "buy_stop"
	case LimitBuy:
		return "buy_limit"
	case StopSell:
		return "sell_stop"
	case LimitSell:
		return "sell_limit"
	}
	return fmt.Sprintf("pending(%d)", uint8(k))
}

func (k PendingKind) Side() Side {
	if k == StopSell || k == LimitSell {
		return SideSell
	}
	return SideBuy
}

func ParsePendingKind(raw string) (PendingKind, error) {
	for _, k := range []PendingKind{StopBuy, LimitBuy, StopSell, LimitSell} {
		if k.String() == raw {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown pending kind %q", raw)
}

// PriceRegion: зона входа, найденная по блок-ордеру.
// Index: свеча, из которой получена зона.
type PriceRegion struct {
	Lower float64
	Upper float64
	Side  Side
	Index int
}
