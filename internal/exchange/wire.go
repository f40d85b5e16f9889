package exchange

import (
	"time"

	"scalper_bot/internal/models"
)

type candleDTO struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume float64 `json:"tick_volume"`
}

func (d candleDTO) model() models.Candle {
	return models.Candle{
		Time:       time.Unix(d.Time, 0).UTC(),
		Open:       d.Open,
		High:       d.High,
		Low:        d.Low,
		Close:      d.Close,
		TickVolume: d.TickVolume,
	}
}

type tickDTO struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	TimeMs int64   `json:"time_msc"`
}

func (d tickDTO) model() models.Tick {
	return models.Tick{
		Symbol: d.Symbol,
		Bid:    d.Bid,
		Ask:    d.Ask,
		Time:   time.UnixMilli(d.TimeMs).UTC(),
	}
}

type symbolDTO struct {
	Symbol    string  `json:"symbol"`
	VolumeMin float64 `json:"volume_min"`
	Point     float64 `json:"point"`
}

type marketOrderReq struct {
	Symbol string  `json:"symbol"`
	Type   string  `json:"type"`
	Volume float64 `json:"volume"`
	SL     float64 `json:"sl"`
	TP     float64 `json:"tp"`
}

type pendingOrderDTO struct {
	Ticket string  `json:"ticket,omitempty"`
	Symbol string  `json:"symbol"`
	Type   string  `json:"type"`
	Price  float64 `json:"price"`
	SL     float64 `json:"sl"`
	TP     float64 `json:"tp"`
	Volume float64 `json:"volume"`
}

type orderResp struct {
	Order string `json:"order"`
}

type sltpReq struct {
	SL float64 `json:"sl"`
	TP float64 `json:"tp"`
}

type positionDTO struct {
	Ticket       string  `json:"ticket"`
	Symbol       string  `json:"symbol"`
	Type         string  `json:"type"`
	Volume       float64 `json:"volume"`
	PriceOpen    float64 `json:"price_open"`
	PriceCurrent float64 `json:"price_current"`
	SL           float64 `json:"sl"`
	TP           float64 `json:"tp"`
	Profit       float64 `json:"profit"`
}

func (d positionDTO) model() (models.Position, error) {
	side, err := models.ParseSide(d.Type)
	if err != nil {
		return models.Position{}, err
	}
	return models.Position{
		Symbol:       d.Symbol,
		Side:         side,
		Volume:       d.Volume,
		EntryPrice:   d.PriceOpen,
		CurrentPrice: d.PriceCurrent,
		StopLoss:     d.SL,
		TakeProfit:   d.TP,
		OrderID:      d.Ticket,
		Profit:       d.Profit,
	}, nil
}

type marginDTO struct {
	Margin float64 `json:"margin"`
}

type accountDTO struct {
	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	MarginFree float64 `json:"margin_free"`
}
