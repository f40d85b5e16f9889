package strategy

import (
	"math"

	"scalper_bot/internal/models"
)

// DetectRegions ищет блок-ордера: свечи с телом не меньше k средних тел окна.
// Для каждой такой свечи i (кроме первой) строится зона:
//
//	low[i-1] <  high[i] -> Buy  [low[i-1], high[i]]
//	иначе               -> Sell [low[i],   low[i-1]]
//
// Каждый вызов возвращает новый набор зон, предыдущий не дополняется.
func DetectRegions(candles []models.Candle, k float64) []models.PriceRegion {
	if len(candles) < 2 {
		return nil
	}

	var total float64
	for _, c := range candles {
		total += math.Abs(c.Close - c.Open)
	}
	mean := total / float64(len(candles))
	if mean == 0 {
		// плоское окно, выделяться нечему
		return nil
	}
	threshold := k * mean

	var out []models.PriceRegion
	for i := 1; i < len(candles); i++ {
		body := math.Abs(candles[i].Close - candles[i].Open)
		if body < threshold {
			continue
		}
		prevLow, blkHigh := candles[i-1].Low, candles[i].High
		if prevLow < blkHigh {
			out = append(out, models.PriceRegion{
				Lower: prevLow,
				Upper: blkHigh,
				Side:  models.SideBuy,
				Index: i,
			})
			continue
		}
		out = append(out, models.PriceRegion{
			Lower: candles[i].Low,
			Upper: prevLow,
			Side:  models.SideSell,
			Index: i,
		})
	}
	return out
}

// SplitRegions разделяет зоны по направлению.
func SplitRegions(regions []models.PriceRegion) (buy, sell []models.PriceRegion) {
	for _, r := range regions {
		if r.Side == models.SideBuy {
			buy = append(buy, r)
		} else {
			sell = append(sell, r)
		}
	}
	return buy, sell
}
