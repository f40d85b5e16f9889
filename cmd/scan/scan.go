package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"scalper_bot/internal/models"
	"scalper_bot/internal/strategy"
)

type feed interface {
	FetchCandles(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]models.Candle, error)
}

type scanOptions struct {
	Timeframe      models.Timeframe
	DecisionWindow int     // свечей для индикаторов
	RegionWindow   int     // свечей для грубого поиска зон
	RegionK        float64 // чувствительность грубого поиска
}

type scanResult struct {
	Symbol   string
	Decision models.Vote
	Regions  []models.PriceRegion
	Err      error
}

// scanMarket: разовый проход по инструментам: решение 2 из 3 и зоны.
// Ошибка по одному инструменту попадает в его результат, остальные считаются.
func scanMarket(ctx context.Context, f feed, agg *strategy.Aggregator, symbols []string, opt scanOptions) []scanResult {
	out := make([]scanResult, 0, len(symbols))
	for _, sym := range symbols {
		res := scanResult{Symbol: sym}

		candles, err := f.FetchCandles(ctx, sym, opt.Timeframe, opt.DecisionWindow)
		if err != nil {
			res.Err = errors.Wrapf(err, "fetch %s decision window", sym)
			out = append(out, res)
			continue
		}
		res.Decision = agg.MarketDecision(candles)
		res.Regions = strategy.DetectRegions(tailCandles(candles, opt.RegionWindow), opt.RegionK)
		out = append(out, res)
	}
	return out
}

func tailCandles(c []models.Candle, n int) []models.Candle {
	if n <= 0 || len(c) <= n {
		return c
	}
	return c[len(c)-n:]
}

func printResults(w io.Writer, results []scanResult) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%-10s ERROR %v\n", r.Symbol, r.Err)
			continue
		}
		regions := make([]string, 0, len(r.Regions))
		for _, reg := range r.Regions {
			regions = append(regions, fmt.Sprintf("%s[%.5f,%.5f]", reg.Side, reg.Lower, reg.Upper))
		}
		fmt.Fprintf(w, "%-10s %-5s %s\n", r.Symbol, r.Decision, strings.Join(regions, " "))
	}
}
