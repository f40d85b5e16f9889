package exchange

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"scalper_bot/internal/models"
)

// FetchCandles: последние count свечей, от старой к новой.
func (c *Client) FetchCandles(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]models.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("timeframe", string(tf))
	q.Set("count", strconv.Itoa(count))

	var rows []candleDTO
	if err := c.read(ctx, "/api/v1/candles", q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no %s candles for %s", models.ErrDataUnavailable, tf, symbol)
	}

	out := make([]models.Candle, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

// FetchTick отдаёт цену из WS-кэша, пока она свежая, иначе идёт в REST.
func (c *Client) FetchTick(ctx context.Context, symbol string) (models.Tick, error) {
	if t, ok := c.cachedTick(symbol); ok {
		return t, nil
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	var dto tickDTO
	if err := c.read(ctx, "/api/v1/tick", q, &dto); err != nil {
		return models.Tick{}, err
	}
	if dto.Symbol == "" {
		dto.Symbol = symbol
	}
	if dto.Ask <= 0 || dto.Bid <= 0 {
		return models.Tick{}, fmt.Errorf("%w: empty tick for %s", models.ErrDataUnavailable, symbol)
	}
	return dto.model(), nil
}

func (c *Client) SymbolInfo(ctx context.Context, symbol string) (models.SymbolInfo, error) {
	var dto symbolDTO
	if err := c.read(ctx, "/api/v1/symbols/"+url.PathEscape(symbol), nil, &dto); err != nil {
		return models.SymbolInfo{}, err
	}
	return models.SymbolInfo{Symbol: symbol, VolumeMin: dto.VolumeMin, Point: dto.Point}, nil
}
