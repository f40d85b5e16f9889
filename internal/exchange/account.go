package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"scalper_bot/internal/models"
)

// GetOpenPosition ищет позицию по тикету ордера, которым она открыта.
// 404 от моста означает, что позиция закрыта.
func (c *Client) GetOpenPosition(ctx context.Context, orderID string) (models.Position, error) {
	var dto positionDTO
	err := c.do(ctx, http.MethodGet, "/api/v1/positions/"+url.PathEscape(orderID), nil, nil, &dto)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return models.Position{}, fmt.Errorf("%w: ticket %s", models.ErrPositionNotFound, orderID)
		}
		return models.Position{}, fmt.Errorf("%w: position %s: %v", models.ErrDataUnavailable, orderID, err)
	}
	if dto.Ticket == "" {
		return models.Position{}, fmt.Errorf("%w: ticket %s", models.ErrPositionNotFound, orderID)
	}
	return dto.model()
}

func (c *Client) GetOpenPositions(ctx context.Context, symbol string) ([]models.Position, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var rows []positionDTO
	if err := c.read(ctx, "/api/v1/positions", q, &rows); err != nil {
		return nil, err
	}
	out := make([]models.Position, 0, len(rows))
	for _, r := range rows {
		p, err := r.model()
		if err != nil {
			return nil, fmt.Errorf("%w: position %s: %v", models.ErrDataUnavailable, r.Ticket, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ComputeMargin: маржа, которую брокер зарезервирует под ордер.
func (c *Client) ComputeMargin(ctx context.Context, side models.Side, symbol string, volume float64) (float64, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("type", side.String())
	q.Set("volume", strconv.FormatFloat(volume, 'f', -1, 64))

	var dto marginDTO
	if err := c.read(ctx, "/api/v1/margin", q, &dto); err != nil {
		return 0, err
	}
	return dto.Margin, nil
}

func (c *Client) GetFreeMargin(ctx context.Context) (float64, error) {
	var dto accountDTO
	if err := c.read(ctx, "/api/v1/account", nil, &dto); err != nil {
		return 0, err
	}
	return dto.MarginFree, nil
}
