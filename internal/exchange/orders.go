package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"scalper_bot/internal/models"
)

// SubmitMarketOrder открывает позицию по рынку и возвращает тикет ордера.
func (c *Client) SubmitMarketOrder(ctx context.Context, o models.MarketOrder) (string, error) {
	if !o.Side.Valid() {
		return "", &models.OrderRejectedError{Reason: "invalid side"}
	}
	req := marketOrderReq{
		Symbol: o.Symbol,
		Type:   o.Side.String(),
		Volume: o.Volume,
		SL:     o.StopLoss,
		TP:     o.TakeProfit,
	}
	var resp orderResp
	if err := c.write(ctx, http.MethodPost, "/api/v1/orders/market", req, &resp); err != nil {
		return "", err
	}
	if resp.Order == "" {
		return "", &models.OrderRejectedError{Reason: "empty order ticket"}
	}
	return resp.Order, nil
}

func (c *Client) SubmitPendingOrder(ctx context.Context, o models.PendingOrder) (string, error) {
	req := pendingOrderDTO{
		Symbol: o.Symbol,
		Type:   o.Kind.String(),
		Price:  o.Price,
		SL:     o.StopLoss,
		TP:     o.TakeProfit,
		Volume: o.Volume,
	}
	var resp orderResp
	if err := c.write(ctx, http.MethodPost, "/api/v1/orders/pending", req, &resp); err != nil {
		return "", err
	}
	return resp.Order, nil
}

// PendingOrders: отложенные ордера по символу.
func (c *Client) PendingOrders(ctx context.Context, symbol string) ([]models.PendingOrder, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var rows []pendingOrderDTO
	if err := c.read(ctx, "/api/v1/orders", q, &rows); err != nil {
		return nil, err
	}

	out := make([]models.PendingOrder, 0, len(rows))
	for _, r := range rows {
		kind, err := models.ParsePendingKind(r.Type)
		if err != nil {
			// рыночные и прочие типы нас не интересуют
			continue
		}
		out = append(out, models.PendingOrder{
			ID:         r.Ticket,
			Symbol:     r.Symbol,
			Kind:       kind,
			Price:      r.Price,
			StopLoss:   r.SL,
			TakeProfit: r.TP,
			Volume:     r.Volume,
		})
	}
	return out, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return fmt.Errorf("cancel order: empty id")
	}
	return c.write(ctx, http.MethodDelete, "/api/v1/orders/"+url.PathEscape(orderID), nil, nil)
}

func (c *Client) ModifyStopLossTakeProfit(ctx context.Context, orderID string, sl, tp float64) error {
	path := "/api/v1/positions/" + url.PathEscape(orderID) + "/sltp"
	err := c.do(ctx, http.MethodPut, path, nil, sltpReq{SL: sl, TP: tp}, nil)
	var ae *apiError
	if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
		// позиция закрылась между опросом и модификацией
		return fmt.Errorf("%w: ticket %s", models.ErrPositionNotFound, orderID)
	}
	return classifyWrite(http.MethodPut, path, err)
}
