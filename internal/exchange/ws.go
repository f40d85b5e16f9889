package exchange

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"scalper_bot/internal/models"
	"scalper_bot/pkg/logger"
)

const (
	wsPingEvery  = 20 * time.Second
	wsRetryDelay = time.Second
)

// StreamTicks: один WebSocket на все символы. Каждая котировка попадает в кэш
// FetchTick и отдаётся в канал. connected (может быть nil) получает состояние соединения.
func (c *Client) StreamTicks(ctx context.Context, symbols []string, connected func(bool)) <-chan models.Tick {
	ch := make(chan models.Tick, 64)
	go func() {
		defer close(ch)

		if len(symbols) == 0 || c.wsURL == "" {
			return
		}
		setConnected := func(v bool) {
			if connected != nil {
				connected(v)
			}
		}

		sub, err := sonic.Marshal(map[string]any{
			"op":   "subscribe",
			"args": symbols,
		})
		if err != nil {
			logger.Error("[WS] marshal subscribe: %v", err)
			return
		}

		for {
			logger.Info("[WS] connect %s, %d symbols", c.wsURL, len(symbols))
			conn, _, err := c.wsDialer.DialContext(ctx, c.wsURL, nil)
			if err != nil {
				logger.Error("[WS] dial error: %v", err)
				if !sleepCtx(ctx, wsRetryDelay) {
					return
				}
				continue
			}

			if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
				logger.Error("[WS] subscribe error: %v", err)
				_ = conn.Close()
				if !sleepCtx(ctx, wsRetryDelay) {
					return
				}
				continue
			}
			setConnected(true)

			stopPing := make(chan struct{})
			go c.keepAlive(ctx, conn, stopPing)

			// закрываем соединение по отмене контекста, чтобы разблокировать ReadMessage
			stopWatch := context.AfterFunc(ctx, func() { _ = conn.Close() })

			c.readTicks(ctx, conn, ch)

			stopWatch()
			close(stopPing)
			_ = conn.Close()
			setConnected(false)

			if !sleepCtx(ctx, wsRetryDelay) {
				return
			}
		}
	}()
	return ch
}

func (c *Client) keepAlive(ctx context.Context, conn *websocket.Conn, stop <-chan struct{}) {
	t := time.NewTicker(wsPingEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-t.C:
			_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		}
	}
}

func (c *Client) readTicks(ctx context.Context, conn *websocket.Conn, out chan<- models.Tick) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("[WS] read error: %v", err)
			}
			return
		}

		var frame struct {
			Channel string    `json:"channel"`
			Data    []tickDTO `json:"data"`
		}
		if err := sonic.Unmarshal(msg, &frame); err != nil || frame.Channel != "ticks" {
			continue
		}
		for _, d := range frame.Data {
			if d.Symbol == "" || d.Bid <= 0 || d.Ask <= 0 {
				continue
			}
			t := d.model()
			if d.TimeMs == 0 {
				t.Time = c.now().UTC()
			}
			c.SetTick(t)
			select {
			case out <- t:
			case <-ctx.Done():
				return
			default:
				// потребитель не успевает, кэш уже обновлён
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
