package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"scalper_bot/internal/models"
)

type Config struct {
	BaseURL   string
	WSURL     string
	APIKey    string
	APISecret string
	Timeout   time.Duration
	// TickTTL: сколько цена из WS считается свежей для FetchTick.
	TickTTL time.Duration
}

// Client: REST/WS клиент торгового моста терминала.
// Безопасен для одновременного использования из всех циклов.
type Client struct {
	mu    sync.RWMutex
	ticks map[string]models.Tick

	http     *http.Client
	wsDialer *websocket.Dialer

	baseURL   string
	wsURL     string
	apiKey    string
	apiSecret string
	tickTTL   time.Duration
	now       func() time.Time
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		ticks:     make(map[string]models.Tick),
		http:      &http.Client{Timeout: timeout},
		wsDialer:  &websocket.Dialer{HandshakeTimeout: timeout},
		baseURL:   cfg.BaseURL,
		wsURL:     cfg.WSURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		tickTTL:   cfg.TickTTL,
		now:       time.Now,
	}
}

// envelope: общий формат ответа моста.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// apiError: ответ моста с ошибкой (HTTP или code != 0).
type apiError struct {
	Status int
	Code   int
	Msg    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("bridge error: http=%d code=%d msg=%s", e.Status, e.Code, e.Msg)
}

func (e *apiError) clientSide() bool {
	return e.Status/100 == 4 || (e.Status/100 == 2 && e.Code != 0)
}

func (c *Client) sign(ts, method, path, body string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(ts + method + path + body))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Client) generateRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	requestPath := path
	if len(query) > 0 {
		requestPath += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	ts := strconv.FormatInt(c.now().UTC().UnixMilli(), 10)
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("X-API-TIMESTAMP", ts)
	req.Header.Set("X-API-SIGN", c.sign(ts, method, requestPath, string(body)))
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do выполняет подписанный запрос и раскладывает data в out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", path, err)
		}
		payload = b
	}

	req, err := c.generateRequest(ctx, method, path, query, payload)
	if err != nil {
		return fmt.Errorf("new request %s: %w", path, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var env envelope
	if len(rb) > 0 {
		if err := sonic.Unmarshal(rb, &env); err != nil && resp.StatusCode/100 == 2 {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if resp.StatusCode/100 != 2 || env.Code != 0 {
		msg := env.Msg
		if msg == "" {
			msg = string(rb)
		}
		return &apiError{Status: resp.StatusCode, Code: env.Code, Msg: msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

// read: запрос за данными: любая ошибка превращается в ErrDataUnavailable.
func (c *Client) read(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.do(ctx, http.MethodGet, path, query, nil, out); err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrDataUnavailable, path, err)
	}
	return nil
}

// write: торговый запрос: отказ моста (4xx / code != 0) это OrderRejected,
// сетевые ошибки и 5xx возвращаются как есть.
func (c *Client) write(ctx context.Context, method, path string, in, out any) error {
	return classifyWrite(method, path, c.do(ctx, method, path, nil, in, out))
}

// classifyWrite: клиентские ошибки моста превращаются в отказ ордера.
func classifyWrite(method, path string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apiError
	if errors.As(err, &ae) && ae.clientSide() {
		return &models.OrderRejectedError{Reason: ae.Msg}
	}
	return fmt.Errorf("%s %s: %w", method, path, err)
}

func (c *Client) SetTick(t models.Tick) {
	c.mu.Lock()
	c.ticks[t.Symbol] = t
	c.mu.Unlock()
}

func (c *Client) cachedTick(symbol string) (models.Tick, bool) {
	if c.tickTTL <= 0 {
		return models.Tick{}, false
	}
	c.mu.RLock()
	t, ok := c.ticks[symbol]
	c.mu.RUnlock()
	if !ok || c.now().Sub(t.Time) > c.tickTTL {
		return models.Tick{}, false
	}
	return t, true
}
