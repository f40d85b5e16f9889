package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"scalper_bot/internal/journal"
	"scalper_bot/internal/models"
	"scalper_bot/pkg/logger"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
	Confirm(ctx context.Context, prompt string, timeout time.Duration) bool
}

// PositionLister: источник открытых позиций для /positions.
type PositionLister interface {
	GetOpenPositions(ctx context.Context, symbol string) ([]models.Position, error)
}

// TradeLister: источник истории для /trades. Может отсутствовать.
type TradeLister interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// StatusSource: список инструментов с живым циклом для /status.
type StatusSource interface {
	Running() []string
}

// Telegram: пассивный нотифайер + команды /positions, /trades, /status.
type Telegram struct {
	bot     *tgbot.BotAPI
	chatID  int64
	symbols []string

	positions PositionLister
	trades    TradeLister
	status    StatusSource

	mu       sync.Mutex
	pendings map[string]*pending
}

type pending struct {
	ch     chan bool
	msgID  int
	prompt string
}

func NewTelegram(token string, chatID int64, symbols []string, positions PositionLister) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:       b,
		chatID:    chatID,
		symbols:   symbols,
		positions: positions,
		pendings:  make(map[string]*pending),
	}, nil
}

func (t *Telegram) WithTrades(tl TradeLister) *Telegram  { t.trades = tl; return t }
func (t *Telegram) WithStatus(ss StatusSource) *Telegram { t.status = ss; return t }

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		logger.Warn("[TG] send: %v", err)
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// HandleCallback должен вызываться из Start() для callback_query.
func (t *Telegram) HandleCallback(cb *tgbot.CallbackQuery) {
	if t == nil || t.bot == nil || cb == nil {
		return
	}

	// ответ Telegram для остановки спиннера
	_, _ = t.bot.Request(tgbot.NewCallback(cb.ID, ""))

	verb, token, ok := parseCallback(cb.Data)
	if !ok {
		return
	}

	t.mu.Lock()
	p, ok := t.pendings[token]
	delete(t.pendings, token)
	t.mu.Unlock()
	if !ok {
		return
	}

	accepted := verb == "CONF"
	p.ch <- accepted

	status := "Отклонено"
	emoji := "❌"
	if accepted {
		status = "Подтверждено"
		emoji = "✅"
	}

	_ = t.editReplyMarkupRemove(t.chatID, p.msgID)
	_ = t.editText(t.chatID, p.msgID, fmt.Sprintf("%s\n\n%s %s", p.prompt, emoji, status))
}

// parseCallback разбирает CONF::token / REJ::token.
func parseCallback(data string) (verb, token string, ok bool) {
	verb, token, found := strings.Cut(data, "::")
	if !found || verb == "" || token == "" {
		return "", "", false
	}
	if verb != "CONF" && verb != "REJ" {
		return "", "", false
	}
	return verb, token, true
}

func (t *Telegram) editReplyMarkupRemove(chatID int64, msgID int) error {
	rm := tgbot.InlineKeyboardMarkup{InlineKeyboard: [][]tgbot.InlineKeyboardButton{}}
	edit := tgbot.NewEditMessageReplyMarkup(chatID, msgID, rm)
	_, err := t.bot.Request(edit)
	return err
}

func (t *Telegram) editText(chatID int64, msgID int, text string) error {
	edit := tgbot.NewEditMessageText(chatID, msgID, text)
	_, err := t.bot.Request(edit)
	return err
}

// Confirm: сообщение с кнопками и ожиданием callback.
func (t *Telegram) Confirm(ctx context.Context, prompt string, timeout time.Duration) bool {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return true
	}

	token := fmt.Sprintf("%d", time.Now().UnixNano())
	p := &pending{
		ch:     make(chan bool, 1),
		prompt: prompt,
	}

	btnYes := tgbot.NewInlineKeyboardButtonData("✅ Войти", "CONF::"+token)
	btnNo := tgbot.NewInlineKeyboardButtonData("❌ Пропустить", "REJ::"+token)
	kb := tgbot.NewInlineKeyboardMarkup(tgbot.NewInlineKeyboardRow(btnYes, btnNo))

	msg := tgbot.NewMessage(t.chatID, prompt)
	msg.ReplyMarkup = kb

	sent, err := t.bot.Send(msg)
	if err != nil {
		logger.Warn("[TG] confirm send: %v", err)
		return false
	}
	p.msgID = sent.MessageID

	t.mu.Lock()
	t.pendings[token] = p
	t.mu.Unlock()

	tmr := time.NewTimer(timeout)
	defer tmr.Stop()

	var note string
	select {
	case ok := <-p.ch:
		return ok
	case <-tmr.C:
		note = "⏳ Таймаут"
	case <-ctx.Done():
		note = "⛔️ Отменено"
	}

	t.mu.Lock()
	delete(t.pendings, token)
	t.mu.Unlock()
	_ = t.editReplyMarkupRemove(t.chatID, p.msgID)
	_ = t.editText(t.chatID, p.msgID, fmt.Sprintf("%s\n\n%s", prompt, note))
	return false
}

// /positions: открытые позиции по всем инструментам
func (t *Telegram) handlePositions(ctx context.Context) {
	if t.positions == nil {
		t.Send("❗️ Брокер не подключён")
		return
	}
	var all []models.Position
	for _, s := range t.symbols {
		ps, err := t.positions.GetOpenPositions(ctx, s)
		if err != nil {
			t.Sendf("❗️ Ошибка получения позиций %s: %v", s, err)
			return
		}
		all = append(all, ps...)
	}
	t.Send(FormatPositions(all))
}

func (t *Telegram) handleTrades(ctx context.Context) {
	if t.trades == nil {
		t.Send("📭 Журнал сделок отключён")
		return
	}
	entries, err := t.trades.Recent(ctx, 10)
	if err != nil {
		t.Sendf("❗️ Ошибка журнала: %v", err)
		return
	}
	t.Send(FormatTrades(entries))
}

func (t *Telegram) handleStatus() {
	if t.status == nil {
		return
	}
	t.Send(FormatStatus(t.status.Running(), t.symbols))
}

// FormatStatus: сколько циклов из настроенных сейчас работает.
func FormatStatus(running, symbols []string) string {
	return fmt.Sprintf("⚙️ Циклы: %d/%d %s", len(running), len(symbols), strings.Join(running, ", "))
}

func FormatPositions(positions []models.Position) string {
	if len(positions) == 0 {
		return "📭 Открытых позиций нет"
	}
	var b strings.Builder
	b.WriteString("📊 Открытые позиции:\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "- %s [%s] #%s vol=%.2f @ %.5f SL=%.5f TP=%.5f profit=%.2f\n",
			p.Symbol, strings.ToUpper(p.Side.String()), p.OrderID, p.Volume,
			p.EntryPrice, p.StopLoss, p.TakeProfit, p.Profit)
	}
	return b.String()
}

func FormatTrades(entries []journal.Entry) string {
	if len(entries) == 0 {
		return "📭 Сделок пока нет"
	}
	var b strings.Builder
	b.WriteString("📒 Последние сделки:\n")
	for _, e := range entries {
		state := "open"
		if e.ClosedAt != nil {
			state = "closed " + e.ClosedAt.UTC().Format("01-02 15:04")
		}
		fmt.Fprintf(&b, "- %s %s #%s @ %.5f score=%d ratchets=%d %s\n",
			e.OpenedAt.UTC().Format("01-02 15:04"), e.Symbol+" "+strings.ToUpper(e.Side.String()),
			e.OrderID, e.EntryPrice, e.Score, e.Ratchets, state)
	}
	return b.String()
}

// Start: long-polling для messages + callback_query.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				if upd.CallbackQuery != nil {
					t.HandleCallback(upd.CallbackQuery)
				}
				if upd.Message != nil && upd.Message.Chat != nil &&
					upd.Message.Chat.ID == t.chatID && upd.Message.IsCommand() {

					switch upd.Message.Command() {
					case "positions":
						go t.handlePositions(ctx)
					case "trades":
						go t.handleTrades(ctx)
					case "status":
						t.handleStatus()
					}
				}
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {
	if t == nil || t.bot == nil {
		return
	}
	t.bot.StopReceivingUpdates()
}

// Stdout: заглушка, всё логирует и всегда подтверждает.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { logger.Info("[NOTIFY] %s", msg) }
func (s *Stdout) Sendf(format string, args ...any) { logger.Info("[NOTIFY] "+format, args...) }
func (s *Stdout) Confirm(ctx context.Context, prompt string, timeout time.Duration) bool {
	logger.Info("[NOTIFY] confirm (auto-yes): %s", prompt)
	return true
}
