package journal

import (
	"context"
	"fmt"
	"time"

	"scalper_bot/internal/models"
	"scalper_bot/pkg/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	order_id    TEXT PRIMARY KEY,
	symbol      TEXT NOT NULL,
	side        TEXT NOT NULL,
	volume      DOUBLE PRECISION NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	stop_loss   DOUBLE PRECISION NOT NULL,
	take_profit DOUBLE PRECISION NOT NULL,
	atr         DOUBLE PRECISION NOT NULL,
	score       INTEGER NOT NULL,
	ratchets    INTEGER NOT NULL DEFAULT 0,
	opened_at   TIMESTAMPTZ NOT NULL,
	closed_at   TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS trade_ratchets (
	id          BIGSERIAL PRIMARY KEY,
	order_id    TEXT NOT NULL REFERENCES trades(order_id),
	stop_loss   DOUBLE PRECISION NOT NULL,
	take_profit DOUBLE PRECISION NOT NULL,
	at          TIMESTAMPTZ NOT NULL
);`

// PG: журнал сделок в postgres.
type PG struct {
	tx db.TxManager
}

func NewPG(tx db.TxManager) *PG {
	return &PG{tx: tx}
}

func (j *PG) Migrate(ctx context.Context) error {
	if _, err := j.tx.Conn().Exec(ctx, schema); err != nil {
		return fmt.Errorf("journal migrate: %w", err)
	}
	return nil
}

func (j *PG) RecordOpen(ctx context.Context, t models.Trade) error {
	_, err := j.tx.Conn().Exec(ctx, `
		INSERT INTO trades (order_id, symbol, side, volume, entry_price, stop_loss, take_profit, atr, score, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_id) DO NOTHING`,
		t.OrderID, t.Symbol, t.Side.String(), t.Volume, t.EntryPrice,
		t.StopLoss, t.TakeProfit, t.ATR, t.Score, t.OpenedAt,
	)
	if err != nil {
		return fmt.Errorf("journal open %s: %w", t.OrderID, err)
	}
	return nil
}

// RecordRatchet пишет подтяжку и обновляет текущие SL/TP сделки одной транзакцией.
func (j *PG) RecordRatchet(ctx context.Context, orderID string, sl, tp float64, at time.Time) error {
	return j.tx.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO trade_ratchets (order_id, stop_loss, take_profit, at)
			VALUES ($1, $2, $3, $4)`, orderID, sl, tp, at); err != nil {
			return fmt.Errorf("insert ratchet: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE trades SET stop_loss = $2, take_profit = $3, ratchets = ratchets + 1
			WHERE order_id = $1`, orderID, sl, tp); err != nil {
			return fmt.Errorf("update trade: %w", err)
		}
		return nil
	})
}

func (j *PG) RecordClose(ctx context.Context, orderID string, at time.Time) error {
	_, err := j.tx.Conn().Exec(ctx,
		`UPDATE trades SET closed_at = $2 WHERE order_id = $1 AND closed_at IS NULL`, orderID, at)
	if err != nil {
		return fmt.Errorf("journal close %s: %w", orderID, err)
	}
	return nil
}

// Entry: строка журнала для вывода оператору.
type Entry struct {
	models.Trade
	Ratchets int
	ClosedAt *time.Time
}

// Recent: последние limit сделок, новые первыми.
func (j *PG) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.tx.Conn().Query(ctx, `
		SELECT order_id, symbol, side, volume, entry_price, stop_loss, take_profit, atr, score,
		       ratchets, opened_at, closed_at
		FROM trades ORDER BY opened_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			side string
		)
		if err := rows.Scan(&e.OrderID, &e.Symbol, &side, &e.Volume, &e.EntryPrice,
			&e.StopLoss, &e.TakeProfit, &e.ATR, &e.Score, &e.Ratchets, &e.OpenedAt, &e.ClosedAt); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		if e.Side, err = models.ParseSide(side); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
