package runner

import (
	"context"
	"time"
)

// Clock отделяет циклы от реального времени, чтобы тесты не спали.
type Clock interface {
	Now() time.Time
	// Sleep ждёт d или отмены ctx. При отмене возвращает ctx.Err().
	Sleep(ctx context.Context, d time.Duration) error
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
