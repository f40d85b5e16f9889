package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/models"
)

type stubFeed struct {
	candles []models.Candle
	err     error
	calls   int
}

func (s *stubFeed) FetchCandles(context.Context, string, models.Timeframe, int) ([]models.Candle, error) {
	s.calls++
	return s.candles, s.err
}

func (s *stubFeed) FetchTick(context.Context, string) (models.Tick, error) {
	return models.Tick{Bid: 1, Ask: 2}, nil
}

func sampleCandles() []models.Candle {
	return []models.Candle{
		{Time: time.Unix(1700000000, 0).UTC(), Open: 1, High: 2, Low: 0.5, Close: 1.5, TickVolume: 3},
	}
}

func TestCachingFeed_Hit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, err := sonic.Marshal(sampleCandles())
	require.NoError(t, err)
	mock.ExpectGet("candles:EURUSD:M5:1000").SetVal(string(cached))

	inner := &stubFeed{}
	feed := NewCachingFeed(rdb, inner, nil, "")

	out, err := feed.FetchCandles(context.Background(), "EURUSD", models.M5, 1000)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1.5, out[0].Close)
	assert.True(t, out[0].Time.Equal(sampleCandles()[0].Time))
	assert.Zero(t, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingFeed_Miss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	payload, err := sonic.Marshal(sampleCandles())
	require.NoError(t, err)
	mock.ExpectGet("candles:EURUSD:M1:200").RedisNil()
	mock.ExpectSet("candles:EURUSD:M1:200", payload, 10*time.Second).SetVal("OK")

	inner := &stubFeed{candles: sampleCandles()}
	feed := NewCachingFeed(rdb, inner, nil, "")

	out, err := feed.FetchCandles(context.Background(), "EURUSD", models.M1, 200)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingFeed_InnerErrorIsNotCached(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("candles:EURUSD:M15:50").RedisNil()

	inner := &stubFeed{err: models.ErrDataUnavailable}
	feed := NewCachingFeed(rdb, inner, nil, "")

	_, err := feed.FetchCandles(context.Background(), "EURUSD", models.M15, 50)
	require.True(t, errors.Is(err, models.ErrDataUnavailable))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingFeed_NilRedisBypasses(t *testing.T) {
	t.Parallel()

	inner := &stubFeed{candles: sampleCandles()}
	feed := NewCachingFeed(nil, inner, nil, "")

	_, err := feed.FetchCandles(context.Background(), "EURUSD", models.M5, 10)
	require.NoError(t, err)
	_, err = feed.FetchCandles(context.Background(), "EURUSD", models.M5, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}
