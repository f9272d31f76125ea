package exchange

import (
	"context"
	"errors"
	"time"

	"CryptoBreakoutBot/internal/models"
)

// Candle is a closed OHLCV sample as exchanges deliver it. Timestamp
// is the candle open time in epoch milliseconds.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Bar converts the candle into the internal bar model.
func (c Candle) Bar(ticker string, periodMinutes int) models.Bar {
	return models.Bar{
		Ticker:    ticker,
		Period:    periodMinutes,
		Timestamp: time.UnixMilli(c.Timestamp).UTC(),
		Open:      c.Open,
		High:      c.High,
		Low:       c.Low,
		Close:     c.Close,
		Volume:    c.Volume,
	}
}

// OhlcvSource serves the most recent candles of a market plus the
// exchange clock, which the paper runner uses to tell closed candles
// from the forming one.
type OhlcvSource interface {
	Name() string
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]Candle, error)
	ServerTimeMs(ctx context.Context) (int64, error)
}

// RangeSource is the optional paging capability used by the bulk
// downloader. Sources that cannot page historical data only implement
// OhlcvSource.
type RangeSource interface {
	OhlcvSource
	FetchOHLCVRange(ctx context.Context, symbol, timeframe string, startMs, endMs int64, limit int) ([]Candle, error)
}

var ErrUnsupportedTimeframe = errors.New("exchange: unsupported timeframe")
