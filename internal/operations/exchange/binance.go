package exchange

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"golang.org/x/time/rate"
)

// BinanceSource serves Binance USDT-M futures candles. All calls go
// through a shared rate limiter and retry transient failures with
// exponential backoff.
type BinanceSource struct {
	client      *futures.Client
	rateLimiter *rate.Limiter
}

func NewBinanceSource(apiKey, secretKey string) *BinanceSource {
	httpClient := &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	futuresClient := futures.NewClient(apiKey, secretKey)
	futuresClient.HTTPClient = httpClient

	// 10 requests per second with burst of 20
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &BinanceSource{
		client:      futuresClient,
		rateLimiter: limiter,
	}
}

func (s *BinanceSource) Name() string { return "binance" }

func (s *BinanceSource) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]Candle, error) {
	klines, err := s.fetchKlines(ctx, func() ([]*futures.Kline, error) {
		return s.client.NewKlinesService().
			Symbol(symbol).
			Interval(timeframe).
			Limit(limit).
			Do(ctx)
	})
	if err != nil {
		return nil, err
	}
	return convertKlines(klines), nil
}

func (s *BinanceSource) FetchOHLCVRange(ctx context.Context, symbol, timeframe string, startMs, endMs int64, limit int) ([]Candle, error) {
	klines, err := s.fetchKlines(ctx, func() ([]*futures.Kline, error) {
		return s.client.NewKlinesService().
			Symbol(symbol).
			Interval(timeframe).
			StartTime(startMs).
			EndTime(endMs).
			Limit(limit).
			Do(ctx)
	})
	if err != nil {
		return nil, err
	}
	return convertKlines(klines), nil
}

func (s *BinanceSource) ServerTimeMs(ctx context.Context) (int64, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return 0, err
	}
	return s.client.NewServerTimeService().Do(ctx)
}

// fetchKlines runs one kline request behind the rate limiter with up
// to 3 retries.
func (s *BinanceSource) fetchKlines(ctx context.Context, do func() ([]*futures.Kline, error)) ([]*futures.Kline, error) {
	maxRetries := 3
	backoff := 100 * time.Millisecond

	for attempt := 0; ; attempt++ {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		klines, err := do()
		if err == nil {
			return klines, nil
		}
		if attempt == maxRetries {
			return nil, err
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * backoff
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

func convertKlines(klines []*futures.Kline) []Candle {
	candles := make([]Candle, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, Candle{
			Timestamp: k.OpenTime,
			Open:      parseFloat(k.Open),
			High:      parseFloat(k.High),
			Low:       parseFloat(k.Low),
			Close:     parseFloat(k.Close),
			Volume:    parseFloat(k.Volume),
		})
	}
	return candles
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
