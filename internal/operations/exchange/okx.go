package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const okxBaseURL = "https://www.okx.com"

// OKXSource serves OKX spot/swap candles over the public REST API.
// It implements OhlcvSource only: OKX paging semantics differ enough
// from the range contract that bulk downloads go through Binance.
type OKXSource struct {
	client *resty.Client
}

func NewOKXSource() *OKXSource {
	client := resty.New().
		SetBaseURL(okxBaseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(200 * time.Millisecond)

	return &OKXSource{client: client}
}

func (s *OKXSource) Name() string { return "okx" }

type okxCandlesResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

func (s *OKXSource) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]Candle, error) {
	bar, err := okxBar(timeframe)
	if err != nil {
		return nil, err
	}

	var out okxCandlesResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"instId": symbol,
			"bar":    bar,
			"limit":  strconv.Itoa(limit),
		}).
		SetResult(&out).
		Get("/api/v5/market/candles")
	if err != nil {
		return nil, fmt.Errorf("okx candles: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("okx candles: http %d", resp.StatusCode())
	}
	if out.Code != "0" {
		return nil, fmt.Errorf("okx candles: code %s: %s", out.Code, out.Msg)
	}

	// OKX returns newest first
	candles := make([]Candle, 0, len(out.Data))
	for i := len(out.Data) - 1; i >= 0; i-- {
		row := out.Data[i]
		if len(row) < 6 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		candles = append(candles, Candle{
			Timestamp: ts,
			Open:      parseFloat(row[1]),
			High:      parseFloat(row[2]),
			Low:       parseFloat(row[3]),
			Close:     parseFloat(row[4]),
			Volume:    parseFloat(row[5]),
		})
	}
	return candles, nil
}

type okxTimeResponse struct {
	Code string `json:"code"`
	Data []struct {
		TS string `json:"ts"`
	} `json:"data"`
}

func (s *OKXSource) ServerTimeMs(ctx context.Context) (int64, error) {
	var out okxTimeResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v5/public/time")
	if err != nil {
		return 0, fmt.Errorf("okx time: %w", err)
	}
	if resp.IsError() || out.Code != "0" || len(out.Data) == 0 {
		return 0, fmt.Errorf("okx time: bad response (http %d)", resp.StatusCode())
	}
	return strconv.ParseInt(out.Data[0].TS, 10, 64)
}

// okxBar maps a generic timeframe to OKX bar notation, which uses
// upper case from hours upward.
func okxBar(timeframe string) (string, error) {
	minutes, err := TimeframeMinutes(timeframe)
	if err != nil {
		return "", err
	}
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes), nil
	case minutes < 60*24:
		return fmt.Sprintf("%dH", minutes/60), nil
	case minutes < 60*24*7:
		return fmt.Sprintf("%dD", minutes/(60*24)), nil
	default:
		return fmt.Sprintf("%dW", minutes/(60*24*7)), nil
	}
}
