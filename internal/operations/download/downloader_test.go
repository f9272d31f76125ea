package download

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoBreakoutBot/internal/operations/exchange"
	"CryptoBreakoutBot/internal/operations/history"
)

// fakeRangeSource serves synthetic hourly candles and records the
// requested pages.
type fakeRangeSource struct {
	tfMs     int64
	firstMs  int64
	lastMs   int64
	requests [][2]int64
}

func (f *fakeRangeSource) Name() string { return "fake" }

func (f *fakeRangeSource) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]exchange.Candle, error) {
	return nil, nil
}

func (f *fakeRangeSource) ServerTimeMs(ctx context.Context) (int64, error) {
	return f.lastMs, nil
}

func (f *fakeRangeSource) FetchOHLCVRange(ctx context.Context, symbol, timeframe string, startMs, endMs int64, limit int) ([]exchange.Candle, error) {
	f.requests = append(f.requests, [2]int64{startMs, endMs})

	var out []exchange.Candle
	for ts := f.firstMs; ts < f.lastMs && len(out) < limit; ts += f.tfMs {
		if ts < startMs || ts >= endMs {
			continue
		}
		out = append(out, exchange.Candle{
			Timestamp: ts,
			Open:      100, High: 101, Low: 99, Close: 100.5,
			Volume: 10,
		})
	}
	return out, nil
}

func TestDownloadPagesThroughRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)

	src := &fakeRangeSource{
		tfMs:    3_600_000,
		firstMs: start.UnixMilli(),
		lastMs:  end.UnixMilli(),
	}

	d := NewDownloader(src)
	d.pageLimit = 4 // force several pages

	bars, err := d.Download(context.Background(), "BTCUSDT", "1h", start, end)
	require.NoError(t, err)
	require.Len(t, bars, 10)

	assert.GreaterOrEqual(t, len(src.requests), 3)
	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i-1].Timestamp.Before(bars[i].Timestamp))
	}
	assert.Equal(t, "BTCUSDT", bars[0].Ticker)
	assert.Equal(t, 60, bars[0].Period)
}

func TestDownloadEmptyRange(t *testing.T) {
	src := &fakeRangeSource{tfMs: 3_600_000}
	d := NewDownloader(src)

	now := time.Now()
	_, err := d.Download(context.Background(), "X", "1h", now, now)
	assert.Error(t, err)
}

func TestDownloadToFileMergesExisting(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mid := start.Add(5 * time.Hour)
	end := start.Add(10 * time.Hour)

	src := &fakeRangeSource{
		tfMs:    3_600_000,
		firstMs: start.UnixMilli(),
		lastMs:  end.UnixMilli(),
	}
	d := NewDownloader(src)
	path := filepath.Join(t.TempDir(), "btc.csv")

	n, err := d.DownloadToFile(context.Background(), "BTCUSDT", "1h", path, start, mid)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// second run overlaps the first; the file must not duplicate bars
	n, err = d.DownloadToFile(context.Background(), "BTCUSDT", "1h", path, start, end)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	bars, err := history.LoadFinamCSV(path)
	require.NoError(t, err)
	assert.Len(t, bars, 10)
}
