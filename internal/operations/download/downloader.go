package download

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/operations/exchange"
	"CryptoBreakoutBot/internal/operations/history"
)

const defaultPageLimit = 1000

// Downloader pages historical candles out of a range-capable source
// and lands them as Finam history files.
type Downloader struct {
	src       exchange.RangeSource
	pageLimit int
}

func NewDownloader(src exchange.RangeSource) *Downloader {
	return &Downloader{
		src:       src,
		pageLimit: defaultPageLimit,
	}
}

// Download fetches all candles of [start, end) one page at a time and
// returns them as deduplicated, ascending bars.
func (d *Downloader) Download(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.Bar, error) {
	tfMs, err := exchange.TimeframeMs(timeframe)
	if err != nil {
		return nil, err
	}
	minutes := int(tfMs / 60_000)

	startMs := start.UnixMilli()
	endMs := end.UnixMilli()
	if startMs >= endMs {
		return nil, fmt.Errorf("download: empty range %s..%s", start, end)
	}

	var collected []models.Bar
	cur := startMs
	for cur < endMs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageEnd := cur + tfMs*int64(d.pageLimit)
		if pageEnd > endMs {
			pageEnd = endMs
		}

		candles, err := d.src.FetchOHLCVRange(ctx, symbol, timeframe, cur, pageEnd, d.pageLimit)
		if err != nil {
			return nil, fmt.Errorf("download %s %s: %w", symbol, timeframe, err)
		}
		if len(candles) == 0 {
			cur = pageEnd
			continue
		}

		collected = append(collected, history.FromCandles(candles, symbol, minutes)...)
		cur = candles[len(candles)-1].Timestamp + tfMs

		log.Info().
			Str("symbol", symbol).
			Str("source", d.src.Name()).
			Int("bars", len(collected)).
			Time("cursor", time.UnixMilli(cur).UTC()).
			Msg("download progress")
	}

	// pages can overlap at their edges
	return history.Merge(nil, collected), nil
}

// DownloadToFile downloads the range and writes it to path, merging
// with an existing file so repeated runs extend the history in place.
// Returns the number of bars in the final file.
func (d *Downloader) DownloadToFile(ctx context.Context, symbol, timeframe, path string, start, end time.Time) (int, error) {
	fresh, err := d.Download(ctx, symbol, timeframe, start, end)
	if err != nil {
		return 0, err
	}

	var existing []models.Bar
	if _, statErr := os.Stat(path); statErr == nil {
		existing, err = history.LoadFinamCSV(path)
		if err != nil {
			return 0, err
		}
	}

	merged := history.Merge(existing, fresh)
	if err := history.WriteFinamCSV(path, merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}
