package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/operations/exchange"
)

// Finam export column order. The first row of a file may repeat it as
// a header.
var finamHeader = []string{
	"<TICKER>", "<PER>", "<DATE>", "<TIME>",
	"<OPEN>", "<HIGH>", "<LOW>", "<CLOSE>", "<VOL>",
}

// LoadFinamCSV reads a Finam-format bar file. Rows must be ordered or
// orderable by timestamp; the loader itself keeps file order.
func LoadFinamCSV(path string) ([]models.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("history: read %s: %w", path, err)
	}

	bars := make([]models.Bar, 0, len(records))
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == finamHeader[0] {
			continue
		}
		if len(rec) < 9 {
			return nil, fmt.Errorf("history: %s line %d: want 9 fields, got %d", path, i+1, len(rec))
		}

		bar, err := parseFinamRow(rec)
		if err != nil {
			return nil, fmt.Errorf("history: %s line %d: %w", path, i+1, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseFinamRow(rec []string) (models.Bar, error) {
	period, err := strconv.Atoi(rec[1])
	if err != nil {
		return models.Bar{}, fmt.Errorf("bad period %q", rec[1])
	}

	ts, err := parseFinamTimestamp(rec[2], rec[3])
	if err != nil {
		return models.Bar{}, err
	}

	vals := make([]float64, 5)
	for i, field := range rec[4:9] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("bad price %q", field)
		}
		vals[i] = v
	}

	return models.Bar{
		Ticker:    rec[0],
		Period:    period,
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

// parseFinamTimestamp decodes DDMMYY + HHMMSS. Two-digit years below
// 70 land in the 2000s. Short time fields are left-padded with zeros.
func parseFinamTimestamp(dateStr, timeStr string) (time.Time, error) {
	if len(dateStr) != 6 {
		return time.Time{}, fmt.Errorf("bad date %q", dateStr)
	}
	for len(timeStr) < 6 {
		timeStr = "0" + timeStr
	}
	if len(timeStr) != 6 {
		return time.Time{}, fmt.Errorf("bad time %q", timeStr)
	}

	day, err1 := strconv.Atoi(dateStr[0:2])
	month, err2 := strconv.Atoi(dateStr[2:4])
	yy, err3 := strconv.Atoi(dateStr[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("bad date %q", dateStr)
	}
	year := 1900 + yy
	if yy < 70 {
		year = 2000 + yy
	}

	hour, err1 := strconv.Atoi(timeStr[0:2])
	minute, err2 := strconv.Atoi(timeStr[2:4])
	second, err3 := strconv.Atoi(timeStr[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("bad time %q", timeStr)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// WriteFinamCSV writes bars in Finam format with a header row.
func WriteFinamCSV(path string, bars []models.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("history: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(finamHeader); err != nil {
		return fmt.Errorf("history: write %s: %w", path, err)
	}

	for _, b := range bars {
		rec := []string{
			b.Ticker,
			strconv.Itoa(b.Period),
			fmt.Sprintf("%02d%02d%02d", b.Timestamp.Day(), int(b.Timestamp.Month()), b.Timestamp.Year()%100),
			fmt.Sprintf("%02d%02d%02d", b.Timestamp.Hour(), b.Timestamp.Minute(), b.Timestamp.Second()),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			formatPrice(b.Volume),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("history: write %s: %w", path, err)
		}
	}

	w.Flush()
	return w.Error()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FromCandles converts exchange candles into bars of one market.
func FromCandles(candles []exchange.Candle, ticker string, periodMinutes int) []models.Bar {
	bars := make([]models.Bar, 0, len(candles))
	for _, c := range candles {
		bars = append(bars, c.Bar(ticker, periodMinutes))
	}
	return bars
}
