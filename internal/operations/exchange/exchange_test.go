package exchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframeMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1m", 1},
		{"15m", 15},
		{"1h", 60},
		{"4h", 240},
		{"1d", 1440},
		{"1w", 10080},
		{"60", 60},
		{" 5m ", 5},
		{"1H", 60},
	}
	for _, tt := range tests {
		got, err := TimeframeMinutes(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "m", "0m", "-5m", "abc"} {
		_, err := TimeframeMinutes(bad)
		assert.ErrorIs(t, err, ErrUnsupportedTimeframe, bad)
	}
}

func TestTimeframeMs(t *testing.T) {
	ms, err := TimeframeMs("1h")
	require.NoError(t, err)
	assert.Equal(t, int64(3_600_000), ms)
}

func TestCandleBar(t *testing.T) {
	c := Candle{
		Timestamp: 1_700_000_000_000,
		Open:      1, High: 2, Low: 0.5, Close: 1.5, Volume: 100,
	}
	bar := c.Bar("BTCUSDT", 60)

	assert.Equal(t, "BTCUSDT", bar.Ticker)
	assert.Equal(t, 60, bar.Period)
	assert.Equal(t, time.UnixMilli(1_700_000_000_000).UTC(), bar.Timestamp)
	assert.Equal(t, 1.5, bar.Close)
}

func TestOKXBarNotation(t *testing.T) {
	tests := map[string]string{
		"1m":  "1m",
		"15m": "15m",
		"1h":  "1H",
		"4h":  "4H",
		"1d":  "1D",
		"1w":  "1W",
	}
	for in, want := range tests {
		got, err := okxBar(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
