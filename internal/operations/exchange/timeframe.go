package exchange

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeframeMinutes parses "15m", "4h", "1d", "1w" or a bare minute
// count into minutes.
func TimeframeMinutes(tf string) (int, error) {
	tf = strings.ToLower(strings.TrimSpace(tf))
	if tf == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnsupportedTimeframe)
	}

	mult := 1
	numPart := tf
	switch tf[len(tf)-1] {
	case 'm':
		numPart = tf[:len(tf)-1]
	case 'h':
		mult = 60
		numPart = tf[:len(tf)-1]
	case 'd':
		mult = 60 * 24
		numPart = tf[:len(tf)-1]
	case 'w':
		mult = 60 * 24 * 7
		numPart = tf[:len(tf)-1]
	}

	n, err := strconv.Atoi(numPart)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedTimeframe, tf)
	}
	return n * mult, nil
}

// TimeframeMs returns the timeframe length in milliseconds.
func TimeframeMs(tf string) (int64, error) {
	minutes, err := TimeframeMinutes(tf)
	if err != nil {
		return 0, err
	}
	return int64(minutes) * 60_000, nil
}
