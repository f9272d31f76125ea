package indicators

import (
	"errors"
	"math"
)

// Value is one point of an indicator series. Valid is false while the
// indicator is still inside its warm-up window. Warm-up entries are
// never reported as zero.
type Value struct {
	V     float64
	Valid bool
}

// Defined wraps a computed indicator value.
func Defined(v float64) Value {
	return Value{V: v, Valid: true}
}

// Undefined is the absent-value marker used for warm-up entries.
var Undefined = Value{}

// Usable reports whether v can participate in strategy arithmetic.
func (v Value) Usable() bool {
	return v.Valid && !math.IsNaN(v.V)
}

var (
	// ErrSeriesLength is returned when paired input series differ in length.
	ErrSeriesLength = errors.New("indicators: input series must be the same length")

	// ErrInvalidPeriod is returned for non-positive periods.
	ErrInvalidPeriod = errors.New("indicators: period must be positive")

	// ErrNonFinitePrice is returned when a bar carries a NaN/Inf price.
	ErrNonFinitePrice = errors.New("indicators: non-finite price in bar history")
)
