package model

import (
	"errors"
	"time"
)

// ErrNoData is returned when a series is empty or unusable.
var ErrNoData = errors.New("no data")

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bar is an OHLCV sample plus the indicator values computed at that point.
type Bar struct {
	OHLCV
	Indicators
}

// Series is a chronologically ascending sequence of bars (index 0 = oldest).
// Consumers derive values from trailing windows and never mutate it.
type Series []Bar

// Last returns the most recent bar. The series must not be empty.
func (s Series) Last() Bar {
	return s[len(s)-1]
}

// Tail returns the trailing n bars, or the whole series when it is shorter.
func (s Series) Tail(n int) Series {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Highs, Lows, Closes and Volumes extract one column of the series.
func (s Series) Highs() []float64   { return s.column(func(b Bar) float64 { return b.High }) }
func (s Series) Lows() []float64    { return s.column(func(b Bar) float64 { return b.Low }) }
func (s Series) Closes() []float64  { return s.column(func(b Bar) float64 { return b.Close }) }
func (s Series) Volumes() []float64 { return s.column(func(b Bar) float64 { return b.Volume }) }

func (s Series) column(f func(Bar) float64) []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = f(b)
	}
	return out
}

// SeriesFromOHLCV wraps raw bars into a Series with zero indicator values.
func SeriesFromOHLCV(bars []OHLCV) Series {
	s := make(Series, len(bars))
	for i, b := range bars {
		s[i] = Bar{OHLCV: b}
	}
	return s
}
