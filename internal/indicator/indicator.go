// Package indicator attaches technical indicator columns to a bar series.
package indicator

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"BistSentinel/internal/model"
)

const (
	rsiPeriod   = 14
	macdFast    = 12
	macdSlow    = 26
	macdSignal  = 9
	adxPeriod   = 14
	stochK      = 14
	stochSmooth = 3
	cmfPeriod   = 20
	atrPeriod   = 14
	volMAPeriod = 20
)

// Warmup is the number of leading bars whose indicator values are not yet
// defined. MACD has the longest lookback: slow EMA plus signal EMA.
const Warmup = macdSlow - 1 + macdSignal - 1

// Enrich computes every indicator column on a copy of bars and drops the
// warm-up prefix. It returns model.ErrNoData when nothing survives.
func Enrich(bars []model.OHLCV) (model.Series, error) {
	if len(bars) <= Warmup {
		return nil, fmt.Errorf("enrich %d bars (need more than %d): %w", len(bars), Warmup, model.ErrNoData)
	}
	s := model.SeriesFromOHLCV(bars)
	highs, lows, closes, vols := s.Highs(), s.Lows(), s.Closes(), s.Volumes()

	rsi := talib.Rsi(closes, rsiPeriod)
	macd, signal, hist := talib.Macd(closes, macdFast, macdSlow, macdSignal)
	adx := talib.Adx(highs, lows, closes, adxPeriod)
	k, d := talib.Stoch(highs, lows, closes, stochK, stochSmooth, talib.SMA, stochSmooth, talib.SMA)
	atr := talib.Atr(highs, lows, closes, atrPeriod)
	volMA := talib.Sma(vols, volMAPeriod)
	cmf := ChaikinMoneyFlow(highs, lows, closes, vols, cmfPeriod)

	for i := range s {
		s[i].Indicators = model.Indicators{
			RSI:        rsi[i],
			MACD:       macd[i],
			MACDSignal: signal[i],
			MACDHist:   hist[i],
			ADX:        adx[i],
			StochK:     k[i],
			StochD:     d[i],
			CMF:        cmf[i],
			ATR:        atr[i],
			VolMA20:    volMA[i],
		}
	}
	return s[Warmup:], nil
}

// ChaikinMoneyFlow returns the rolling CMF; values before the first full
// window are zero. Bars with high == low contribute no money flow.
func ChaikinMoneyFlow(highs, lows, closes, vols []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}
	mfv := make([]float64, len(closes))
	for i := range closes {
		rng := highs[i] - lows[i]
		if rng == 0 {
			continue
		}
		mfv[i] = ((closes[i] - lows[i]) - (highs[i] - closes[i])) / rng * vols[i]
	}
	var sumMFV, sumVol float64
	for i := range closes {
		sumMFV += mfv[i]
		sumVol += vols[i]
		if i >= period {
			sumMFV -= mfv[i-period]
			sumVol -= vols[i-period]
		}
		if i >= period-1 && sumVol != 0 {
			out[i] = sumMFV / sumVol
		}
	}
	return out
}
