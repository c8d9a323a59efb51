package model

// Indicators holds the technical indicator values attached to a bar.
type Indicators struct {
	RSI        float64 // momentum
	MACD       float64 // trend
	MACDSignal float64
	MACDHist   float64
	ADX        float64 // trend strength
	StochK     float64
	StochD     float64
	CMF        float64 // money flow
	ATR        float64 // volatility
	VolMA20    float64 // 20-bar volume moving average
}
