package model

import "strings"

// Bias is the directional verdict of the indicator scorer.
type Bias int

const (
	BiasUnknown Bias = iota
	BiasBullish
	BiasNeutral
	BiasBearish
)

// Display labels shown to users.
const (
	LabelBullish      = "AL (uzun eğilim)"
	LabelNeutral      = "NÖTR/İZLE"
	LabelBearish      = "SAT (zayıf)"
	LabelBearishShort = "SAT (kısa eğilim)"
)

// Label returns the user-facing label for the bias.
func (b Bias) Label() string {
	switch b {
	case BiasBullish:
		return LabelBullish
	case BiasNeutral:
		return LabelNeutral
	case BiasBearish:
		return LabelBearish
	}
	return ""
}

// Side resolves the trade side for target normalization. Only a bearish bias
// is short; neutral and unknown default to long.
func (b Bias) Side() Direction {
	if b == BiasBearish {
		return Short
	}
	return Long
}

// LabelMentions reports whether a display label carries the buy ("AL") and
// sell ("SAT") tokens.
func LabelMentions(label string) (buy, sell bool) {
	up := strings.ToUpper(label)
	return strings.Contains(up, "AL"), strings.Contains(up, "SAT")
}

// SideFromLabel resolves the side from display text for summaries that carry
// no Bias value. Sell-only text is short, buy-only text is long, and text with
// both or neither token defaults to long.
func SideFromLabel(label string) Direction {
	buy, sell := LabelMentions(label)
	if sell && !buy {
		return Short
	}
	return Long
}

// SignalSummary is the scored analysis of one instrument.
type SignalSummary struct {
	Price       float64
	ATR         float64
	Volume      float64
	Bias        Bias
	BiasText    string
	Score       float64 // 0..100
	PatternText string
	BuyZone     string
	Stop        float64
	T1          float64
	T2          float64
	ETA         string
	Pattern     *Pattern
}

// Ranked pairs a ticker with its summary.
type Ranked struct {
	Ticker  string
	Summary *SignalSummary
}

// ScanResult is the outcome of a batch scan. Every requested ticker appears in
// exactly one of Results or Skipped.
type ScanResult struct {
	ID       string
	Results  []Ranked
	Skipped  []string
	Interval string
	Period   string
}
