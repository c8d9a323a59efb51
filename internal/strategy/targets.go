package strategy

import (
	"fmt"
	"math"

	"BistSentinel/internal/model"
)

const zeroATR = 0.01

// Normalize returns a copy of s whose targets and stop sit on the side implied
// by its bias, regenerating ATR-based levels where they do not, and recomputes
// the ETA for the given bar interval. Applying it to its own output changes
// nothing.
func Normalize(s model.SignalSummary, interval string) model.SignalSummary {
	out := s
	price := s.Price
	// Levels are rounded to cents, so a smaller ATR would land them on price.
	atr := math.Max(s.ATR, zeroATR)

	side := resolveSide(s)
	switch side {
	case model.Short:
		if out.T1 >= price || out.T2 > price || out.T2 >= out.T1 {
			out.T1 = round2(price - atr)
			out.T2 = round2(price - 2*atr)
		}
		if out.Stop <= price || out.Stop == 0 {
			out.Stop = round2(price + 1.5*atr)
		}
		if price <= out.T1 {
			out.BuyZone = fmt.Sprintf("%.2f altı", price)
		} else {
			out.BuyZone = fmt.Sprintf("%.2f ± %.2f", price, atr)
		}
	default:
		if out.T1 <= price || out.T2 < price || out.T2 <= out.T1 {
			out.T1 = round2(price + atr)
			out.T2 = round2(price + 2*atr)
		}
		if out.Stop >= price || out.Stop == 0 {
			out.Stop = round2(math.Max(price-1.5*atr, 0))
		}
		if price >= out.T1 {
			out.BuyZone = fmt.Sprintf("%.2f üstü", price)
		} else {
			out.BuyZone = fmt.Sprintf("%.2f ± %.2f", price, atr)
		}
	}

	out.ETA = FormatETA(etaMinutes(price, out.T1, atr, interval))

	buy, sell := model.LabelMentions(out.BiasText)
	switch {
	case side == model.Short && buy:
		out.Bias = model.BiasBearish
		out.BiasText = model.LabelBearishShort
	case side == model.Long && sell:
		out.Bias = model.BiasBullish
		out.BiasText = model.LabelBullish
	}
	return out
}

// resolveSide prefers the scored bias and falls back to the label text for
// summaries built without one.
func resolveSide(s model.SignalSummary) model.Direction {
	if s.Bias != model.BiasUnknown {
		return s.Bias.Side()
	}
	return model.SideFromLabel(s.BiasText)
}
