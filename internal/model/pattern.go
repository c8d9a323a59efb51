package model

// Direction is the trade side implied by a pattern or a bias.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// TrendLine is a fitted y = Slope*x + Intercept over bar indices of a window.
type TrendLine struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the line at bar index x.
func (l TrendLine) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// PatternMeta carries the geometry behind a detection, for charting and explanations.
type PatternMeta struct {
	Upper        *TrendLine `json:"upper,omitempty"`
	Lower        *TrendLine `json:"lower,omitempty"`
	Pivots       []int      `json:"pivots,omitempty"`
	Neckline     float64    `json:"neckline,omitempty"`
	WindowOffset int        `json:"window_offset"` // bars between series start and window start
}

// Pattern is a single chart formation found by a detector.
type Pattern struct {
	Name          string      `json:"name"`
	Confidence    float64     `json:"confidence"`
	Direction     Direction   `json:"direction"`
	BreakoutPrice float64     `json:"breakout_price"`
	Stop          float64     `json:"stop"`
	Targets       [2]float64  `json:"targets"`
	Meta          PatternMeta `json:"meta"`
}

// Consistent reports whether targets and stop lie on the correct sides of the
// breakout price for the pattern's direction.
func (p *Pattern) Consistent() bool {
	t1, t2, bp := p.Targets[0], p.Targets[1], p.BreakoutPrice
	switch p.Direction {
	case Long:
		return t1 < t2 && t1 > bp && p.Stop < bp
	case Short:
		return t1 > t2 && t1 < bp && p.Stop > bp
	}
	return false
}
