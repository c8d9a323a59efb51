package pattern

import (
	"fmt"

	"BistSentinel/internal/logger"
	"BistSentinel/internal/model"
)

// Detector examines a series and reports at most one pattern. A nil pattern
// with a nil error means nothing was found.
type Detector interface {
	Name() string
	Detect(s model.Series) (*model.Pattern, error)
}

// Outcome is the result of one detector call.
type Outcome struct {
	Detector string
	Pattern  *model.Pattern
	Err      error
}

// Runner invokes every detector against the same series. A failing detector
// contributes nothing and never affects the others.
type Runner struct {
	detectors []Detector
}

// NewRunner creates a Runner; with no arguments it uses the channel, triangle
// and double bottom detectors.
func NewRunner(detectors ...Detector) *Runner {
	if len(detectors) == 0 {
		detectors = []Detector{NewChannelDetector(), NewTriangleDetector(), NewDoubleBottomDetector()}
	}
	return &Runner{detectors: detectors}
}

// Run returns one outcome per detector, in registration order.
func (r *Runner) Run(s model.Series) []Outcome {
	out := make([]Outcome, 0, len(r.detectors))
	for _, d := range r.detectors {
		p, err := detect(d, s)
		out = append(out, Outcome{Detector: d.Name(), Pattern: p, Err: err})
	}
	return out
}

// DetectAll returns every pattern found. Detector faults are logged and dropped.
func (r *Runner) DetectAll(s model.Series) []model.Pattern {
	var patterns []model.Pattern
	for _, o := range r.Run(s) {
		if o.Err != nil {
			logger.Debug("detector %s skipped: %v", o.Detector, o.Err)
			continue
		}
		if o.Pattern != nil {
			patterns = append(patterns, *o.Pattern)
		}
	}
	return patterns
}

func detect(d Detector, s model.Series) (p *model.Pattern, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("detector %s panicked: %v", d.Name(), r)
		}
	}()
	return d.Detect(s)
}
