package position

// Percent bounds for a blind position: 0 = fully open, 100 = fully
// closed.
const (
	MinPercent = 0
	MaxPercent = 100
)

// Tolerance is the percent difference under which two positions count
// as the same; small enough that the blind looks identical, large
// enough to absorb rounding between the two unit systems.
const Tolerance = 2

// Span maps blind coverage percent to absolute motor steps and back.
// MinStep corresponds to fully open, MaxStep to fully closed.
type Span struct {
	MinStep int
	MaxStep int
}

// Steps returns the width of the span in steps.
func (s Span) Steps() int {
	return s.MaxStep - s.MinStep
}

// StepForPercent converts a coverage percent (clamped to 0-100) to the
// nearest absolute step.
func (s Span) StepForPercent(percent int) int {
	percent = clamp(percent, MinPercent, MaxPercent)
	return s.MinStep + (s.Steps()*percent+50)/100
}

// PercentForStep converts an absolute step (clamped to the span) to
// the nearest coverage percent. A zero-width span is always fully
// open.
func (s Span) PercentForStep(step int) int {
	width := s.Steps()
	if width <= 0 {
		return MinPercent
	}
	step = clamp(step, s.MinStep, s.MaxStep)
	return ((step-s.MinStep)*100 + width/2) / width
}

// CloseEnough reports whether two percent positions are within the
// tolerance of each other.
func CloseEnough(a, b int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= Tolerance
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
