package clock

import "time"

// Clock is the time capability the motor core consumes: a monotonic
// millisecond timestamp for step pacing and a sleep used by blocking
// moves. Injecting it keeps stepping testable without real delays.
type Clock interface {
	// Millis returns a non-decreasing timestamp in milliseconds.
	Millis() int64
	// Sleep blocks the caller for at least d.
	Sleep(d time.Duration)
}

// System is the real clock. Millis counts from process start, like a
// microcontroller's millis().
type System struct {
	start time.Time
}

func NewSystem() *System {
	return &System{start: time.Now()}
}

func (s *System) Millis() int64 {
	return time.Since(s.start).Milliseconds()
}

func (s *System) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Manual is a hand-advanced clock for tests. Sleep advances the
// timestamp instead of blocking, so blocking moves run instantly.
type Manual struct {
	now int64
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Millis() int64 {
	return m.now
}

func (m *Manual) Sleep(d time.Duration) {
	m.now += d.Milliseconds()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.now += d.Milliseconds()
}
