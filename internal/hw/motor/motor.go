package motor

import (
	"fmt"
	"time"

	"github.com/mjoubert/blindgo/internal/debug"
	"github.com/mjoubert/blindgo/internal/hw/clock"
	"github.com/mjoubert/blindgo/internal/hw/gpio"
)

// phaseCount is the number of rows in the full-step excitation table.
const phaseCount = 4

// DefaultStepDelay is the minimum interval between two physical steps.
// 28BYJ-48 class motors miss steps below about 2ms.
const DefaultStepDelay = 2 * time.Millisecond

// fullSteps maps a phase index to the levels applied to the 4 coil
// pins. One full traversal is one electrical revolution; reading the
// rows in increasing order turns the motor clockwise.
var fullSteps = [phaseCount][4]gpio.Level{
	{gpio.High, gpio.High, gpio.Low, gpio.Low},
	{gpio.Low, gpio.High, gpio.High, gpio.Low},
	{gpio.Low, gpio.Low, gpio.High, gpio.High},
	{gpio.High, gpio.Low, gpio.Low, gpio.High},
}

// StepObserver is called with the new absolute position after each
// physical step of a blocking move.
type StepObserver func(currentStep int)

// Config holds the hardware configuration for a 4-wire stepper motor.
type Config struct {
	// Pins are the 4 coil-drive pins (BCM), in excitation-table order.
	Pins [4]int
	// MinStep and MaxStep bound every move target (inclusive).
	MinStep int
	MaxStep int
	// StepDelay is the minimum inter-step interval. 0 defaults to 2ms.
	StepDelay time.Duration
}

// Motor drives a 4-phase stepper through the full-step sequence and
// tracks its absolute position in steps. Moves are either polled
// (MoveTo + repeated Update calls from a main loop) or blocking
// (MoveToSync, which owns the caller until the target is reached).
//
// Move targets are silently clamped to [MinStep, MaxStep]; this is the
// documented contract, not an error. A caller cannot distinguish a
// request for exactly a bound from a clamped one.
//
// Motor is not safe for concurrent use; callers that share one between
// goroutines must serialize access (see logic/motion.Controller).
type Motor struct {
	gpio  gpio.Driver
	clk   clock.Clock
	cfg   Config
	delay time.Duration

	currentStep  int
	targetStep   int
	lastPosition int
	clockwise    bool
	active       bool
	lastStepMs   int64
	observer     StepObserver
}

// New creates a motor over the given GPIO driver and clock. Pins are
// not touched until the first activation.
func New(g gpio.Driver, clk clock.Clock, cfg Config) *Motor {
	delay := cfg.StepDelay
	if delay <= 0 {
		delay = DefaultStepDelay
	}

	return &Motor{
		gpio:  g,
		clk:   clk,
		cfg:   cfg,
		delay: delay,
	}
}

// Activate energizes the driver for a move in the given direction: all
// 4 pins become outputs driven low, and the motor is marked active.
// Calling it again with a different direction simply re-arms; no step
// is lost or duplicated because stepping is a separate operation.
func (m *Motor) Activate(clockwise bool) error {
	for _, pin := range m.cfg.Pins {
		if err := m.gpio.SetupPin(pin, gpio.Output); err != nil {
			return fmt.Errorf("setup pin %d: %w", pin, err)
		}
		if err := m.gpio.WritePin(pin, gpio.Low); err != nil {
			return fmt.Errorf("write pin %d: %w", pin, err)
		}
	}
	m.clockwise = clockwise
	m.active = true
	m.lastPosition = m.currentStep

	debug.Verbose("motor: activated (clockwise=%v) at step %d", clockwise, m.currentStep)
	return nil
}

// Deactivate releases all 4 pins (input mode, high impedance) so the
// motor is no longer driven. Safe to call when already inactive.
func (m *Motor) Deactivate() error {
	for _, pin := range m.cfg.Pins {
		if err := m.gpio.SetupPin(pin, gpio.Input); err != nil {
			return fmt.Errorf("release pin %d: %w", pin, err)
		}
	}
	m.active = false
	m.lastPosition = m.currentStep

	debug.Verbose("motor: deactivated at step %d", m.currentStep)
	return nil
}

// Step emits exactly one physical step in the current direction and
// adjusts the position by +-1. It never blocks and never checks
// bounds; pacing and bounds are the target-seeking callers' job.
func (m *Motor) Step() error {
	row := fullSteps[m.phaseIndex()]
	for i, pin := range m.cfg.Pins {
		if err := m.gpio.WritePin(pin, row[i]); err != nil {
			return fmt.Errorf("write pin %d: %w", pin, err)
		}
	}

	if m.clockwise {
		m.currentStep++
	} else {
		m.currentStep--
	}
	return nil
}

// phaseIndex selects the excitation row for the current position.
// Clockwise reads the table forward, counter-clockwise in reverse, so
// one signed position counter serves both directions. Floor modulo
// keeps the index valid for negative positions.
func (m *Motor) phaseIndex() int {
	i := ((m.currentStep % phaseCount) + phaseCount) % phaseCount
	if m.clockwise {
		return i
	}
	return (phaseCount - 1) - i
}

// MoveTo requests a move to the given absolute step without blocking.
// The target is clamped to [MinStep, MaxStep]. If not already there,
// the motor activates toward it; advancement then happens through
// Update calls. A new MoveTo mid-motion simply redirects the move.
func (m *Motor) MoveTo(target int) error {
	m.targetStep = clamp(target, m.cfg.MinStep, m.cfg.MaxStep)
	if m.currentStep == m.targetStep {
		return nil
	}

	debug.Move(m.currentStep, m.targetStep, directionName(m.targetStep > m.currentStep))
	return m.Activate(m.targetStep > m.currentStep)
}

// Update advances an active move by at most one step. It is meant to
// be called repeatedly from a non-blocking main loop: each call does
// O(1) work. Steps are paced to the configured delay, so over-polling
// is safe and under-polling only slows the move down. When the target
// is reached or overshot the motor deactivates itself.
func (m *Motor) Update() error {
	if !m.active {
		return nil
	}

	if (m.clockwise && m.currentStep >= m.targetStep) ||
		(!m.clockwise && m.currentStep <= m.targetStep) {
		return m.Deactivate()
	}

	now := m.clk.Millis()
	if now-m.lastStepMs >= m.delay.Milliseconds() {
		if err := m.Step(); err != nil {
			return err
		}
		m.lastStepMs = now
	}
	return nil
}

// MoveToSync moves to the given absolute step and only returns once
// the (clamped) target is reached. It blocks the caller for the whole
// move, sleeping the step delay between steps, and notifies the step
// observer after every step. The motor is always deactivated before
// returning. Do not call it from a loop that must stay responsive.
func (m *Motor) MoveToSync(target int) error {
	m.targetStep = clamp(target, m.cfg.MinStep, m.cfg.MaxStep)

	if m.currentStep == m.targetStep {
		return nil
	}

	debug.Move(m.currentStep, m.targetStep, directionName(m.targetStep > m.currentStep))
	if err := m.Activate(m.targetStep > m.currentStep); err != nil {
		return err
	}

	for m.active && m.currentStep != m.targetStep {
		if err := m.Step(); err != nil {
			_ = m.Deactivate()
			return err
		}
		m.clk.Sleep(m.delay)
		if m.observer != nil {
			m.observer(m.currentStep)
		}
	}

	return m.Deactivate()
}

// SetStepObserver registers the callback invoked after each physical
// step of a blocking move. At most one observer is active; registering
// replaces the previous one. nil unregisters.
func (m *Motor) SetStepObserver(fn StepObserver) {
	m.observer = fn
}

// CurrentStep returns the absolute position in steps.
func (m *Motor) CurrentStep() int { return m.currentStep }

// SetCurrentStep reseeds the absolute position, e.g. after manual
// calibration against a known physical endpoint.
func (m *Motor) SetCurrentStep(step int) { m.currentStep = step }

// TargetStep returns the clamped target of the current or most recent
// move request.
func (m *Motor) TargetStep() int { return m.targetStep }

// LastPosition returns the position snapshot taken at the last
// activation or deactivation. Diagnostic only.
func (m *Motor) LastPosition() int { return m.lastPosition }

// SetLastPosition overrides the diagnostic snapshot.
func (m *Motor) SetLastPosition(step int) { m.lastPosition = step }

// IsClockwise reports the direction of the current or most recent move.
func (m *Motor) IsClockwise() bool { return m.clockwise }

// IsActive reports whether the coils are currently driven.
func (m *Motor) IsActive() bool { return m.active }

// StepDelay returns the effective minimum inter-step interval.
func (m *Motor) StepDelay() time.Duration { return m.delay }

// MinStep returns the lower move bound.
func (m *Motor) MinStep() int { return m.cfg.MinStep }

// MaxStep returns the upper move bound.
func (m *Motor) MaxStep() int { return m.cfg.MaxStep }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func directionName(clockwise bool) string {
	if clockwise {
		return "clockwise"
	}
	return "counter-clockwise"
}
