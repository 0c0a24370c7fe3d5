package motion

import (
	"context"
	"sync"
	"time"

	"github.com/mjoubert/blindgo/internal/debug"
	"github.com/mjoubert/blindgo/internal/hw/motor"
	"github.com/mjoubert/blindgo/internal/logic/position"
)

// DefaultPollInterval paces the cooperative update loop. It only needs
// to be at most the motor's step delay; the motor does its own pacing.
const DefaultPollInterval = time.Millisecond

// Status is a snapshot of the blind for callers (CLI output, web UI).
type Status struct {
	Position int  `json:"position"`
	Target   int  `json:"target"`
	Percent  int  `json:"percent"`
	Moving   bool `json:"moving"`
}

// Controller owns one motor and its percent mapping. The motor itself
// is single-threaded; the controller is the concurrency boundary that
// lets HTTP handlers redirect or cancel a move while Run pumps it.
type Controller struct {
	mu    sync.Mutex
	motor *motor.Motor
	span  position.Span
	poll  time.Duration
}

// NewController creates a controller. poll <= 0 uses the default.
func NewController(m *motor.Motor, span position.Span, poll time.Duration) *Controller {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Controller{
		motor: m,
		span:  span,
		poll:  poll,
	}
}

// Run pumps the motor until ctx is cancelled. Each tick does O(1)
// work, so cancellation and redirection stay responsive. The motor is
// released on the way out.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			debug.Verbose("motion: run loop stopping")
			return c.Stop()
		case <-ticker.C:
			if err := c.Tick(); err != nil {
				return err
			}
		}
	}
}

// Tick performs one pump iteration. Exposed so tests (and bare main
// loops without a ticker) can drive the motor directly.
func (c *Controller) Tick() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasMoving := c.motor.IsActive()
	if err := c.motor.Update(); err != nil {
		return err
	}
	if wasMoving && !c.motor.IsActive() {
		debug.Position(c.motor.CurrentStep(), c.span.PercentForStep(c.motor.CurrentStep()))
	}
	return nil
}

// MoveToStep requests a non-blocking move to an absolute step. The
// target is clamped by the motor; a move already in flight is simply
// redirected.
func (c *Controller) MoveToStep(step int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.motor.MoveTo(step)
}

// MoveToPercent requests a non-blocking move to a coverage percent. A
// request within tolerance of the current resting position is a no-op,
// so percent round-tripping cannot jiggle the blind by a step or two.
func (c *Controller) MoveToPercent(percent int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.motor.IsActive() && position.CloseEnough(percent, c.span.PercentForStep(c.motor.CurrentStep())) {
		return nil
	}
	return c.motor.MoveTo(c.span.StepForPercent(percent))
}

// Stop deactivates the motor, cancelling any move in flight. The
// position stays wherever the blind is.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.motor.Deactivate()
}

// Status returns a consistent snapshot of the blind state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Position: c.motor.CurrentStep(),
		Target:   c.motor.TargetStep(),
		Percent:  c.span.PercentForStep(c.motor.CurrentStep()),
		Moving:   c.motor.IsActive(),
	}
}

// Span returns the percent mapping in use.
func (c *Controller) Span() position.Span {
	return c.span
}
