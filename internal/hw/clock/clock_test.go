package clock

import (
	"testing"
	"time"
)

func TestManual_AdvanceAndSleep(t *testing.T) {
	c := NewManual()
	if c.Millis() != 0 {
		t.Errorf("fresh manual clock = %d, want 0", c.Millis())
	}

	c.Advance(5 * time.Millisecond)
	if c.Millis() != 5 {
		t.Errorf("after Advance(5ms) = %d, want 5", c.Millis())
	}

	c.Sleep(2 * time.Millisecond)
	if c.Millis() != 7 {
		t.Errorf("Sleep should advance the manual clock, got %d, want 7", c.Millis())
	}
}

func TestSystem_MillisNonDecreasing(t *testing.T) {
	c := NewSystem()
	a := c.Millis()
	c.Sleep(2 * time.Millisecond)
	b := c.Millis()
	if b < a {
		t.Errorf("Millis went backwards: %d then %d", a, b)
	}
	if b-a < 1 {
		t.Errorf("Millis did not advance across a 2ms sleep: %d then %d", a, b)
	}
}
