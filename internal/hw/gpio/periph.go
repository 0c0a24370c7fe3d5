package gpio

import (
	"fmt"
	"strconv"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/mjoubert/blindgo/internal/debug"
)

// PeriphDriver implements Driver on top of periph.io. Unlike go-rpio it
// is not tied to the Raspberry Pi memory map, so it also works on other
// single-board computers periph.io supports.
type PeriphDriver struct {
	pins map[int]pgpio.PinIO
}

// NewPeriphDriver initializes the periph.io host and returns a driver.
func NewPeriphDriver() (*PeriphDriver, error) {
	debug.Info("Initializing periph.io GPIO driver")

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	return &PeriphDriver{
		pins: make(map[int]pgpio.PinIO),
	}, nil
}

// lookup resolves a BCM pin number to a periph pin, caching the result.
func (d *PeriphDriver) lookup(pin int) (pgpio.PinIO, error) {
	if p, ok := d.pins[pin]; ok {
		return p, nil
	}
	p := gpioreg.ByName(strconv.Itoa(pin))
	if p == nil {
		p = gpioreg.ByName("GPIO" + strconv.Itoa(pin))
	}
	if p == nil {
		return nil, fmt.Errorf("gpio pin %d not found by periph", pin)
	}
	d.pins[pin] = p
	return p, nil
}

func (d *PeriphDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)

	p, err := d.lookup(pin)
	if err != nil {
		return err
	}

	switch mode {
	case Input:
		// Float, not pull-up/down: a released coil pin must not source current.
		return p.In(pgpio.Float, pgpio.NoEdge)
	case Output:
		return p.Out(pgpio.Low)
	default:
		return fmt.Errorf("unknown pin mode: %d", mode)
	}
}

func (d *PeriphDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)

	p, err := d.lookup(pin)
	if err != nil {
		return err
	}
	return p.Out(pgpio.Level(level))
}

func (d *PeriphDriver) ReadPin(pin int) (Level, error) {
	debug.GPIO("ReadPin", pin, nil)

	p, err := d.lookup(pin)
	if err != nil {
		return Low, err
	}
	return Level(p.Read()), nil
}

func (d *PeriphDriver) Close() error {
	debug.Trace("GPIO Close (periph driver)")

	// Release all pins (motor de-energized)
	for pin, p := range d.pins {
		debug.Verbose("Resetting pin %d to input", pin)
		if err := p.In(pgpio.Float, pgpio.NoEdge); err != nil {
			return fmt.Errorf("release pin %d: %w", pin, err)
		}
	}
	return nil
}
