package gpio

import (
	"fmt"

	"github.com/mjoubert/blindgo/internal/debug"
)

// Level represents the logical state of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// PinMode indicates whether a GPIO is input or output.
// Input releases the pin (high impedance): a motor coil wired to an
// input pin is not driven at all.
type PinMode int

const (
	Input PinMode = iota
	Output
)

// Driver defines the abstract interface for controlling GPIOs.
// This allows plugging in a real Raspberry Pi implementation,
// a portable periph.io implementation, or a mock for development on PC.
type Driver interface {
	SetupPin(pin int, mode PinMode) error
	WritePin(pin int, level Level) error
	ReadPin(pin int) (Level, error)
	Close() error
}

// Backend names accepted by NewDriver.
const (
	BackendMock   = "mock"
	BackendRPi    = "rpio"
	BackendPeriph = "periph"
)

// NewDriver creates a GPIO driver for the named backend.
// "mock" logs actions only (dev/test), "rpio" uses go-rpio on a
// Raspberry Pi, "periph" uses periph.io (works on other SBCs too).
func NewDriver(backend string) (Driver, error) {
	switch backend {
	case BackendMock:
		debug.Info("Using MOCK GPIO driver (development mode)")
		return NewMockDriver(), nil
	case BackendRPi:
		return NewRPiDriver()
	case BackendPeriph:
		return NewPeriphDriver()
	default:
		return nil, fmt.Errorf("unknown gpio backend %q (want %s, %s or %s)",
			backend, BackendMock, BackendRPi, BackendPeriph)
	}
}

// MockDriver is a test implementation that logs actions and remembers
// pin modes. Used for development on PC or testing.
type MockDriver struct {
	modes map[int]PinMode
}

func NewMockDriver() *MockDriver {
	return &MockDriver{modes: make(map[int]PinMode)}
}

func (m *MockDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)
	m.modes[pin] = mode
	return nil
}

func (m *MockDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)
	return nil
}

func (m *MockDriver) ReadPin(pin int) (Level, error) {
	debug.GPIO("ReadPin", pin, nil)
	return Low, nil
}

func (m *MockDriver) Close() error {
	debug.Trace("GPIO Close (mock)")
	return nil
}

// Mode reports the last mode set for a pin (Input if never set up).
// Only meaningful on the mock.
func (m *MockDriver) Mode(pin int) PinMode {
	return m.modes[pin]
}
