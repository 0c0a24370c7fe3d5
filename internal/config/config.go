package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MotorConfig holds the hardware configuration for the blind motor.
type MotorConfig struct {
	Pins        []int `yaml:"pins"`          // 4 coil pins (BCM), in excitation order
	MinStep     int   `yaml:"min_step"`      // fully open position
	MaxStep     int   `yaml:"max_step"`      // fully closed position
	StepDelayMs int   `yaml:"step_delay_ms"` // min interval between steps
}

// WebConfig configures the optional web control surface.
type WebConfig struct {
	Port int `yaml:"port"` // 0 = web UI disabled
}

// DefaultsConfig contains generic runtime parameters.
type DefaultsConfig struct {
	DebugLevel     int    `yaml:"debug_level"`      // 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	GPIOBackend    string `yaml:"gpio_backend"`     // "mock", "rpio" or "periph"
	PollIntervalMs int    `yaml:"poll_interval_ms"` // update pump interval
}

// Config aggregates all application configuration.
type Config struct {
	Motor    MotorConfig    `yaml:"motor"`
	Web      WebConfig      `yaml:"web"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if len(cfg.Motor.Pins) != 4 {
		return nil, fmt.Errorf("motor.pins must list exactly 4 pins, got %d", len(cfg.Motor.Pins))
	}
	seen := make(map[int]bool, 4)
	for _, pin := range cfg.Motor.Pins {
		if pin <= 0 {
			return nil, fmt.Errorf("motor.pins entries must be > 0, got %d", pin)
		}
		if seen[pin] {
			return nil, fmt.Errorf("motor.pins contains pin %d twice", pin)
		}
		seen[pin] = true
	}
	if cfg.Motor.MaxStep <= cfg.Motor.MinStep {
		return nil, fmt.Errorf("motor.max_step (%d) must be greater than motor.min_step (%d)",
			cfg.Motor.MaxStep, cfg.Motor.MinStep)
	}
	if cfg.Motor.StepDelayMs < 0 {
		return nil, fmt.Errorf("motor.step_delay_ms must be >= 0, got %d", cfg.Motor.StepDelayMs)
	}
	if cfg.Motor.StepDelayMs == 0 {
		cfg.Motor.StepDelayMs = 2 // safe pacing for 28BYJ-48 class motors
	}
	if cfg.Web.Port < 0 || cfg.Web.Port > 65535 {
		return nil, fmt.Errorf("web.port must be 0-65535, got %d", cfg.Web.Port)
	}
	if cfg.Defaults.DebugLevel < 0 || cfg.Defaults.DebugLevel > 4 {
		return nil, fmt.Errorf("debug_level must be 0-4, got %d", cfg.Defaults.DebugLevel)
	}
	if cfg.Defaults.GPIOBackend == "" {
		cfg.Defaults.GPIOBackend = "mock"
	}
	if cfg.Defaults.PollIntervalMs <= 0 {
		cfg.Defaults.PollIntervalMs = 1
	}

	return &cfg, nil
}

// StepDelay returns the minimum duration between two motor steps.
func (c *Config) StepDelay() time.Duration {
	return time.Duration(c.Motor.StepDelayMs) * time.Millisecond
}

// PollInterval returns the update pump interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Defaults.PollIntervalMs) * time.Millisecond
}

// MotorPins returns the 4 coil pins as a fixed-size array.
func (c *Config) MotorPins() [4]int {
	var pins [4]int
	copy(pins[:], c.Motor.Pins)
	return pins
}
