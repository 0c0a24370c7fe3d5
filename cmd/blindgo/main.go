package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/mjoubert/blindgo/internal/config"
	"github.com/mjoubert/blindgo/internal/debug"
	"github.com/mjoubert/blindgo/internal/hw/clock"
	"github.com/mjoubert/blindgo/internal/hw/gpio"
	"github.com/mjoubert/blindgo/internal/hw/motor"
	"github.com/mjoubert/blindgo/internal/logic/motion"
	"github.com/mjoubert/blindgo/internal/logic/position"
	"github.com/mjoubert/blindgo/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	percent := flag.Int("percent", -1, "one-shot blocking move to coverage percent (0-100), then exit")
	step := &stepFlag{}
	flag.Var(step, "step", "one-shot blocking move to an absolute step (clamped to the motor range), then exit")
	startStep := flag.Int("at", 0, "assume the blind is at this absolute step on startup (calibration)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if err := validatePercent(*percent); err != nil {
		log.Fatalf("invalid -percent: %v", err)
	}
	if *percent >= 0 && step.isSet() {
		log.Fatal("-percent and -step are mutually exclusive")
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("GPIO backend", cfg.Defaults.GPIOBackend)

	// Initialize GPIO driver
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.GPIOBackend)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize motor
	m := motor.New(gpioDriver, clock.NewSystem(), motor.Config{
		Pins:      cfg.MotorPins(),
		MinStep:   cfg.Motor.MinStep,
		MaxStep:   cfg.Motor.MaxStep,
		StepDelay: cfg.StepDelay(),
	})
	m.SetCurrentStep(*startStep)
	debug.PrintStruct("Motor config", cfg.Motor)

	span := position.Span{MinStep: cfg.Motor.MinStep, MaxStep: cfg.Motor.MaxStep}

	// One-shot blocking move: no pump loop, no web server.
	if *percent >= 0 || step.isSet() {
		m.SetStepObserver(func(s int) {
			debug.Position(s, span.PercentForStep(s))
		})
		target := step.step()
		if *percent >= 0 {
			target = span.StepForPercent(*percent)
		}
		debug.Info("Moving to step %d (%d%%)", target, span.PercentForStep(target))
		if err := m.MoveToSync(target); err != nil {
			log.Fatalf("move failed: %v", err)
		}
		fmt.Printf("position: step %d (%d%%)\n", m.CurrentStep(), span.PercentForStep(m.CurrentStep()))
		return
	}

	port := webPort.port()
	if port == 0 {
		port = cfg.Web.Port
	}
	if port == 0 {
		log.Fatal("nothing to do: pass -percent for a one-shot move, or enable the web server with -web or web.port")
	}

	ctrl := motion.NewController(m, span, cfg.PollInterval())

	broadcaster := web.NewStatusBroadcaster()
	debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

	handlers := web.NewHandlers(broadcaster, ctrl, web.DefaultStaticFS())
	srv := web.NewServer(fmt.Sprintf(":%d", port), handlers)

	// The pump loop and the web server run until the signal context
	// cancels; the loop releases the motor on its way out.
	loopErr := make(chan error, 1)
	go func() {
		loopErr <- ctrl.Run(ctx)
	}()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("web server: %v", err)
	}
	cancel()
	if err := <-loopErr; err != nil {
		log.Fatalf("motion loop: %v", err)
	}
}

// validatePercent checks the one-shot move flag. -1 means "not set".
func validatePercent(p int) error {
	if p == -1 {
		return nil
	}
	if p < 0 || p > 100 {
		return fmt.Errorf("percent must be between 0 and 100, got %d", p)
	}
	return nil
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }

// stepFlag implements flag.Value for -step. Steps may be negative, so
// "was it set" is tracked explicitly rather than with a sentinel.
type stepFlag struct {
	val int
	set bool
}

func (s *stepFlag) String() string {
	if !s.set {
		return ""
	}
	return strconv.Itoa(s.val)
}

func (s *stepFlag) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("step must be an integer, got %q", v)
	}
	s.val = n
	s.set = true
	return nil
}

func (s *stepFlag) isSet() bool { return s.set }

func (s *stepFlag) step() int { return s.val }
