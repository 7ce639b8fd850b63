package comm

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Pin is an output line. gpio.PinOut satisfies it.
type Pin interface {
	Out(l gpio.Level) error
}

// Step drives a pin to Level and holds it for Hold.
type Step struct {
	Name  string
	Pin   Pin
	Level gpio.Level
	Hold  time.Duration
}

// Sequence is a reset/wake choreography.
// When any step fails, the Release steps are applied so the lines never
// stay in a half-driven state.
type Sequence struct {
	Steps   []Step
	Release []Step
}

// Run executes the steps in order.
func (s Sequence) Run(sleep func(time.Duration)) (err error) {
	defer func() {
		if err != nil {
			for _, r := range s.Release {
				r.Pin.Out(r.Level)
			}
		}
	}()
	for n, step := range s.Steps {
		if err = step.Pin.Out(step.Level); err != nil {
			return &BusError{Op: fmt.Sprintf("gpio step %d %s=%v", n, step.Name, step.Level), Err: err}
		}
		if step.Hold > 0 {
			sleep(step.Hold)
		}
	}
	return nil
}

// WakeGuard holds the active-low wake line asserted until Release.
type WakeGuard struct {
	pin      Pin
	hold     time.Duration
	sleep    func(time.Duration)
	released bool
}

// AssertWake drives the wake line low and holds it.
// A nil pin yields a guard that does nothing.
func AssertWake(pin Pin, hold time.Duration, sleep func(time.Duration)) (*WakeGuard, error) {
	g := &WakeGuard{pin: pin, hold: hold, sleep: sleep}
	if pin == nil {
		return g, nil
	}
	if err := pin.Out(gpio.Low); err != nil {
		// the line state is unknown, try to leave it idle.
		pin.Out(gpio.High)
		return nil, &BusError{Op: "wake assert", Err: err}
	}
	sleep(hold)
	return g, nil
}

// Release deasserts the wake line. It is safe to call more than once.
func (g *WakeGuard) Release() error {
	if g.released || g.pin == nil {
		g.released = true
		return nil
	}
	g.released = true
	if err := g.pin.Out(gpio.High); err != nil {
		return &BusError{Op: "wake release", Err: err}
	}
	g.sleep(g.hold)
	return nil
}
