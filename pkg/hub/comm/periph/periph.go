// Package periph opens the hub's bus and GPIO lines on real hardware.
package periph

import (
	"fmt"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultAddr is the hub's 7-bit bus address.
const DefaultAddr uint16 = 0x55

// Config names the hardware resources.
type Config struct {
	Bus   string
	Addr  uint16
	Wake  string
	Reset string
}

// Hardware holds the opened resources.
type Hardware struct {
	Dev   *i2c.Dev
	Wake  gpio.PinIO
	Reset gpio.PinIO

	bus i2c.BusCloser
}

// Open initializes the host drivers and opens the bus and pins.
func Open(cfg Config) (*Hardware, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	wake := gpioreg.ByName(cfg.Wake)
	if wake == nil {
		return nil, fmt.Errorf("unknown wake pin %q", cfg.Wake)
	}
	reset := gpioreg.ByName(cfg.Reset)
	if reset == nil {
		return nil, fmt.Errorf("unknown reset pin %q", cfg.Reset)
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("open bus %q: %w", cfg.Bus, err)
	}
	addr := cfg.Addr
	if addr == 0 {
		addr = DefaultAddr
	}
	glog.Infof("hub on %s@0x%02x wake=%s reset=%s", bus, addr, wake, reset)
	return &Hardware{
		Dev:   &i2c.Dev{Bus: bus, Addr: addr},
		Wake:  wake,
		Reset: reset,
		bus:   bus,
	}, nil
}

// Close releases the bus.
func (h *Hardware) Close() error {
	return h.bus.Close()
}
