package device

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/sensorhub.go/pkg/hub/comm"
)

const (
	resetHold    = 20 * time.Millisecond
	appBootDelay = 1600 * time.Millisecond
)

// Settings are read back from the hub after initialization.
type Settings struct {
	ReportPeriod uint8
	Timing       TimingLimits
}

// Hub is the driver instance of one sensor hub.
type Hub struct {
	cfg    Config
	tr     *comm.Transport
	wake   comm.Pin
	reset  comm.Pin
	poller *Poller

	// lock serializes caller operations.
	lock  sync.Mutex
	ready bool
	mode  atomic.Int32

	qlock  sync.RWMutex
	queues *queueSet

	version  Version
	identity Identity
	settings Settings
	leds     [3]uint8
	motion   MotionConfig
}

// New creates a hub on bus with the wake (MFIO) and reset lines.
func New(bus comm.Bus, wake, reset comm.Pin, cfg Config) (*Hub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h := &Hub{
		cfg:    cfg,
		tr:     comm.NewTransport(bus, wake),
		wake:   wake,
		reset:  reset,
		leds:   cfg.LEDCurrents,
		motion: cfg.Motion,
	}
	h.poller = newPoller(h)
	return h, nil
}

// SetSleep replaces the clock used for every protocol delay.
func (h *Hub) SetSleep(fn func(time.Duration)) {
	h.tr.Sleep = fn
}

// Config returns the configuration.
func (h *Hub) Config() Config {
	return h.cfg
}

// Transport returns the application mode transport.
func (h *Hub) Transport() *comm.Transport {
	return h.tr
}

// Poller returns the background poller.
func (h *Hub) Poller() *Poller {
	return h.poller
}

// Name implements Named.
func (h *Hub) Name() string {
	return "hub-poller"
}

// Run runs the background poller until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	return h.poller.Run(ctx)
}

// Mode returns the last mode entered successfully. After a failed
// transition it still reports the previous mode although the poller is
// paused and no queues are live until a transition succeeds.
func (h *Hub) Mode() Mode {
	return Mode(h.mode.Load())
}

func (h *Hub) setMode(m Mode) {
	if prev := Mode(h.mode.Swap(int32(m))); prev != m {
		glog.Infof("hub mode %s -> %s", prev, m)
	}
}

// Version returns the firmware version read during Init.
func (h *Hub) Version() Version {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.version
}

// Identity returns the sensor identities verified during Init.
func (h *Hub) Identity() Identity {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.identity
}

// Settings returns the values read back by the initializer.
func (h *Hub) Settings() Settings {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.settings
}

func (h *Hub) appModeSequence() comm.Sequence {
	return comm.Sequence{
		Steps: []comm.Step{
			{Name: "reset", Pin: h.reset, Level: gpio.Low, Hold: resetHold},
			{Name: "wake", Pin: h.wake, Level: gpio.High, Hold: resetHold},
			{Name: "reset", Pin: h.reset, Level: gpio.High, Hold: appBootDelay},
		},
		Release: []comm.Step{
			{Pin: h.reset, Level: gpio.High},
			{Pin: h.wake, Level: gpio.High},
		},
	}
}

// Init resets the hub into application mode, verifies the attached
// sensors and writes the default configuration. Any failure is fatal to
// the instance and Init must be retried from the start. A running
// acquisition is dropped: the hub is left Idle with the poller paused.
func (h *Hub) Init() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.suspend()
	if err := h.appModeSequence().Run(h.tr.Wait); err != nil {
		return err
	}
	version, err := h.readVersion()
	if err != nil {
		return err
	}
	identity, err := h.verifyIdentity()
	if err != nil {
		return err
	}
	if err = h.writeConfig(); err != nil {
		return err
	}
	settings, err := h.readConfig()
	if err != nil {
		return err
	}
	h.version, h.identity, h.settings = version, identity, settings
	h.ready = true
	glog.Infof("hub firmware %s afe=0x%02x accel=0x%02x", version, identity.AFE, identity.Accel)
	return nil
}

// Suspend pauses the poller, drops the live queues and marks the hub
// Idle and uninitialized without any bus traffic. It is used before the
// hub is reset behind the driver's back, e.g. for flashing, and Init must
// run afterwards.
func (h *Hub) Suspend() *Paused {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.suspend()
}

func (h *Hub) suspend() *Paused {
	p := h.poller.Pause()
	h.idle(p)
	h.ready = false
	return p
}

func (h *Hub) checkReady() error {
	if !h.ready {
		return comm.ModeErrorf("hub not initialized")
	}
	return nil
}
