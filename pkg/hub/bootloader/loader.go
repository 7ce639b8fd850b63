package bootloader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/sensorhub.go/pkg/hub/comm"
)

// Device modes reported by the hub.
const (
	ModeApplication byte = 0x00
	ModeBootloader  byte = 0x08
)

const (
	resetHold      = 20 * time.Millisecond
	bootEnterDelay = 200 * time.Millisecond
	leaveHold      = 2000 * time.Millisecond
	leaveResetLow  = 5 * time.Millisecond
	leaveWakeHigh  = 15 * time.Millisecond
	appBootDelay   = 1700 * time.Millisecond

	eraseDelay = 1500 * time.Millisecond
	pageDelay  = 680 * time.Millisecond
)

// ErrNotEntered indicates Load without a successful Enter.
var ErrNotEntered = errors.New("bootloader not entered")

// Version is a firmware or bootloader version.
type Version struct {
	Major, Minor, Patch uint8
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Info describes the bootloader.
type Info struct {
	Version  Version
	PageSize uint16
}

// AppInfo describes the application after leaving the bootloader.
type AppInfo struct {
	MCUType byte
	Version Version
}

// PageError reports the page a load stopped at.
type PageError struct {
	Page  int
	Total int
	Err   error
}

// Error implements error.
func (e *PageError) Error() string {
	return fmt.Sprintf("write page %d/%d: %v", e.Page+1, e.Total, e.Err)
}

// Unwrap returns the transport error.
func (e *PageError) Unwrap() error {
	return e.Err
}

// Loader runs a bootloader session.
type Loader struct {
	// Progress is called after each page is written.
	Progress func(page, total int)

	boot    *comm.Transport
	app     *comm.Transport
	wake    comm.Pin
	reset   comm.Pin
	entered bool
}

// NewLoader creates a loader on the same bus and lines as the hub.
func NewLoader(bus comm.Bus, wake, reset comm.Pin) *Loader {
	return &Loader{
		boot:  comm.NewBootloaderTransport(bus),
		app:   comm.NewTransport(bus, wake),
		wake:  wake,
		reset: reset,
	}
}

// SetSleep replaces the clock used for every protocol delay.
func (l *Loader) SetSleep(fn func(time.Duration)) {
	l.boot.Sleep = fn
	l.app.Sleep = fn
}

func (l *Loader) release() []comm.Step {
	return []comm.Step{
		{Pin: l.reset, Level: gpio.High},
		{Pin: l.wake, Level: gpio.High},
	}
}

func readVersion(tr *comm.Transport, cmd comm.Command) (Version, error) {
	b, err := tr.Exchange(cmd, 3)
	if err != nil {
		return Version{}, err
	}
	return Version{Major: b[0], Minor: b[1], Patch: b[2]}, nil
}

func checkMode(tr *comm.Transport, want byte) error {
	mode, err := tr.ReadValue(comm.Cmd(comm.FamilyReadMode, 0x00))
	if err != nil {
		return fmt.Errorf("read device mode: %w", err)
	}
	if mode != want {
		return &comm.IdentityError{What: "device mode", Want: []byte{want}, Got: mode}
	}
	return nil
}

// Enter resets the hub into bootloader mode.
func (l *Loader) Enter() (info Info, err error) {
	l.entered = false
	seq := comm.Sequence{
		Steps: []comm.Step{
			{Name: "reset", Pin: l.reset, Level: gpio.Low, Hold: resetHold},
			{Name: "wake", Pin: l.wake, Level: gpio.Low, Hold: resetHold},
			{Name: "reset", Pin: l.reset, Level: gpio.High, Hold: bootEnterDelay},
		},
		Release: l.release(),
	}
	if err = seq.Run(l.boot.Wait); err != nil {
		return
	}
	if err = l.boot.Send(comm.Cmd(comm.FamilySetMode, 0x00, ModeBootloader)); err != nil {
		return info, fmt.Errorf("set bootloader mode: %w", err)
	}
	if err = checkMode(l.boot, ModeBootloader); err != nil {
		return
	}
	if info.Version, err = readVersion(l.boot, comm.Cmd(comm.FamilyBootInfo, 0x00)); err != nil {
		return info, fmt.Errorf("read bootloader version: %w", err)
	}
	size, err := l.boot.Exchange(comm.Cmd(comm.FamilyBootInfo, 0x01), 2)
	if err != nil {
		return info, fmt.Errorf("read page size: %w", err)
	}
	info.PageSize = binary.BigEndian.Uint16(size)
	l.entered = true
	glog.Infof("bootloader %s page size %d", info.Version, info.PageSize)
	return info, nil
}

// Load erases the application and writes every page of img. Any failure
// aborts the whole load and the hub stays in the bootloader.
func (l *Loader) Load(img Image) error {
	if !l.entered {
		return ErrNotEntered
	}
	if err := img.Validate(); err != nil {
		return err
	}
	total := img.PageCount()
	steps := []struct {
		name string
		cmd  comm.Command
	}{
		{"page count", comm.Cmd(comm.FamilyBootloader, 0x02, byte(total>>8), byte(total))},
		{"init vector", comm.Cmd(comm.FamilyBootloader, 0x00, img.InitVector()...)},
		{"auth vector", comm.Cmd(comm.FamilyBootloader, 0x01, img.AuthVector()...)},
		{"erase", comm.Cmd(comm.FamilyBootloader, 0x03).After(eraseDelay)},
	}
	for _, s := range steps {
		if err := l.boot.Send(s.cmd); err != nil {
			return fmt.Errorf("bootloader %s: %w", s.name, err)
		}
	}
	for n := 0; n < total; n++ {
		cmd := comm.Cmd(comm.FamilyBootloader, 0x04, img.Page(n)...).After(pageDelay)
		if err := l.boot.Send(cmd); err != nil {
			return &PageError{Page: n, Total: total, Err: err}
		}
		glog.V(2).Infof("bootloader page %d/%d written", n+1, total)
		if l.Progress != nil {
			l.Progress(n+1, total)
		}
	}
	return nil
}

// Leave resets the hub back into application mode.
func (l *Loader) Leave() (app AppInfo, err error) {
	seq := comm.Sequence{
		Steps: []comm.Step{
			{Name: "reset", Pin: l.reset, Level: gpio.High},
			{Name: "wake", Pin: l.wake, Level: gpio.Low, Hold: leaveHold},
			{Name: "reset", Pin: l.reset, Level: gpio.Low, Hold: leaveResetLow},
			{Name: "wake", Pin: l.wake, Level: gpio.High, Hold: leaveWakeHigh},
			{Name: "reset", Pin: l.reset, Level: gpio.High, Hold: appBootDelay},
		},
		Release: l.release(),
	}
	l.entered = false
	if err = seq.Run(l.app.Wait); err != nil {
		return
	}
	if err = checkMode(l.app, ModeApplication); err != nil {
		return
	}
	if app.MCUType, err = l.app.ReadValue(comm.Cmd(comm.FamilyIdentity, 0x00)); err != nil {
		return app, fmt.Errorf("read mcu type: %w", err)
	}
	if app.Version, err = readVersion(l.app, comm.Cmd(comm.FamilyIdentity, 0x03)); err != nil {
		return app, fmt.Errorf("read firmware version: %w", err)
	}
	glog.Infof("application firmware %s mcu type %d", app.Version, app.MCUType)
	return app, nil
}

// Flash enters the bootloader, loads img and returns to the application.
// The bootloader is not left when the load fails.
func (l *Loader) Flash(img Image) (AppInfo, error) {
	if err := img.Validate(); err != nil {
		return AppInfo{}, err
	}
	if _, err := l.Enter(); err != nil {
		return AppInfo{}, err
	}
	if err := l.Load(img); err != nil {
		return AppInfo{}, err
	}
	return l.Leave()
}
