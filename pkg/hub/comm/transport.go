package comm

import (
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultWakeHold is the hold time on each edge of the wake line.
const DefaultWakeHold = 500 * time.Microsecond

// Bus is the two-wire bus primitive. *i2c.Dev satisfies it.
type Bus interface {
	Tx(w, r []byte) error
}

// Transport performs validated command/response transactions.
// Calls are serialized, the bus never sees interleaved frames.
type Transport struct {
	Bus  Bus
	Wake Pin
	// WakeHold is the hold time after each wake line edge.
	WakeHold time.Duration
	// Settle is the wait after reading a response.
	Settle time.Duration
	// Sleep is used for all waits, time.Sleep if nil.
	Sleep func(time.Duration)

	lock sync.Mutex
}

// NewTransport creates an application mode transport toggling the wake
// line around every transaction.
func NewTransport(bus Bus, wake Pin) *Transport {
	return &Transport{
		Bus:      bus,
		Wake:     wake,
		WakeHold: DefaultWakeHold,
		Settle:   DefaultDelay,
	}
}

// NewBootloaderTransport creates a transport for bootloader mode where
// the wake line is owned by the entry sequence.
func NewBootloaderTransport(bus Bus) *Transport {
	return NewTransport(bus, nil)
}

func (t *Transport) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if t.Sleep != nil {
		t.Sleep(d)
	} else {
		time.Sleep(d)
	}
}

// Wait sleeps for d using the transport's Sleep.
func (t *Transport) Wait(d time.Duration) {
	t.sleep(d)
}

// Transact writes cmd and reads len(rx) bytes into rx, where rx[0] is the
// status byte. The content of rx must be ignored when an error is returned.
func (t *Transport) Transact(cmd Command, rx []byte) (err error) {
	if len(rx) == 0 {
		return ErrNoStatus
	}
	t.lock.Lock()
	defer t.lock.Unlock()

	wake, err := AssertWake(t.Wake, t.WakeHold, t.sleep)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := wake.Release(); err == nil {
			err = rerr
		}
	}()

	if err = t.Bus.Tx(cmd.Bytes(), nil); err != nil {
		return &BusError{Op: "write " + cmd.String(), Err: err}
	}
	t.sleep(cmd.Delay)
	if err = t.Bus.Tx(nil, rx); err != nil {
		return &BusError{Op: "read " + cmd.String(), Err: err}
	}
	t.sleep(t.Settle)
	if glog.V(4) {
		glog.Infof("hub %s -> % x", cmd, rx)
	}
	if rx[0] != StatusSuccess {
		return &ProtocolError{Family: cmd.Family, Index: cmd.Index, Status: rx[0]}
	}
	return nil
}

// Exchange performs cmd expecting n payload bytes after the status byte.
func (t *Transport) Exchange(cmd Command, n int) ([]byte, error) {
	rx := make([]byte, n+1)
	if err := t.Transact(cmd, rx); err != nil {
		return nil, err
	}
	return rx[1:], nil
}

// Send performs cmd expecting only the status byte.
func (t *Transport) Send(cmd Command) error {
	var rx [1]byte
	return t.Transact(cmd, rx[:])
}

// SendAll performs the commands in order and stops at the first failure.
func (t *Transport) SendAll(cmds ...Command) error {
	for _, cmd := range cmds {
		if err := t.Send(cmd); err != nil {
			return err
		}
	}
	return nil
}

// ReadValue performs cmd expecting a single payload byte.
func (t *Transport) ReadValue(cmd Command) (byte, error) {
	var rx [2]byte
	if err := t.Transact(cmd, rx[:]); err != nil {
		return 0, err
	}
	return rx[1], nil
}
