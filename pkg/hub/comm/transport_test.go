package comm

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

type eventLog []string

type testPin struct {
	name string
	log  *eventLog
	err  error
}

func (p *testPin) Out(l gpio.Level) error {
	*p.log = append(*p.log, fmt.Sprintf("%s=%v", p.name, l))
	return p.err
}

type testBus struct {
	log      *eventLog
	reply    []byte
	writeErr error
	readErr  error
}

func (b *testBus) Tx(w, r []byte) error {
	if len(w) > 0 {
		*b.log = append(*b.log, fmt.Sprintf("write % x", w))
		return b.writeErr
	}
	*b.log = append(*b.log, fmt.Sprintf("read %d", len(r)))
	if b.readErr != nil {
		return b.readErr
	}
	copy(r, b.reply)
	return nil
}

func newTestTransport(reply []byte) (*Transport, *testBus, *eventLog) {
	log := &eventLog{}
	bus := &testBus{log: log, reply: reply}
	tr := NewTransport(bus, &testPin{name: "wake", log: log})
	tr.Sleep = func(d time.Duration) {
		*log = append(*log, "sleep "+d.String())
	}
	return tr, bus, log
}

func TestCommandBytes(t *testing.T) {
	testCases := []struct {
		name   string
		cmd    Command
		expect []byte
	}{
		{"no data", Cmd(0x02, 0x00), []byte{0x02, 0x00}},
		{"with data", Cmd(0x44, 0x00, 0x01, 0x00), []byte{0x44, 0x00, 0x01, 0x00}},
		{"delay kept out of frame", Cmd(0x52, 0x07, 0x01).After(time.Second), []byte{0x52, 0x07, 0x01}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.cmd.Bytes())
		})
	}
	require.Equal(t, DefaultDelay, Cmd(0, 0).Delay)
	require.Equal(t, "44.00+2", Cmd(0x44, 0x00, 1, 0).String())
}

func TestTransactSequence(t *testing.T) {
	tr, _, log := newTestTransport([]byte{0x00, 0x25})
	rx := make([]byte, 2)
	require.NoError(t, tr.Transact(Cmd(0x41, 0x00, 0xff).After(20*time.Millisecond), rx))
	require.Equal(t, []byte{0x00, 0x25}, rx)
	require.Equal(t, eventLog{
		"wake=Low",
		"sleep " + DefaultWakeHold.String(),
		"write 41 00 ff",
		"sleep 20ms",
		"read 2",
		"sleep 10ms",
		"wake=High",
		"sleep " + DefaultWakeHold.String(),
	}, *log)
}

func TestTransactFailures(t *testing.T) {
	ioErr := errors.New("nack")
	testCases := []struct {
		name     string
		reply    []byte
		writeErr error
		readErr  error
		check    func(error) bool
	}{
		{"nonzero status", []byte{0x02, 0x99}, nil, nil, IsProtocolError},
		{"write failure", []byte{0x00, 0x99}, ioErr, nil, IsBusError},
		{"read failure", []byte{0x00, 0x99}, nil, ioErr, IsBusError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr, bus, log := newTestTransport(tc.reply)
			bus.writeErr, bus.readErr = tc.writeErr, tc.readErr
			payload, err := tr.Exchange(Cmd(0x02, 0x00), 1)
			require.Error(t, err)
			require.True(t, tc.check(err))
			require.Nil(t, payload)
			if tc.writeErr != nil || tc.readErr != nil {
				require.True(t, errors.Is(err, ioErr))
			}
			// the wake line is always released.
			require.Contains(t, *log, "wake=High")
		})
	}
}

func TestTransactProtocolErrorFields(t *testing.T) {
	tr, _, _ := newTestTransport([]byte{0x03})
	err := tr.Send(Cmd(0x80, 0x03))
	var perr *ProtocolError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, ProtocolError{Family: 0x80, Index: 0x03, Status: 3}, *perr)
}

func TestTransactEmptyBuffer(t *testing.T) {
	tr, _, log := newTestTransport(nil)
	require.Equal(t, ErrNoStatus, tr.Transact(Cmd(0, 0), nil))
	require.Empty(t, *log)
}

func TestBootloaderTransportLeavesWake(t *testing.T) {
	log := &eventLog{}
	tr := NewBootloaderTransport(&testBus{log: log, reply: []byte{0x00, 0x08}})
	tr.Sleep = func(time.Duration) {}
	v, err := tr.ReadValue(Cmd(0x02, 0x00))
	require.NoError(t, err)
	require.Equal(t, byte(0x08), v)
	require.Equal(t, eventLog{"write 02 00", "read 2"}, *log)
}

func TestWakeAssertFailure(t *testing.T) {
	log := &eventLog{}
	tr := NewTransport(&testBus{log: log}, &testPin{name: "wake", log: log, err: errors.New("gpio")})
	tr.Sleep = func(time.Duration) {}
	err := tr.Send(Cmd(0, 0))
	require.True(t, IsBusError(err))
	require.NotContains(t, *log, "write 00 00")
}

func TestSequenceRelease(t *testing.T) {
	log := &eventLog{}
	reset := &testPin{name: "reset", log: log}
	wake := &testPin{name: "wake", log: log, err: errors.New("gpio")}
	seq := Sequence{
		Steps: []Step{
			{Name: "reset", Pin: reset, Level: gpio.Low, Hold: 20 * time.Millisecond},
			{Name: "wake", Pin: wake, Level: gpio.High, Hold: 20 * time.Millisecond},
			{Name: "reset", Pin: reset, Level: gpio.High},
		},
		Release: []Step{{Pin: reset, Level: gpio.High}},
	}
	var slept time.Duration
	err := seq.Run(func(d time.Duration) { slept += d })
	require.True(t, IsBusError(err))
	require.Equal(t, 20*time.Millisecond, slept)
	require.Equal(t, eventLog{"reset=Low", "wake=High", "reset=High"}, *log)
}

func TestSequenceSuccess(t *testing.T) {
	log := &eventLog{}
	reset := &testPin{name: "reset", log: log}
	seq := Sequence{
		Steps: []Step{
			{Pin: reset, Level: gpio.Low, Hold: 5 * time.Millisecond},
			{Pin: reset, Level: gpio.High, Hold: 7 * time.Millisecond},
		},
		Release: []Step{{Pin: reset, Level: gpio.Low}},
	}
	var slept time.Duration
	require.NoError(t, seq.Run(func(d time.Duration) { slept += d }))
	require.Equal(t, 12*time.Millisecond, slept)
	require.Equal(t, eventLog{"reset=Low", "reset=High"}, *log)
}
