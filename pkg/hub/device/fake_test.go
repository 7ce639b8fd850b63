package device

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

// fakeHub answers commands like the hub firmware would.
type fakeHub struct {
	lock    sync.Mutex
	writes  []string
	pending []byte

	afeID   byte
	accelID byte
	version [3]byte
	sensor  byte
	fifo    [][]byte
	period  byte
	algoCfg map[byte][]byte

	// fail and status are keyed by the hex of a command prefix.
	fail   map[string]error
	status map[string]byte
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		afeID:   0x25,
		accelID: AccelWhoAmI,
		version: [3]byte{30, 1, 4},
		algoCfg: make(map[byte][]byte),
		fail:    make(map[string]error),
		status:  make(map[string]byte),
	}
}

func hexOf(b []byte) string {
	return fmt.Sprintf("% x", b)
}

func lookup[T any](m map[string]T, frame []byte) (v T, ok bool) {
	for n := len(frame); n >= 2; n-- {
		if v, ok = m[hexOf(frame[:n])]; ok {
			return
		}
	}
	return
}

func (f *fakeHub) Tx(w, r []byte) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if len(w) > 0 {
		f.pending = append([]byte(nil), w...)
		f.writes = append(f.writes, hexOf(w))
		if err, ok := lookup(f.fail, w); ok {
			return err
		}
		f.apply(w)
		return nil
	}
	for n := range r {
		r[n] = 0
	}
	if st, ok := lookup(f.status, f.pending); ok {
		r[0] = st
		return nil
	}
	copy(r[1:], f.respond(f.pending))
	return nil
}

func (f *fakeHub) apply(w []byte) {
	switch {
	case w[0] == 0x10 && w[1] == 0x02:
		f.period = w[2]
	case w[0] == 0x50 && w[1] == 0x07 && len(w) > 3:
		f.algoCfg[w[2]] = append([]byte(nil), w[3:]...)
	}
}

func (f *fakeHub) respond(cmd []byte) []byte {
	switch hexOf(cmd[:2]) {
	case "00 00":
		return []byte{f.sensor}
	case "11 02":
		return []byte{f.period}
	case "12 00":
		return []byte{byte(len(f.fifo))}
	case "12 01":
		var out []byte
		for _, s := range f.fifo {
			out = append(out, s...)
		}
		f.fifo = nil
		return out
	case "41 00":
		return []byte{f.afeID}
	case "41 04":
		return []byte{f.accelID}
	case "51 07":
		return f.algoCfg[cmd[2]]
	case "ff 03":
		return f.version[:]
	}
	return nil
}

func (f *fakeHub) written() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeHub) clearWrites() {
	f.lock.Lock()
	f.writes = nil
	f.lock.Unlock()
}

func (f *fakeHub) push(samples ...[]byte) {
	f.lock.Lock()
	f.sensor = statusDataReady
	f.fifo = append(f.fifo, samples...)
	f.lock.Unlock()
}

type fakePin struct {
	name string
	log  *[]string
}

func (p *fakePin) Out(l gpio.Level) error {
	if p.log != nil {
		*p.log = append(*p.log, fmt.Sprintf("%s=%v", p.name, l))
	}
	return nil
}

func testConfig(mutate ...func(*Config)) Config {
	cfg := DefaultConfig()
	cfg.PollInterval = time.Millisecond
	for _, fn := range mutate {
		fn(&cfg)
	}
	return cfg
}

func newTestHub(t *testing.T, mutate ...func(*Config)) (*Hub, *fakeHub) {
	f := newFakeHub()
	h, err := New(f, &fakePin{name: "wake"}, &fakePin{name: "reset"}, testConfig(mutate...))
	require.NoError(t, err)
	h.SetSleep(func(time.Duration) {})
	require.NoError(t, h.Init())
	f.clearWrites()
	return h, f
}
