package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

// FIFOCountError reports a FIFO holding more samples than the transfer
// buffer can take. The FIFO is left undrained.
type FIFOCountError struct {
	Count int
	Max   int
}

// Error implements error.
func (e *FIFOCountError) Error() string {
	return fmt.Sprintf("fifo count %d exceeds %d", e.Count, e.Max)
}

// CycleResult summarizes one poll cycle.
type CycleResult struct {
	// Samples is the FIFO count reported by the hub.
	Samples int
	// Drained is set when the FIFO was read.
	Drained bool
	// Purged counts records dropped by queue overflow.
	Purged int
	Err    error
}

// Poller drains the hub FIFO into the live queues.
// It starts suspended and only runs cycles between Resume and Pause.
type Poller struct {
	hub      *Hub
	interval time.Duration
	buf      []byte
	gate     gate
	// after times the wait between cycles; it must stay selectable
	// against ctx, so it is a channel rather than Transport.Sleep.
	after func(time.Duration) <-chan time.Time
}

func newPoller(h *Hub) *Poller {
	p := &Poller{hub: h, interval: h.cfg.PollInterval, after: time.After}
	p.gate.init()
	if h.cfg.StaticBuffer {
		p.buf = make([]byte, 1+h.cfg.MaxSamples*maxSampleSize(h.cfg.ReportFormat))
	}
	return p
}

func maxSampleSize(f records.ReportFormat) int {
	return records.RawSize + f.Size()
}

func sampleSize(m Mode) int {
	switch {
	case m == ModeSCD:
		return records.RawSize + records.ScdSize
	case m.Extended():
		return records.RawSize + records.AlgoExtendedSize
	case m.Algo():
		return records.RawSize + records.AlgoSize
	}
	return records.RawSize
}

// SetTimer replaces the clock timing the wait between cycles.
// Call it before Run.
func (p *Poller) SetTimer(after func(time.Duration) <-chan time.Time) {
	p.after = after
}

// Pause suspends the poller and waits for a running cycle to finish.
func (p *Poller) Pause() *Paused {
	return p.gate.pause()
}

// Suspended determines if the poller is paused.
func (p *Poller) Suspended() bool {
	p.gate.lock.Lock()
	defer p.gate.lock.Unlock()
	return p.gate.paused
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, p.gate.broadcast)
	defer stop()
	for {
		if !p.gate.enter(ctx) {
			return ctx.Err()
		}
		res := p.PollOnce()
		p.gate.leave()
		if res.Err != nil {
			glog.Warningf("hub poll: %v", res.Err)
		} else if res.Purged > 0 {
			glog.Warningf("hub poll: queue overflow, %d records dropped", res.Purged)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.after(p.interval):
		}
	}
}

// PollOnce runs a single cycle. Failures are reported in the result and
// never stop polling.
func (p *Poller) PollOnce() (res CycleResult) {
	h := p.hub
	status, err := h.tr.ReadValue(cmdStatus)
	if err != nil {
		res.Err = fmt.Errorf("read status: %w", err)
		return
	}
	if status&statusDataReady == 0 {
		return
	}
	count, err := h.tr.ReadValue(cmdFIFOCount)
	if err != nil {
		res.Err = fmt.Errorf("read fifo count: %w", err)
		return
	}
	res.Samples = int(count)
	if count == 0 {
		return
	}
	if res.Samples > h.cfg.MaxSamples {
		res.Err = &FIFOCountError{Count: res.Samples, Max: h.cfg.MaxSamples}
		return
	}

	mode := h.Mode()
	size := sampleSize(mode)
	n := 1 + res.Samples*size
	var rx []byte
	if p.buf != nil {
		rx = p.buf[:n]
	} else {
		rx = make([]byte, n)
	}
	if err = h.tr.Transact(cmdFIFORead, rx); err != nil {
		res.Err = fmt.Errorf("read fifo: %w", err)
		return
	}
	res.Drained = true
	res.Purged, res.Err = p.deliver(mode, rx[1:1+size])
	if glog.V(4) {
		glog.Infof("hub poll: %d samples in %s", res.Samples, mode)
	}
	return
}

// deliver decodes the first sample and pushes its records.
func (p *Poller) deliver(mode Mode, b []byte) (purged int, err error) {
	qs := p.hub.liveQueues()
	if qs == nil {
		return
	}
	raw, err := records.DecodeRaw(b)
	if err != nil {
		return
	}
	if qs.raw != nil {
		purged += qs.raw.Put(raw)
	}
	follow := b[records.RawSize:]
	switch {
	case mode == ModeSCD:
		var scd records.Scd
		if scd, err = records.DecodeScd(follow); err == nil && qs.scd != nil {
			purged += qs.scd.Put(scd)
		}
	case mode.Extended():
		var ext records.AlgoExtended
		if ext, err = records.DecodeAlgoExtended(follow); err == nil && qs.ext != nil {
			purged += qs.ext.Put(ext)
		}
	case mode.Algo():
		var algo records.Algo
		if algo, err = records.DecodeAlgo(follow); err == nil && qs.report != nil {
			purged += qs.report.Put(algo)
		}
	}
	return
}

// Paused proves the poller is suspended between cycles. It is
// invalidated by Resume.
type Paused struct {
	g   *gate
	gen uint64
}

// Held determines if the poller is still suspended under this token.
func (p *Paused) Held() bool {
	if p == nil {
		return false
	}
	p.g.lock.Lock()
	defer p.g.lock.Unlock()
	return p.g.paused && p.g.gen == p.gen
}

// Resume lets the poller run again. Stale tokens do nothing.
func (p *Paused) Resume() {
	p.g.lock.Lock()
	defer p.g.lock.Unlock()
	if p.g.paused && p.g.gen == p.gen {
		p.g.paused = false
		p.g.gen++
		p.g.cond.Broadcast()
	}
}

type gate struct {
	lock   sync.Mutex
	cond   *sync.Cond
	paused bool
	busy   bool
	gen    uint64
}

func (g *gate) init() {
	g.cond = sync.NewCond(&g.lock)
	g.paused = true
}

func (g *gate) broadcast() {
	g.lock.Lock()
	g.cond.Broadcast()
	g.lock.Unlock()
}

func (g *gate) enter(ctx context.Context) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	for g.paused && ctx.Err() == nil {
		g.cond.Wait()
	}
	if ctx.Err() != nil {
		return false
	}
	g.busy = true
	return true
}

func (g *gate) leave() {
	g.lock.Lock()
	g.busy = false
	g.cond.Broadcast()
	g.lock.Unlock()
}

func (g *gate) pause() *Paused {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.paused = true
	for g.busy {
		g.cond.Wait()
	}
	return &Paused{g: g, gen: g.gen}
}
