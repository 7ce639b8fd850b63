package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

func TestPollRawDecodesFirstSample(t *testing.T) {
	for _, static := range []bool{false, true} {
		t.Run(map[bool]string{false: "dynamic", true: "static"}[static], func(t *testing.T) {
			h, f := newTestHub(t, func(c *Config) { c.StaticBuffer = static })
			require.NoError(t, h.EnterRaw())
			f.push(rawSample(10), rawSample(20), rawSample(30))

			res := h.Poller().PollOnce()
			require.NoError(t, res.Err)
			require.True(t, res.Drained)
			require.Equal(t, 3, res.Samples)

			r, ok := h.FetchRaw()
			require.True(t, ok)
			require.Equal(t, uint32(10), r.PPG[0])
			require.Equal(t, uint32(15), r.PPG[5])
			require.Equal(t, [3]int16{1, -2, 3}, r.Accel)
			_, ok = h.FetchRaw()
			require.False(t, ok)
			require.Empty(t, f.fifo)
		})
	}
}

func TestPollAlgoReport(t *testing.T) {
	h, f := newTestHub(t)
	require.NoError(t, h.EnterAlgo(AEC, false))
	f.push(algoSample(1, 725), algoSample(2, 800))
	require.True(t, h.Poller().PollOnce().Drained)

	r, ok := h.FetchRaw()
	require.True(t, ok)
	require.Equal(t, uint32(1), r.PPG[0])
	rep, ok := h.FetchReport()
	require.True(t, ok)
	require.InDelta(t, 72.5, rep.HeartRateBPM(), 0.001)
	require.Equal(t, records.SCDOnSkin, rep.SCD)
	_, ok = h.FetchExtendedReport()
	require.False(t, ok)

	rec, ok := h.Fetch(records.KindReport)
	require.False(t, ok)
	require.Nil(t, rec)
}

func TestPollExtendedReport(t *testing.T) {
	h, f := newTestHub(t, func(c *Config) {
		c.ReportFormat = records.ReportExtended
		c.StaticBuffer = true
		c.MaxSamples = 2
	})
	require.NoError(t, h.EnterAlgo(AGC, true))
	ext := records.AlgoExtended{Counters: records.Counters{WalkSteps: 1234}}
	b := make([]byte, records.AlgoExtendedSize)
	ext.Encode(b)
	sample := append(rawSample(3), b...)
	f.push(sample, sample)
	require.True(t, h.Poller().PollOnce().Drained)

	rec, ok := h.Fetch(records.KindExtendedReport)
	require.True(t, ok)
	require.Equal(t, uint32(1234), rec.(records.AlgoExtended).Counters.WalkSteps)
}

func TestPollSCD(t *testing.T) {
	h, f := newTestHub(t)
	require.NoError(t, h.EnterSCD())
	f.push(append(rawSample(0), byte(records.SCDOffSkin)))
	require.True(t, h.Poller().PollOnce().Drained)
	s, ok := h.FetchScd()
	require.True(t, ok)
	require.Equal(t, records.SCDOffSkin, s.State)
	_, ok = h.FetchRaw()
	require.False(t, ok)
}

func TestPollFIFOCountTooLarge(t *testing.T) {
	h, f := newTestHub(t, func(c *Config) {
		c.MaxSamples = 2
		c.StaticBuffer = true
	})
	require.NoError(t, h.EnterRaw())
	buf := append([]byte(nil), h.Poller().buf...)
	f.push(rawSample(1), rawSample(2), rawSample(3))
	f.clearWrites()

	res := h.Poller().PollOnce()
	require.IsType(t, &FIFOCountError{}, res.Err)
	require.False(t, res.Drained)
	require.Equal(t, []string{"00 00", "12 00"}, f.written())
	require.Equal(t, buf, h.Poller().buf)
	require.Len(t, f.fifo, 3)
	_, ok := h.FetchRaw()
	require.False(t, ok)

	// the poller keeps working once the FIFO fits again.
	f.fifo = f.fifo[:1]
	require.True(t, h.Poller().PollOnce().Drained)
	_, ok = h.FetchRaw()
	require.True(t, ok)
}

func TestPollStatusFailureIsNotFatal(t *testing.T) {
	h, f := newTestHub(t)
	require.NoError(t, h.EnterRaw())
	f.push(rawSample(5))
	f.fail["00 00"] = errors.New("nack")
	res := h.Poller().PollOnce()
	require.Error(t, res.Err)
	require.False(t, res.Drained)

	delete(f.fail, "00 00")
	res = h.Poller().PollOnce()
	require.NoError(t, res.Err)
	require.True(t, res.Drained)
}

func TestPollNoData(t *testing.T) {
	h, f := newTestHub(t)
	require.NoError(t, h.EnterRaw())
	f.clearWrites()
	res := h.Poller().PollOnce()
	require.NoError(t, res.Err)
	require.Equal(t, []string{"00 00"}, f.written())

	f.push()
	f.clearWrites()
	res = h.Poller().PollOnce()
	require.NoError(t, res.Err)
	require.False(t, res.Drained)
	require.Equal(t, []string{"00 00", "12 00"}, f.written())
}

func TestPollOverflowPurgesQueue(t *testing.T) {
	h, f := newTestHub(t, func(c *Config) { c.RawQueueLen = 2 })
	require.NoError(t, h.EnterRaw())
	for n := uint32(1); n <= 2; n++ {
		f.push(rawSample(n))
		require.Zero(t, h.Poller().PollOnce().Purged)
	}
	f.push(rawSample(3))
	require.Equal(t, 2, h.Poller().PollOnce().Purged)
	r, ok := h.FetchRaw()
	require.True(t, ok)
	require.Equal(t, uint32(3), r.PPG[0])
	_, ok = h.FetchRaw()
	require.False(t, ok)
}

func TestPollerRunPauseResume(t *testing.T) {
	h, f := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	f.push(rawSample(9))
	require.NoError(t, h.EnterRaw())
	require.Eventually(t, func() bool {
		_, ok := h.FetchRaw()
		return ok
	}, time.Second, time.Millisecond)

	require.NoError(t, h.DisableSensors())
	require.True(t, h.Poller().Suspended())
	f.clearWrites()
	f.push(rawSample(10))
	time.Sleep(10 * time.Millisecond)
	require.Empty(t, f.written())

	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestPollerStopsWhileSuspended(t *testing.T) {
	h, _ := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestPollerWaitsOnTimer(t *testing.T) {
	h, f := newTestHub(t, func(c *Config) { c.PollInterval = 42 * time.Millisecond })
	waits := make(chan time.Duration, 16)
	h.Poller().SetTimer(func(d time.Duration) <-chan time.Time {
		select {
		case waits <- d:
		default:
		}
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	})
	f.push(rawSample(1))
	require.NoError(t, h.EnterRaw())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	select {
	case d := <-waits:
		require.Equal(t, 42*time.Millisecond, d)
	case <-time.After(time.Second):
		t.Fatal("poller did not wait on the timer")
	}
	require.NoError(t, h.DisableSensors())
	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
