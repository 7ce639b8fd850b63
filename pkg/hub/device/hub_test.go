package device

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sensorhub.go/pkg/hub/comm"
)

func TestInitIdentity(t *testing.T) {
	testCases := []struct {
		name    string
		variant AFEVariant
		afe     byte
		accel   byte
		ok      bool
	}{
		{"max86141", AFEMAX86141, 0x25, 0x43, true},
		{"max86161", AFEMAX86161, 0x36, 0x43, true},
		{"variant mismatch", AFEMAX86141, 0x36, 0x43, false},
		{"unknown afe", AFEMAX86161, 0x11, 0x43, false},
		{"unknown accel", AFEMAX86141, 0x25, 0x42, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeHub()
			f.afeID, f.accelID = tc.afe, tc.accel
			h, err := New(f, &fakePin{}, &fakePin{}, testConfig(func(c *Config) { c.AFE = tc.variant }))
			require.NoError(t, err)
			h.SetSleep(func(time.Duration) {})
			err = h.Init()
			if tc.ok {
				require.NoError(t, err)
				require.Equal(t, Identity{AFE: tc.afe, Accel: tc.accel}, h.Identity())
				return
			}
			require.True(t, comm.IsIdentityError(err))
			require.False(t, h.ready)
			require.True(t, comm.IsModeError(h.EnterRaw()))
		})
	}
}

func TestInitSequence(t *testing.T) {
	var log []string
	var slept time.Duration
	f := newFakeHub()
	h, err := New(f, &fakePin{name: "wake", log: &log}, &fakePin{name: "reset", log: &log}, testConfig())
	require.NoError(t, err)
	h.SetSleep(func(d time.Duration) { slept += d })
	require.NoError(t, h.Init())

	require.Equal(t, []string{"reset=Low", "wake=High", "reset=High"}, log[:3])
	require.True(t, slept >= appBootDelay+2*resetHold)
	require.Equal(t, Version{Major: 30, Minor: 1, Patch: 4}, h.Version())
	require.Equal(t, "30.1.4", h.Version().String())
	require.Equal(t, ModeIdle, h.Mode())
	require.True(t, h.Poller().Suspended())
}

func TestConfigReadBack(t *testing.T) {
	timing := TimingLimits{MinIntegration: 1, MaxIntegration: 2, MinSamplingRate: 3, MaxSamplingRate: 5}
	h, f := newTestHub(t, func(c *Config) {
		c.Timing = timing
		c.ReportPeriod = 4
	})
	require.Equal(t, Settings{ReportPeriod: 4, Timing: timing}, h.Settings())
	require.Equal(t, []byte{1}, f.algoCfg[cfgMinIntegration])
	require.Equal(t, []byte{5}, f.algoCfg[cfgMaxSamplingRate])

	v, err := h.Attribute(AttrMaxSamplingRate)
	require.NoError(t, err)
	require.Equal(t, 5, v)
	v, err = h.Attribute(AttrReportPeriod)
	require.NoError(t, err)
	require.Equal(t, 4, v)
}

func TestInitWriteOrder(t *testing.T) {
	f := newFakeHub()
	h, err := New(f, &fakePin{}, &fakePin{}, testConfig(func(c *Config) {
		c.SpO2Calibration = [3]int32{1, -1, 0x01020304}
		c.HRTuning = 0x0102
	}))
	require.NoError(t, err)
	h.SetSleep(func(time.Duration) {})
	require.NoError(t, h.Init())
	require.Equal(t, []string{
		"ff 03",
		"41 00 ff",
		"41 04 0f",
		"50 07 13 00",
		"50 07 14 03",
		"50 07 15 00",
		"50 07 16 04",
		"10 02 01",
		"50 07 17 01 02",
		"50 07 18 00 04",
		"10 01 01",
		"50 07 00 00 00 00 01 ff ff ff ff 01 02 03 04",
		"11 02",
		"51 07 13",
		"51 07 14",
		"51 07 15",
		"51 07 16",
	}, f.written())
}

func TestInitFailures(t *testing.T) {
	testCases := []struct {
		name   string
		fail   string
		status string
		check  func(error) bool
	}{
		{"config write bus failure", "50 07 17", "", comm.IsBusError},
		{"config write rejected", "", "10 02", comm.IsProtocolError},
		{"read back rejected", "", "51 07 15", comm.IsProtocolError},
		{"version unreadable", "ff 03", "", comm.IsBusError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeHub()
			if tc.fail != "" {
				f.fail[tc.fail] = errors.New("nack")
			}
			if tc.status != "" {
				f.status[tc.status] = 0x01
			}
			h, err := New(f, &fakePin{}, &fakePin{}, testConfig())
			require.NoError(t, err)
			h.SetSleep(func(time.Duration) {})
			err = h.Init()
			require.Error(t, err)
			require.True(t, tc.check(err))
			require.True(t, comm.IsModeError(h.EnterRaw()))
		})
	}
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(newFakeHub(), &fakePin{}, &fakePin{}, testConfig(func(c *Config) {
		c.Timing.MinIntegration = 4
	}))
	require.Error(t, err)
	_, err = New(newFakeHub(), &fakePin{}, &fakePin{}, testConfig(func(c *Config) {
		c.MaxSamples = 0
	}))
	require.Error(t, err)
}

func TestInfo(t *testing.T) {
	h, _ := newTestHub(t)
	info := h.Info("hub1")
	require.Equal(t, "hub1", info.HubId)
	require.Equal(t, "30.1.4", info.Firmware)
	require.Equal(t, uint32(0x25), info.Afe)
	require.Equal(t, uint32(0x43), info.Accel)
	require.Equal(t, "idle", info.Mode)
	require.Equal(t, "normal", info.ReportFormat)
}

func TestReInitStopsAcquisition(t *testing.T) {
	h, f := newTestHub(t)
	require.NoError(t, h.EnterRaw())
	require.False(t, h.Poller().Suspended())
	f.fail["52 07 00"] = errors.New("nack")
	require.Error(t, h.DisableSensors())
	require.Equal(t, ModeRaw, h.Mode())

	delete(f.fail, "52 07 00")
	require.NoError(t, h.Init())
	require.Equal(t, ModeIdle, h.Mode())
	require.True(t, h.Poller().Suspended())
	require.Empty(t, h.LiveQueues())
	_, ok := h.FetchRaw()
	require.False(t, ok)
}

func TestSuspend(t *testing.T) {
	h, f := newTestHub(t)
	require.NoError(t, h.EnterRaw())
	f.clearWrites()

	p := h.Suspend()
	require.True(t, p.Held())
	require.Empty(t, f.written())
	require.Equal(t, ModeIdle, h.Mode())
	require.True(t, h.Poller().Suspended())
	require.Empty(t, h.LiveQueues())
	require.True(t, comm.IsModeError(h.EnterRaw()))

	require.NoError(t, h.Init())
	require.NoError(t, h.EnterRaw())
	require.Equal(t, ModeRaw, h.Mode())
}

func TestInitFailureLeavesHubSuspended(t *testing.T) {
	h, f := newTestHub(t)
	require.NoError(t, h.EnterRaw())
	f.afeID = 0x11
	require.True(t, comm.IsIdentityError(h.Init()))
	require.Equal(t, ModeIdle, h.Mode())
	require.True(t, h.Poller().Suspended())
	require.Empty(t, h.LiveQueues())
}
