package env

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sensorhub.go/pkg/hub/device"
	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

func testConfig() *Config {
	conf := NewConfig()
	conf.HubID = "hub1"
	return conf
}

func TestDefaultsMatchDevice(t *testing.T) {
	conf := testConfig()
	require.NoError(t, conf.Validate())
	dc, err := conf.DeviceConfig()
	require.NoError(t, err)
	require.Equal(t, device.DefaultConfig(), dc)
	mode, err := conf.InitialMode()
	require.NoError(t, err)
	require.Equal(t, device.ModeIdle, mode)
	require.Equal(t, uint16(0x55), conf.PeriphConfig().Addr)
}

func TestByteFlag(t *testing.T) {
	var b Byte
	require.NoError(t, b.Set("0x28"))
	require.Equal(t, Byte(0x28), b)
	require.Equal(t, "40", b.String())
	require.Error(t, b.Set("256"))
	require.Error(t, b.Set("-1"))
}

func TestCoefficientsFlag(t *testing.T) {
	var c Coefficients
	require.NoError(t, c.Set("1, -2,3"))
	require.Equal(t, Coefficients{1, -2, 3}, c)
	require.Equal(t, "1,-2,3", c.String())
	require.Error(t, c.Set("1,2"))
	require.Error(t, c.Set("1,2,x"))
}

func TestOverlay(t *testing.T) {
	conf := testConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	conf.bindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-mode", "raw", "-led2", "7"}))

	data := []byte(`
mode: aec
afe: max86161
report-format: extended
poll-interval: 40ms
led-currents: [1, 2, 3]
spo2-calibration: [4, 5, 6]
motion-threshold: 32
mqtt: mqtt://broker/hubs/
`)
	require.NoError(t, conf.Overlay(data, fs))
	require.Equal(t, "raw", conf.Mode)
	require.Equal(t, [3]Byte{1, 7, 3}, conf.LEDCurrents)
	require.Equal(t, "mqtt://broker/hubs/", conf.MQTTBrokerURL)

	dc, err := conf.DeviceConfig()
	require.NoError(t, err)
	require.Equal(t, device.AFEMAX86161, dc.AFE)
	require.Equal(t, records.ReportExtended, dc.ReportFormat)
	require.Equal(t, 40*time.Millisecond, dc.PollInterval)
	require.Equal(t, [3]int32{4, 5, 6}, dc.SpO2Calibration)
	require.Equal(t, uint8(32), dc.Motion.Threshold)
	require.Equal(t, [3]uint8{1, 7, 3}, dc.LEDCurrents)
}

func TestOverlayRejectsOverflow(t *testing.T) {
	conf := testConfig()
	require.Error(t, conf.Overlay([]byte("led-currents: [300, 1, 1]"), nil))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
	}{
		{"hub-id", func(c *Config) { c.HubID = "" }},
		{"addr", func(c *Config) { c.Addr = 0x80 }},
		{"hr-tuning", func(c *Config) { c.HRTuning = 0x10000 }},
		{"target-pd", func(c *Config) { c.TargetPDCurrent = 0x10000 }},
		{"sample-interval", func(c *Config) { c.SampleInterval = 0 }},
		{"mode", func(c *Config) { c.Mode = "turbo" }},
		{"afe", func(c *Config) { c.AFE = "max30101" }},
		{"report-format", func(c *Config) { c.ReportFormat = "long" }},
		{"max-samples", func(c *Config) { c.MaxSamples = 256 }},
		{"queue", func(c *Config) { c.ScdQueue = 0 }},
		{"poll-interval", func(c *Config) { c.PollInterval = 0 }},
		{"timing", func(c *Config) { c.MinIntegration, c.MaxIntegration = 3, 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conf := testConfig()
			tc.modify(conf)
			require.Error(t, conf.Validate())
		})
	}
}

func TestMachineID(t *testing.T) {
	require.NotEmpty(t, MachineID())
}
