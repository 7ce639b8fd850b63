package device

import (
	"fmt"
	"strings"
	"time"

	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

// AFEVariant selects the optical front end attached to the hub.
type AFEVariant int

// Supported front ends.
const (
	AFEMAX86141 AFEVariant = iota
	AFEMAX86161
)

// AccelWhoAmI is the identity of the only supported accelerometer.
const AccelWhoAmI byte = 0x43

// WhoAmI returns the expected identity register value.
func (v AFEVariant) WhoAmI() byte {
	if v == AFEMAX86161 {
		return 0x36
	}
	return 0x25
}

// String implements fmt.Stringer.
func (v AFEVariant) String() string {
	if v == AFEMAX86161 {
		return "max86161"
	}
	return "max86141"
}

// ParseAFEVariant parses a front end name.
func ParseAFEVariant(s string) (AFEVariant, error) {
	switch strings.ToLower(s) {
	case "", "max86141":
		return AFEMAX86141, nil
	case "max86161":
		return AFEMAX86161, nil
	}
	return AFEMAX86141, fmt.Errorf("unknown AFE variant %q", s)
}

// TimingLimits bound the integration time and sampling rate the
// algorithm may select, as indices.
type TimingLimits struct {
	MinIntegration  uint8
	MaxIntegration  uint8
	MinSamplingRate uint8
	MaxSamplingRate uint8
}

// MotionConfig configures wake-on-motion detection.
type MotionConfig struct {
	Time      uint8
	Threshold uint8
}

// Config is fixed when the hub is created.
type Config struct {
	AFE           AFEVariant
	ReportFormat  records.ReportFormat
	ExternalAccel bool
	// StaticBuffer reuses one FIFO transfer buffer sized for MaxSamples.
	StaticBuffer bool
	MaxSamples   int

	RawQueueLen    int
	ReportQueueLen int
	ScdQueueLen    int
	PollInterval   time.Duration

	Timing             TimingLimits
	ReportPeriod       uint8
	HRTuning           uint16
	SpO2Tuning         uint16
	InterruptThreshold uint8
	SpO2Calibration    [3]int32

	LEDCurrents     [3]uint8
	Motion          MotionConfig
	TargetPDCurrent uint16
	// SampleRate is written to the AFE sample rate register in raw mode.
	SampleRate uint8
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		MaxSamples:         32,
		RawQueueLen:        32,
		ReportQueueLen:     16,
		ScdQueueLen:        16,
		PollInterval:       100 * time.Millisecond,
		Timing:             TimingLimits{MinIntegration: 0, MaxIntegration: 3, MinSamplingRate: 0, MaxSamplingRate: 4},
		ReportPeriod:       1,
		HRTuning:           0x0004,
		SpO2Tuning:         0x0004,
		InterruptThreshold: 1,
		SpO2Calibration:    [3]int32{159584, -3465966, 11268987},
		LEDCurrents:        [3]uint8{0x28, 0x28, 0x28},
		Motion:             MotionConfig{Time: 0x05, Threshold: 0x10},
		TargetPDCurrent:    200,
		SampleRate:         0x14,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxSamples < 1 || c.MaxSamples > 255 {
		return fmt.Errorf("max samples %d out of range 1..255", c.MaxSamples)
	}
	for _, q := range []struct {
		name string
		len  int
	}{{"raw", c.RawQueueLen}, {"report", c.ReportQueueLen}, {"scd", c.ScdQueueLen}} {
		if q.len < 1 {
			return fmt.Errorf("%s queue length must be positive", q.name)
		}
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Timing.MinIntegration > c.Timing.MaxIntegration {
		return fmt.Errorf("integration time index min %d > max %d", c.Timing.MinIntegration, c.Timing.MaxIntegration)
	}
	if c.Timing.MinSamplingRate > c.Timing.MaxSamplingRate {
		return fmt.Errorf("sampling rate index min %d > max %d", c.Timing.MinSamplingRate, c.Timing.MaxSamplingRate)
	}
	return nil
}
