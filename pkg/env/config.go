// Package env provides the configuration shared by the hub binaries.
package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/sensorhub.go/pkg/hub/comm/periph"
	"github.com/robotalks/sensorhub.go/pkg/hub/device"
	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

// Byte is an 8-bit flag value.
type Byte uint8

// String implements flag.Value.
func (b *Byte) String() string {
	return strconv.Itoa(int(*b))
}

// Set implements flag.Value.
func (b *Byte) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return err
	}
	*b = Byte(v)
	return nil
}

// Coefficients are the SpO2 calibration coefficients, as "a,b,c" on the
// command line.
type Coefficients [3]int32

// String implements flag.Value.
func (c *Coefficients) String() string {
	return fmt.Sprintf("%d,%d,%d", c[0], c[1], c[2])
}

// Set implements flag.Value.
func (c *Coefficients) Set(s string) error {
	items := strings.Split(s, ",")
	if len(items) != len(c) {
		return fmt.Errorf("expect %d coefficients, got %d", len(c), len(items))
	}
	var v Coefficients
	for n, item := range items {
		i, err := strconv.ParseInt(strings.TrimSpace(item), 0, 32)
		if err != nil {
			return err
		}
		v[n] = int32(i)
	}
	*c = v
	return nil
}

// Config defines the hub configuration.
type Config struct {
	HubID string `yaml:"hub-id"`
	// ConfigFile is the optional YAML file overlaying defaults.
	ConfigFile string `yaml:"-"`

	Bus   string `yaml:"bus"`
	Addr  uint   `yaml:"addr"`
	Wake  string `yaml:"wake"`
	Reset string `yaml:"reset"`

	AFE           string        `yaml:"afe"`
	ReportFormat  string        `yaml:"report-format"`
	ExternalAccel bool          `yaml:"external-accel"`
	StaticBuffer  bool          `yaml:"static-buffer"`
	MaxSamples    int           `yaml:"max-samples"`
	RawQueue      int           `yaml:"raw-queue"`
	ReportQueue   int           `yaml:"report-queue"`
	ScdQueue      int           `yaml:"scd-queue"`
	PollInterval  time.Duration `yaml:"poll-interval"`

	MinIntegration     Byte         `yaml:"min-integration"`
	MaxIntegration     Byte         `yaml:"max-integration"`
	MinSamplingRate    Byte         `yaml:"min-sampling-rate"`
	MaxSamplingRate    Byte         `yaml:"max-sampling-rate"`
	ReportPeriod       Byte         `yaml:"report-period"`
	HRTuning           uint         `yaml:"hr-tuning"`
	SpO2Tuning         uint         `yaml:"spo2-tuning"`
	InterruptThreshold Byte         `yaml:"interrupt-threshold"`
	SpO2Calibration    Coefficients `yaml:"spo2-calibration"`
	LEDCurrents        [3]Byte      `yaml:"led-currents"`
	MotionTime         Byte         `yaml:"motion-time"`
	MotionThreshold    Byte         `yaml:"motion-threshold"`
	TargetPDCurrent    uint         `yaml:"target-pd-current"`
	SampleRate         Byte         `yaml:"sample-rate"`

	Mode           string        `yaml:"mode"`
	MQTTBrokerURL  string        `yaml:"mqtt"`
	WebsocketAddr  string        `yaml:"websocket"`
	SampleInterval time.Duration `yaml:"sample-interval"`
}

var defaultConfig = fromDevice(device.DefaultConfig())

func fromDevice(dc device.Config) Config {
	return Config{
		Bus:                "",
		Addr:               uint(periph.DefaultAddr),
		Wake:               "GPIO17",
		Reset:              "GPIO4",
		AFE:                dc.AFE.String(),
		ReportFormat:       dc.ReportFormat.String(),
		ExternalAccel:      dc.ExternalAccel,
		StaticBuffer:       dc.StaticBuffer,
		MaxSamples:         dc.MaxSamples,
		RawQueue:           dc.RawQueueLen,
		ReportQueue:        dc.ReportQueueLen,
		ScdQueue:           dc.ScdQueueLen,
		PollInterval:       dc.PollInterval,
		MinIntegration:     Byte(dc.Timing.MinIntegration),
		MaxIntegration:     Byte(dc.Timing.MaxIntegration),
		MinSamplingRate:    Byte(dc.Timing.MinSamplingRate),
		MaxSamplingRate:    Byte(dc.Timing.MaxSamplingRate),
		ReportPeriod:       Byte(dc.ReportPeriod),
		HRTuning:           uint(dc.HRTuning),
		SpO2Tuning:         uint(dc.SpO2Tuning),
		InterruptThreshold: Byte(dc.InterruptThreshold),
		SpO2Calibration:    Coefficients(dc.SpO2Calibration),
		LEDCurrents:        [3]Byte{Byte(dc.LEDCurrents[0]), Byte(dc.LEDCurrents[1]), Byte(dc.LEDCurrents[2])},
		MotionTime:         Byte(dc.Motion.Time),
		MotionThreshold:    Byte(dc.Motion.Threshold),
		TargetPDCurrent:    uint(dc.TargetPDCurrent),
		SampleRate:         Byte(dc.SampleRate),
		Mode:               device.ModeIdle.String(),
		MQTTBrokerURL:      "",
		WebsocketAddr:      "",
		SampleInterval:     100 * time.Millisecond,
	}
}

func init() {
	for name, val := range map[string]*string{
		"SENSORHUB_ID":       &defaultConfig.HubID,
		"SENSORHUB_CONFIG":   &defaultConfig.ConfigFile,
		"SENSORHUB_I2C_BUS":  &defaultConfig.Bus,
		"SENSORHUB_AFE":      &defaultConfig.AFE,
		"SENSORHUB_MODE":     &defaultConfig.Mode,
		"SENSORHUB_MQTT_URL": &defaultConfig.MQTTBrokerURL,
		"SENSORHUB_WS_ADDR":  &defaultConfig.WebsocketAddr,
	} {
		if v := os.Getenv(name); v != "" {
			*val = v
		}
	}
	if defaultConfig.HubID == "" {
		defaultConfig.HubID = MachineID()
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	defaultConfig.bindFlags(flag.CommandLine)
}

func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.HubID, "id", c.HubID, "Hub instance ID")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML configuration file")
	fs.StringVar(&c.Bus, "bus", c.Bus, "I2C bus name, empty for the first one")
	fs.UintVar(&c.Addr, "addr", c.Addr, "I2C address of the hub")
	fs.StringVar(&c.Wake, "wake", c.Wake, "GPIO name of the wake (MFIO) line")
	fs.StringVar(&c.Reset, "reset", c.Reset, "GPIO name of the reset line")
	fs.StringVar(&c.AFE, "afe", c.AFE, "AFE variant: max86141, max86161")
	fs.StringVar(&c.ReportFormat, "report", c.ReportFormat, "Algorithm report format: normal, extended")
	fs.BoolVar(&c.ExternalAccel, "ext-accel", c.ExternalAccel, "Accelerometer data is supplied by the host")
	fs.BoolVar(&c.StaticBuffer, "static-buffer", c.StaticBuffer, "Reuse one FIFO transfer buffer")
	fs.IntVar(&c.MaxSamples, "max-samples", c.MaxSamples, "Max FIFO samples read per poll")
	fs.IntVar(&c.RawQueue, "raw-queue", c.RawQueue, "Raw record queue capacity")
	fs.IntVar(&c.ReportQueue, "report-queue", c.ReportQueue, "Report record queue capacity")
	fs.IntVar(&c.ScdQueue, "scd-queue", c.ScdQueue, "SCD record queue capacity")
	fs.DurationVar(&c.PollInterval, "poll-interval", c.PollInterval, "Hub FIFO poll interval")
	fs.Var(&c.MinIntegration, "min-integration", "Min integration time index")
	fs.Var(&c.MaxIntegration, "max-integration", "Max integration time index")
	fs.Var(&c.MinSamplingRate, "min-sampling-rate", "Min sampling rate index")
	fs.Var(&c.MaxSamplingRate, "max-sampling-rate", "Max sampling rate index")
	fs.Var(&c.ReportPeriod, "report-period", "Algorithm report period")
	fs.UintVar(&c.HRTuning, "hr-tuning", c.HRTuning, "Heart rate tuning word")
	fs.UintVar(&c.SpO2Tuning, "spo2-tuning", c.SpO2Tuning, "SpO2 tuning word")
	fs.Var(&c.InterruptThreshold, "threshold", "FIFO interrupt threshold")
	fs.Var(&c.SpO2Calibration, "spo2-calibration", "SpO2 calibration coefficients a,b,c")
	for n := range c.LEDCurrents {
		fs.Var(&c.LEDCurrents[n], "led"+strconv.Itoa(n+1), "LED"+strconv.Itoa(n+1)+" current")
	}
	fs.Var(&c.MotionTime, "motion-time", "Wake on motion detection time")
	fs.Var(&c.MotionThreshold, "motion-threshold", "Wake on motion threshold")
	fs.UintVar(&c.TargetPDCurrent, "target-pd", c.TargetPDCurrent, "Target photodiode current")
	fs.Var(&c.SampleRate, "sample-rate", "AFE sample rate register value in raw mode")
	fs.StringVar(&c.Mode, "mode", c.Mode, "Initial mode: "+strings.Join(modeNames(), ", "))
	fs.StringVar(&c.MQTTBrokerURL, "mqtt", c.MQTTBrokerURL, "MQTT broker URL, e.g. mqtt://host:1883/sensorhub/")
	fs.StringVar(&c.WebsocketAddr, "websocket", c.WebsocketAddr, "Websocket listen address, e.g. :8080")
	fs.DurationVar(&c.SampleInterval, "sample-interval", c.SampleInterval, "Record sampling interval")
}

func modeNames() []string {
	names := make([]string, 0, device.ModeWakeOnMotion+1)
	for m := device.ModeIdle; m <= device.ModeWakeOnMotion; m++ {
		names = append(names, m.String())
	}
	return names
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load returns the effective configuration: defaults, the YAML file named
// by -config, then flags explicitly set on the command line.
func Load() (*Config, error) {
	conf := NewConfig()
	if conf.ConfigFile != "" {
		data, err := os.ReadFile(conf.ConfigFile)
		if err != nil {
			return nil, err
		}
		if err := conf.Overlay(data, flag.CommandLine); err != nil {
			return nil, fmt.Errorf("config %s: %w", conf.ConfigFile, err)
		}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Overlay applies YAML data over c, then re-applies flags set in fs so the
// command line wins over the file.
func (c *Config) Overlay(data []byte, fs *flag.FlagSet) error {
	set := make(map[string]string)
	if fs != nil {
		fs.Visit(func(f *flag.Flag) {
			set[f.Name] = f.Value.String()
		})
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	rebind := flag.NewFlagSet("overlay", flag.ContinueOnError)
	c.bindFlags(rebind)
	for name, val := range set {
		if rebind.Lookup(name) == nil {
			continue
		}
		if err := rebind.Set(name, val); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.HubID == "" {
		return fmt.Errorf("hub id must be specified")
	}
	if c.Addr > 0x7f {
		return fmt.Errorf("invalid I2C address %#x", c.Addr)
	}
	for _, v := range []struct {
		name string
		val  uint
	}{{"hr-tuning", c.HRTuning}, {"spo2-tuning", c.SpO2Tuning}, {"target-pd", c.TargetPDCurrent}} {
		if v.val > 0xffff {
			return fmt.Errorf("%s %d exceeds 16 bits", v.name, v.val)
		}
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample interval must be positive")
	}
	if _, err := c.InitialMode(); err != nil {
		return err
	}
	_, err := c.DeviceConfig()
	return err
}

// InitialMode parses the configured mode.
func (c *Config) InitialMode() (device.Mode, error) {
	return device.ParseMode(c.Mode)
}

// DeviceConfig builds the hub driver configuration.
func (c *Config) DeviceConfig() (device.Config, error) {
	afe, err := device.ParseAFEVariant(c.AFE)
	if err != nil {
		return device.Config{}, err
	}
	format, err := records.ParseReportFormat(c.ReportFormat)
	if err != nil {
		return device.Config{}, err
	}
	dc := device.Config{
		AFE:           afe,
		ReportFormat:  format,
		ExternalAccel: c.ExternalAccel,
		StaticBuffer:  c.StaticBuffer,
		MaxSamples:    c.MaxSamples,

		RawQueueLen:    c.RawQueue,
		ReportQueueLen: c.ReportQueue,
		ScdQueueLen:    c.ScdQueue,
		PollInterval:   c.PollInterval,

		Timing: device.TimingLimits{
			MinIntegration:  uint8(c.MinIntegration),
			MaxIntegration:  uint8(c.MaxIntegration),
			MinSamplingRate: uint8(c.MinSamplingRate),
			MaxSamplingRate: uint8(c.MaxSamplingRate),
		},
		ReportPeriod:       uint8(c.ReportPeriod),
		HRTuning:           uint16(c.HRTuning),
		SpO2Tuning:         uint16(c.SpO2Tuning),
		InterruptThreshold: uint8(c.InterruptThreshold),
		SpO2Calibration:    [3]int32(c.SpO2Calibration),
		Motion:             device.MotionConfig{Time: uint8(c.MotionTime), Threshold: uint8(c.MotionThreshold)},
		TargetPDCurrent:    uint16(c.TargetPDCurrent),
		SampleRate:         uint8(c.SampleRate),
	}
	for n, v := range c.LEDCurrents {
		dc.LEDCurrents[n] = uint8(v)
	}
	if err := dc.Validate(); err != nil {
		return device.Config{}, err
	}
	return dc, nil
}

// PeriphConfig builds the hardware configuration.
func (c *Config) PeriphConfig() periph.Config {
	return periph.Config{Bus: c.Bus, Addr: uint16(c.Addr), Wake: c.Wake, Reset: c.Reset}
}
