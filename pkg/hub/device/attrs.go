package device

import (
	"fmt"
	"strings"

	"github.com/robotalks/sensorhub.go/pkg/hub/comm"
)

// Attribute names a value reachable with Attribute and SetAttribute.
type Attribute int

// Attributes.
const (
	AttrMode Attribute = iota
	AttrLED1
	AttrLED2
	AttrLED3
	AttrMotionTime
	AttrMotionThreshold
	AttrHeight
	AttrWeight
	AttrAge
	AttrGender
	AttrReportPeriod
	AttrMinIntegration
	AttrMaxIntegration
	AttrMinSamplingRate
	AttrMaxSamplingRate
)

var attrNames = []string{
	"mode", "led1", "led2", "led3", "motion-time", "motion-threshold",
	"height", "weight", "age", "gender", "report-period",
	"min-integration", "max-integration", "min-sampling-rate", "max-sampling-rate",
}

// String implements fmt.Stringer.
func (a Attribute) String() string {
	if a >= 0 && int(a) < len(attrNames) {
		return attrNames[a]
	}
	return fmt.Sprintf("attr(%d)", int(a))
}

// ParseAttribute parses an attribute name.
func ParseAttribute(s string) (Attribute, error) {
	for n, name := range attrNames {
		if strings.EqualFold(s, name) {
			return Attribute(n), nil
		}
	}
	return 0, fmt.Errorf("unknown attribute %q", s)
}

// Attributes lists all attributes.
func Attributes() []Attribute {
	attrs := make([]Attribute, len(attrNames))
	for n := range attrs {
		attrs[n] = Attribute(n)
	}
	return attrs
}

// Attribute reads an attribute. AttrMode reads Mode, so after a failed
// transition it reports the previous mode while acquisition is stopped.
func (h *Hub) Attribute(a Attribute) (int, error) {
	if a == AttrMode {
		return int(h.Mode()), nil
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	switch a {
	case AttrLED1, AttrLED2, AttrLED3:
		return int(h.leds[a-AttrLED1]), nil
	case AttrMotionTime:
		return int(h.motion.Time), nil
	case AttrMotionThreshold:
		return int(h.motion.Threshold), nil
	case AttrReportPeriod:
		return int(h.settings.ReportPeriod), nil
	case AttrMinIntegration:
		return int(h.settings.Timing.MinIntegration), nil
	case AttrMaxIntegration:
		return int(h.settings.Timing.MaxIntegration), nil
	case AttrMinSamplingRate:
		return int(h.settings.Timing.MinSamplingRate), nil
	case AttrMaxSamplingRate:
		return int(h.settings.Timing.MaxSamplingRate), nil
	}
	return 0, comm.ModeErrorf("attribute %s is not readable", a)
}

func checkRange(a Attribute, v, max int) error {
	if v < 0 || v > max {
		return comm.ModeErrorf("%s value %d out of range 0..%d", a, v, max)
	}
	return nil
}

// SetAttribute writes an attribute.
func (h *Hub) SetAttribute(a Attribute, v int) error {
	switch a {
	case AttrMode:
		if err := checkRange(a, v, int(ModeWakeOnMotion)); err != nil {
			return err
		}
		return h.SetMode(Mode(v))
	case AttrLED1, AttrLED2, AttrLED3:
		if err := checkRange(a, v, 0xff); err != nil {
			return err
		}
		return h.SetLEDCurrent(int(a-AttrLED1), uint8(v))
	case AttrMotionTime, AttrMotionThreshold:
		if err := checkRange(a, v, 0xff); err != nil {
			return err
		}
		m := h.MotionConfig()
		if a == AttrMotionTime {
			m.Time = uint8(v)
		} else {
			m.Threshold = uint8(v)
		}
		h.SetMotionConfig(m)
		return nil
	case AttrHeight, AttrWeight:
		if err := checkRange(a, v, 0xffff); err != nil {
			return err
		}
		idx := cfgHeight
		if a == AttrWeight {
			idx = cfgWeight
		}
		return h.sendProfile(cmdAlgoConfig16(idx, uint16(v)))
	case AttrAge, AttrGender:
		if err := checkRange(a, v, 0xff); err != nil {
			return err
		}
		idx := cfgAge
		if a == AttrGender {
			idx = cfgGender
		}
		return h.sendProfile(cmdAlgoConfig(idx, uint8(v)))
	}
	return comm.ModeErrorf("attribute %s is not writable", a)
}

// LEDCurrent returns the current of LED channel ch (0..2).
func (h *Hub) LEDCurrent(ch int) (uint8, error) {
	if ch < 0 || ch >= len(h.leds) {
		return 0, comm.ModeErrorf("invalid LED channel %d", ch)
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.leds[ch], nil
}

// SetLEDCurrent sets the current of LED channel ch (0..2). It is applied
// the next time raw or AGC mode is entered.
func (h *Hub) SetLEDCurrent(ch int, v uint8) error {
	if ch < 0 || ch >= len(h.leds) {
		return comm.ModeErrorf("invalid LED channel %d", ch)
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	h.leds[ch] = v
	return nil
}

// MotionConfig returns the wake-on-motion settings.
func (h *Hub) MotionConfig() MotionConfig {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.motion
}

// SetMotionConfig sets the wake-on-motion settings used on the next
// EnterWakeOnMotion.
func (h *Hub) SetMotionConfig(m MotionConfig) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.motion = m
}

func (h *Hub) sendProfile(cmd comm.Command) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.tr.Send(cmd)
}
