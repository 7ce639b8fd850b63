package device

import (
	"fmt"
	"strings"
)

// Mode is the acquisition mode of the hub.
type Mode int32

// Modes.
const (
	ModeIdle Mode = iota
	ModeRaw
	ModeAlgoAEC
	ModeAlgoAECExtended
	ModeAlgoAGC
	ModeAlgoAGCExtended
	ModeSCD
	ModeWakeOnMotion
)

var modeNames = []string{"idle", "raw", "aec", "aec-ext", "agc", "agc-ext", "scd", "wom"}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int32(m))
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	for n, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(n), nil
		}
	}
	return ModeIdle, fmt.Errorf("unknown mode %q", s)
}

// Algo determines if the mode runs the HR/SpO2 algorithm.
func (m Mode) Algo() bool {
	return m >= ModeAlgoAEC && m <= ModeAlgoAGCExtended
}

// Extended determines if the mode produces extended reports.
func (m Mode) Extended() bool {
	return m == ModeAlgoAECExtended || m == ModeAlgoAGCExtended
}

// Algorithm selects the exposure control variant of the algorithm.
type Algorithm int

// Algorithm variants.
const (
	AEC Algorithm = iota
	AGC
)

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	if a == AGC {
		return "agc"
	}
	return "aec"
}

func algoMode(a Algorithm, extended bool) Mode {
	m := ModeAlgoAEC
	if a == AGC {
		m = ModeAlgoAGC
	}
	if extended {
		m++
	}
	return m
}
