package records

import "fmt"

// ScdSize is the wire size of a Scd record.
const ScdSize = 1

// SCDState is the skin contact classification.
type SCDState uint8

// Skin contact states.
const (
	SCDUndetected SCDState = iota
	SCDOffSkin
	SCDOnObject
	SCDOnSkin
)

var scdNames = []string{"undetected", "off-skin", "on-object", "on-skin"}

// String implements fmt.Stringer.
func (s SCDState) String() string {
	if int(s) < len(scdNames) {
		return scdNames[s]
	}
	return fmt.Sprintf("scd(%d)", uint8(s))
}

// Scd is the skin contact detection output.
type Scd struct {
	State SCDState
}

// Kind implements Record.
func (Scd) Kind() Kind { return KindScd }

// DecodeScd decodes a Scd record from the start of b.
func DecodeScd(b []byte) (Scd, error) {
	if err := checkLen(KindScd, b, ScdSize); err != nil {
		return Scd{}, err
	}
	return Scd{State: SCDState(b[0])}, nil
}

// Encode writes the wire form into b[:ScdSize].
func (s Scd) Encode(b []byte) {
	b[0] = byte(s.State)
}
