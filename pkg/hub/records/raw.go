package records

import "encoding/binary"

// Raw layout sizes.
const (
	PPGChannels = 6
	RawSize     = PPGChannels*3 + 3*2
)

// Raw is one sensor sample: six 24-bit PPG channels and a 3-axis
// accelerometer reading in milli-g.
type Raw struct {
	PPG   [PPGChannels]uint32
	Accel [3]int16
}

// Kind implements Record.
func (Raw) Kind() Kind { return KindRaw }

// DecodeRaw decodes a Raw record from the start of b.
func DecodeRaw(b []byte) (r Raw, err error) {
	if err = checkLen(KindRaw, b, RawSize); err != nil {
		return
	}
	for n := range r.PPG {
		r.PPG[n] = u24(b[n*3:])
	}
	acc := b[PPGChannels*3:]
	for n := range r.Accel {
		r.Accel[n] = int16(binary.BigEndian.Uint16(acc[n*2:]))
	}
	return
}

// Encode writes the wire form into b[:RawSize].
func (r Raw) Encode(b []byte) {
	for n, v := range r.PPG {
		putU24(b[n*3:], v&0xffffff)
	}
	acc := b[PPGChannels*3:]
	for n, v := range r.Accel {
		binary.BigEndian.PutUint16(acc[n*2:], uint16(v))
	}
}
