package comm

import (
	"fmt"
	"time"
)

// DefaultDelay is the wait used after writes and reads unless a command
// states otherwise.
const DefaultDelay = 10 * time.Millisecond

// StatusSuccess is the only status byte accepted as success.
const StatusSuccess byte = 0

// Command families.
const (
	FamilyStatus        byte = 0x00
	FamilySetMode       byte = 0x01
	FamilyReadMode      byte = 0x02
	FamilyOutputMode    byte = 0x10
	FamilyReadOutput    byte = 0x11
	FamilyFIFO          byte = 0x12
	FamilyInput         byte = 0x14
	FamilyWriteRegister byte = 0x40
	FamilyReadRegister  byte = 0x41
	FamilyEnableSensor  byte = 0x44
	FamilyMotion        byte = 0x46
	FamilyAlgoConfig    byte = 0x50
	FamilyReadAlgo      byte = 0x51
	FamilyEnableAlgo    byte = 0x52
	FamilyBootloader    byte = 0x80
	FamilyBootInfo      byte = 0x81
	FamilyIdentity      byte = 0xff
)

// Command is a request frame sent to the hub.
type Command struct {
	Family byte
	Index  byte
	Data   []byte
	// Delay is the wait between writing the frame and reading the response.
	Delay time.Duration
}

// Cmd creates a command with DefaultDelay.
func Cmd(family, index byte, data ...byte) Command {
	return Command{Family: family, Index: index, Data: data, Delay: DefaultDelay}
}

// After returns a copy of the command using delay d.
func (c Command) After(d time.Duration) Command {
	c.Delay = d
	return c
}

// Bytes encodes the frame.
func (c Command) Bytes() []byte {
	b := make([]byte, len(c.Data)+2)
	b[0], b[1] = c.Family, c.Index
	copy(b[2:], c.Data)
	return b
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if len(c.Data) > 0 {
		return fmt.Sprintf("%02x.%02x+%d", c.Family, c.Index, len(c.Data))
	}
	return fmt.Sprintf("%02x.%02x", c.Family, c.Index)
}
