package device

import (
	"encoding/binary"

	"github.com/robotalks/sensorhub.go/pkg/hub/comm"
)

// MaxExternalSamples is the largest batch accepted by PushAccelSamples.
const MaxExternalSamples = 16

// AccelSample is one 3-axis accelerometer reading.
type AccelSample struct {
	X, Y, Z int16
}

// SetAccelEnabled enables or disables the accelerometer.
func (h *Hub) SetAccelEnabled(on bool) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.accelEnable(on)
}

func (h *Hub) accelEnable(on bool) error {
	return h.tr.Send(cmdEnableAccel(on, h.cfg.ExternalAccel))
}

// PushAccelSamples feeds externally sourced accelerometer samples to the
// hub. The hub must be configured for an external accelerometer.
func (h *Hub) PushAccelSamples(samples []AccelSample) error {
	if !h.cfg.ExternalAccel {
		return comm.ModeErrorf("accelerometer is not externally sourced")
	}
	if len(samples) > MaxExternalSamples {
		return comm.ModeErrorf("%d accelerometer samples exceed %d", len(samples), MaxExternalSamples)
	}
	if len(samples) == 0 {
		return nil
	}
	data := make([]byte, len(samples)*6)
	for n, s := range samples {
		b := data[n*6:]
		binary.BigEndian.PutUint16(b, uint16(s.X))
		binary.BigEndian.PutUint16(b[2:], uint16(s.Y))
		binary.BigEndian.PutUint16(b[4:], uint16(s.Z))
	}
	return h.tr.Send(comm.Cmd(comm.FamilyInput, 0x00, data...))
}
