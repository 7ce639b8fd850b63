package device

import (
	"fmt"

	"github.com/robotalks/sensorhub.go/pkg/hub/comm"
	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

// Every transition updates the mode only after all of its steps
// succeeded. Registers written before a failing step are left as they
// are: the hub may then be partially reprogrammed while Mode reports the
// previous mode.

// stop disables the running algorithm, suspends the poller and destroys
// the live queues. The algorithm is left alone when the hub is idle.
func (h *Hub) stop() (*Paused, error) {
	if h.Mode() != ModeIdle {
		if err := h.tr.Send(cmdEnableAlgo(algoOff)); err != nil {
			return nil, fmt.Errorf("stop: %w", err)
		}
	}
	p := h.poller.Pause()
	h.installQueues(p, nil)
	return p, nil
}

func (h *Hub) activate(p *Paused, qs *queueSet, m Mode) {
	h.installQueues(p, qs)
	h.setMode(m)
	p.Resume()
}

func (h *Hub) idle(p *Paused) {
	h.installQueues(p, nil)
	h.setMode(ModeIdle)
}

func (h *Hub) writeLEDs() error {
	for n, v := range h.leds {
		if err := h.tr.Send(cmdWriteAFE(regLED1+byte(n), v)); err != nil {
			return fmt.Errorf("led%d current: %w", n+1, err)
		}
	}
	return nil
}

func transitionError(m Mode, err error) error {
	return fmt.Errorf("enter %s: %w", m, err)
}

// EnterRaw streams raw sensor samples.
func (h *Hub) EnterRaw() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.enterRaw()
}

func (h *Hub) enterRaw() error {
	p, err := h.stop()
	if err != nil {
		return err
	}
	if err = h.tr.SendAll(cmdOutputFormat(outputSensor), cmdEnableAFE(true)); err != nil {
		return transitionError(ModeRaw, err)
	}
	if err = h.accelEnable(true); err != nil {
		return transitionError(ModeRaw, err)
	}
	if err = h.tr.Send(cmdWriteAFE(regSampleRate, h.cfg.SampleRate)); err != nil {
		return transitionError(ModeRaw, err)
	}
	if err = h.writeLEDs(); err != nil {
		return transitionError(ModeRaw, err)
	}
	qs, err := h.newQueues(records.KindRaw)
	if err != nil {
		return transitionError(ModeRaw, err)
	}
	h.activate(p, qs, ModeRaw)
	return nil
}

// EnterAlgo runs the HR/SpO2 algorithm. extended must match the report
// format the hub was configured with.
func (h *Hub) EnterAlgo(alg Algorithm, extended bool) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.enterAlgo(alg, extended)
}

func (h *Hub) enterAlgo(alg Algorithm, extended bool) error {
	target := algoMode(alg, extended)
	format := h.cfg.ReportFormat
	if extended != (format == records.ReportExtended) {
		return comm.ModeErrorf("%s not available with %s reports", target, format)
	}
	p, err := h.stop()
	if err != nil {
		return err
	}
	cmds := []comm.Command{
		cmdOutputFormat(outputSensorAlgo),
		cmdAlgoConfig(cfgAlgoMode, algoModeContinuous),
	}
	switch alg {
	case AEC:
		cmds = append(cmds,
			cmdAlgoConfig(cfgAEC, 1),
			cmdAlgoConfig(cfgAutoPD, 1),
			cmdAlgoConfig(cfgSCD, 1))
	case AGC:
		if err = h.tr.SendAll(cmds...); err != nil {
			return transitionError(target, err)
		}
		if err = h.writeLEDs(); err != nil {
			return transitionError(target, err)
		}
		cmds = []comm.Command{
			cmdAlgoConfig(cfgAEC, 0),
			cmdAlgoConfig(cfgAutoPD, 0),
			cmdAlgoConfig(cfgSCD, 0),
			cmdAlgoConfig16(cfgTargetPD, h.cfg.TargetPDCurrent),
		}
	}
	enable := algoNormal
	if extended {
		enable = algoExtended
	}
	cmds = append(cmds, cmdEnableAlgo(enable))
	if err = h.tr.SendAll(cmds...); err != nil {
		return transitionError(target, err)
	}
	qs, err := h.newQueues(records.KindRaw, format.Kind())
	if err != nil {
		return transitionError(target, err)
	}
	h.activate(p, qs, target)
	return nil
}

// EnterSCD runs skin contact detection only.
func (h *Hub) EnterSCD() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.enterSCD()
}

func (h *Hub) enterSCD() error {
	p, err := h.stop()
	if err != nil {
		return err
	}
	err = h.tr.SendAll(
		cmdAlgoConfig(cfgSCDChannel, scdLEDChannel),
		cmdOutputFormat(outputAlgo),
		cmdEnableAlgo(algoSCDOnly))
	if err != nil {
		return transitionError(ModeSCD, err)
	}
	qs, err := h.newQueues(records.KindScd)
	if err != nil {
		return transitionError(ModeSCD, err)
	}
	h.activate(p, qs, ModeSCD)
	return nil
}

// EnterWakeOnMotion arms motion detection on the accelerometer.
// The poller and the live queues are left as they are.
func (h *Hub) EnterWakeOnMotion() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.enterWakeOnMotion()
}

func (h *Hub) enterWakeOnMotion() error {
	err := h.tr.SendAll(
		cmdEnableAlgo(algoOff),
		cmdMotion(h.motion),
		cmdOutputFormat(outputSensor))
	if err == nil {
		err = h.accelEnable(true)
	}
	if err != nil {
		return transitionError(ModeWakeOnMotion, err)
	}
	h.setMode(ModeWakeOnMotion)
	return nil
}

// ExitWakeOnMotion disarms motion detection and returns to Idle.
func (h *Hub) ExitWakeOnMotion() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.checkReady(); err != nil {
		return err
	}
	if m := h.Mode(); m != ModeWakeOnMotion {
		return comm.ModeErrorf("not in %s but %s", ModeWakeOnMotion, m)
	}
	return h.exitWakeOnMotion()
}

func (h *Hub) exitWakeOnMotion() error {
	if err := h.motionOff(); err != nil {
		return err
	}
	h.idle(h.poller.Pause())
	return nil
}

func (h *Hub) motionOff() error {
	if err := h.tr.Send(cmdMotionDisable); err != nil {
		return fmt.Errorf("disable motion detection: %w", err)
	}
	if err := h.accelEnable(false); err != nil {
		return fmt.Errorf("disable motion detection: %w", err)
	}
	return nil
}

// DisableSensors stops acquisition and powers the sensors down.
func (h *Hub) DisableSensors() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.disableSensors()
}

func (h *Hub) disableSensors() error {
	p, err := h.stop()
	if err != nil {
		return err
	}
	if err = h.motionOff(); err != nil {
		return err
	}
	if err = h.tr.Send(cmdEnableAFE(false)); err != nil {
		return fmt.Errorf("disable afe: %w", err)
	}
	if err = h.accelEnable(false); err != nil {
		return fmt.Errorf("disable accel: %w", err)
	}
	h.idle(p)
	return nil
}

// SetMode moves the hub into mode m. Wake-on-motion is disarmed first
// when leaving it for an acquisition mode.
func (h *Hub) SetMode(m Mode) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.setModeLocked(m)
}

func (h *Hub) setModeLocked(m Mode) error {
	if cur := h.Mode(); cur == ModeWakeOnMotion && m != ModeWakeOnMotion && m != ModeIdle {
		if err := h.exitWakeOnMotion(); err != nil {
			return err
		}
	}
	switch m {
	case ModeIdle:
		return h.disableSensors()
	case ModeRaw:
		return h.enterRaw()
	case ModeAlgoAEC, ModeAlgoAECExtended:
		return h.enterAlgo(AEC, m.Extended())
	case ModeAlgoAGC, ModeAlgoAGCExtended:
		return h.enterAlgo(AGC, m.Extended())
	case ModeSCD:
		return h.enterSCD()
	case ModeWakeOnMotion:
		return h.enterWakeOnMotion()
	}
	return comm.ModeErrorf("unsupported mode %s", m)
}
