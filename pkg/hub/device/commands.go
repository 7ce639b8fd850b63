package device

import (
	"encoding/binary"
	"time"

	"github.com/robotalks/sensorhub.go/pkg/hub/comm"
)

// Sensor indices used with the register and enable families.
const (
	sensorAFE   byte = 0x00
	sensorAccel byte = 0x04
)

// Output formats.
const (
	outputSensor     byte = 0x01
	outputAlgo       byte = 0x02
	outputSensorAlgo byte = 0x03
)

// Algorithm enable values.
const (
	algoOff      byte = 0x00
	algoNormal   byte = 0x01
	algoExtended byte = 0x02
	algoSCDOnly  byte = 0x03
)

// Algorithm configuration indices.
const (
	cfgCalibration     byte = 0x00
	cfgHeight          byte = 0x06
	cfgWeight          byte = 0x07
	cfgAge             byte = 0x08
	cfgGender          byte = 0x09
	cfgAlgoMode        byte = 0x0a
	cfgAEC             byte = 0x0b
	cfgSCD             byte = 0x0c
	cfgTargetPD        byte = 0x11
	cfgAutoPD          byte = 0x12
	cfgMinIntegration  byte = 0x13
	cfgMaxIntegration  byte = 0x14
	cfgMinSamplingRate byte = 0x15
	cfgMaxSamplingRate byte = 0x16
	cfgHRTuning        byte = 0x17
	cfgSpO2Tuning      byte = 0x18
	cfgSCDChannel      byte = 0x19
)

const (
	algoModeContinuous byte = 0x00
	scdLEDChannel      byte = 0x02
)

// AFE registers.
const (
	regSampleRate  byte = 0x12
	regLED1        byte = 0x23
	regAFEWhoAmI   byte = 0xff
	regAccelWhoAmI byte = 0x0f
)

// statusDataReady is the FIFO data ready bit of the hub status.
const statusDataReady byte = 0x08

const (
	afeEnableDelay   = 250 * time.Millisecond
	accelEnableDelay = 20 * time.Millisecond
	algoEnableDelay  = 500 * time.Millisecond
)

var (
	cmdStatus        = comm.Cmd(comm.FamilyStatus, 0x00)
	cmdFIFOCount     = comm.Cmd(comm.FamilyFIFO, 0x00)
	cmdFIFORead      = comm.Cmd(comm.FamilyFIFO, 0x01)
	cmdReportPeriod  = comm.Cmd(comm.FamilyReadOutput, 0x02)
	cmdVersion       = comm.Cmd(comm.FamilyIdentity, 0x03)
	cmdMotionDisable = comm.Cmd(comm.FamilyMotion, sensorAccel, 0x00, 0x00, 0xff, 0xff)
)

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func cmdOutputFormat(f byte) comm.Command {
	return comm.Cmd(comm.FamilyOutputMode, 0x00, f)
}

func cmdInterruptThreshold(n byte) comm.Command {
	return comm.Cmd(comm.FamilyOutputMode, 0x01, n)
}

func cmdSetReportPeriod(p byte) comm.Command {
	return comm.Cmd(comm.FamilyOutputMode, 0x02, p)
}

func cmdAlgoConfig(idx byte, data ...byte) comm.Command {
	return comm.Cmd(comm.FamilyAlgoConfig, 0x07, append([]byte{idx}, data...)...)
}

func cmdAlgoConfig16(idx byte, v uint16) comm.Command {
	return cmdAlgoConfig(idx, byte(v>>8), byte(v))
}

func cmdReadAlgoConfig(idx byte) comm.Command {
	return comm.Cmd(comm.FamilyReadAlgo, 0x07, idx)
}

func cmdCalibration(coef [3]int32) comm.Command {
	data := make([]byte, 1+len(coef)*4)
	data[0] = cfgCalibration
	for n, c := range coef {
		binary.BigEndian.PutUint32(data[1+n*4:], uint32(c))
	}
	return comm.Cmd(comm.FamilyAlgoConfig, 0x07, data...)
}

func cmdEnableAlgo(v byte) comm.Command {
	cmd := comm.Cmd(comm.FamilyEnableAlgo, 0x07, v)
	if v != algoOff {
		cmd = cmd.After(algoEnableDelay)
	}
	return cmd
}

func cmdEnableAFE(on bool) comm.Command {
	return comm.Cmd(comm.FamilyEnableSensor, sensorAFE, boolByte(on), 0x00).After(afeEnableDelay)
}

func cmdEnableAccel(on, external bool) comm.Command {
	return comm.Cmd(comm.FamilyEnableSensor, sensorAccel, boolByte(on), boolByte(external)).After(accelEnableDelay)
}

func cmdWriteAFE(reg, v byte) comm.Command {
	return comm.Cmd(comm.FamilyWriteRegister, sensorAFE, reg, v)
}

func cmdReadRegister(sensor, reg byte) comm.Command {
	return comm.Cmd(comm.FamilyReadRegister, sensor, reg)
}

func cmdMotion(m MotionConfig) comm.Command {
	return comm.Cmd(comm.FamilyMotion, sensorAccel, 0x00, 0x01, m.Time, m.Threshold)
}
