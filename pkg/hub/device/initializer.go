package device

import (
	"fmt"

	"github.com/robotalks/sensorhub.go/pkg/hub/comm"
)

func (h *Hub) writeConfig() error {
	c := h.cfg
	cmds := []comm.Command{
		cmdAlgoConfig(cfgMinIntegration, c.Timing.MinIntegration),
		cmdAlgoConfig(cfgMaxIntegration, c.Timing.MaxIntegration),
		cmdAlgoConfig(cfgMinSamplingRate, c.Timing.MinSamplingRate),
		cmdAlgoConfig(cfgMaxSamplingRate, c.Timing.MaxSamplingRate),
		cmdSetReportPeriod(c.ReportPeriod),
		cmdAlgoConfig16(cfgHRTuning, c.HRTuning),
		cmdAlgoConfig16(cfgSpO2Tuning, c.SpO2Tuning),
		cmdInterruptThreshold(c.InterruptThreshold),
		cmdCalibration(c.SpO2Calibration),
	}
	for _, cmd := range cmds {
		if err := h.tr.Send(cmd); err != nil {
			return fmt.Errorf("write config %s: %w", cmd, err)
		}
	}
	return nil
}

func (h *Hub) readConfig() (s Settings, err error) {
	if s.ReportPeriod, err = h.tr.ReadValue(cmdReportPeriod); err != nil {
		return s, fmt.Errorf("read report period: %w", err)
	}
	for _, f := range []struct {
		idx byte
		val *uint8
	}{
		{cfgMinIntegration, &s.Timing.MinIntegration},
		{cfgMaxIntegration, &s.Timing.MaxIntegration},
		{cfgMinSamplingRate, &s.Timing.MinSamplingRate},
		{cfgMaxSamplingRate, &s.Timing.MaxSamplingRate},
	} {
		if *f.val, err = h.tr.ReadValue(cmdReadAlgoConfig(f.idx)); err != nil {
			return s, fmt.Errorf("read config 0x%02x: %w", f.idx, err)
		}
	}
	return s, nil
}
