package device

import "github.com/robotalks/sensorhub.go/pkg/hub/msgs"

// Info summarizes the hub for publishing.
func (h *Hub) Info(hubID string) *msgs.HubInfo {
	id := h.Identity()
	return &msgs.HubInfo{
		HubId:        hubID,
		Firmware:     h.Version().String(),
		Afe:          uint32(id.AFE),
		Accel:        uint32(id.Accel),
		Mode:         h.Mode().String(),
		ReportFormat: h.cfg.ReportFormat.String(),
	}
}
