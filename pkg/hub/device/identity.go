package device

import (
	"fmt"

	"github.com/robotalks/sensorhub.go/pkg/hub/comm"
)

// Version is the hub firmware version.
type Version struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Identity holds the WHOAMI values of the attached sensors.
type Identity struct {
	AFE   byte
	Accel byte
}

func (h *Hub) readVersion() (Version, error) {
	b, err := h.tr.Exchange(cmdVersion, 3)
	if err != nil {
		return Version{}, fmt.Errorf("read version: %w", err)
	}
	return Version{Major: b[0], Minor: b[1], Patch: b[2]}, nil
}

func (h *Hub) verifyIdentity() (id Identity, err error) {
	if id.AFE, err = h.tr.ReadValue(cmdReadRegister(sensorAFE, regAFEWhoAmI)); err != nil {
		return id, fmt.Errorf("read afe whoami: %w", err)
	}
	if want := h.cfg.AFE.WhoAmI(); id.AFE != want {
		return id, &comm.IdentityError{What: h.cfg.AFE.String() + " whoami", Want: []byte{want}, Got: id.AFE}
	}
	if id.Accel, err = h.tr.ReadValue(cmdReadRegister(sensorAccel, regAccelWhoAmI)); err != nil {
		return id, fmt.Errorf("read accel whoami: %w", err)
	}
	if id.Accel != AccelWhoAmI {
		return id, &comm.IdentityError{What: "accel whoami", Want: []byte{AccelWhoAmI}, Got: id.Accel}
	}
	return id, nil
}
