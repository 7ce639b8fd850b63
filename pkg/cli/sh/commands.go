package sh

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/sensorhub.go/pkg/hub/bootloader"
	"github.com/robotalks/sensorhub.go/pkg/hub/device"
	"github.com/robotalks/sensorhub.go/pkg/hub/msgs"
	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

// Command is a shell command.
type Command struct {
	Name    string
	Aliases []string
	Help    string
	Run     func(s *Shell, args []string) (string, error)
}

func (cmd *Command) ishellCmd() *ishell.Cmd {
	return &ishell.Cmd{
		Name:    cmd.Name,
		Aliases: cmd.Aliases,
		Help:    cmd.Help,
		Func: func(c *ishell.Context) {
			out, err := cmd.run(ShellFrom(c), c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if out != "" {
				c.Println(out)
			}
		},
	}
}

const ok = "OK"

var commands = []*Command{
	&InfoCmd,
	&ModeCmd,
	&LEDCmd,
	&MotionCmd,
	&ProfileCmd,
	&AttrCmd,
	&FetchCmd,
	&FlashCmd,
	&OffCmd,
}

var errUsage = errors.New("usage")

func (cmd *Command) run(s *Shell, args []string) (string, error) {
	out, err := cmd.Run(s, args)
	if err == errUsage {
		err = fmt.Errorf("usage: %s %s", cmd.Name, cmd.Help)
	}
	return out, err
}

func parseValue(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return int(v), nil
}

func (s *Shell) attr(a device.Attribute, args []string) (string, error) {
	if len(args) == 0 {
		v, err := s.Device.Attribute(a)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(v), nil
	}
	v, err := parseValue(args[0])
	if err != nil {
		return "", err
	}
	if err := s.Device.SetAttribute(a, v); err != nil {
		return "", err
	}
	return ok, nil
}

var (
	// InfoCmd prints hub information.
	InfoCmd = Command{
		Name:    "info",
		Aliases: []string{"i"},
		Help:    "",
		Run: func(s *Shell, args []string) (string, error) {
			return s.Format(s.Device.Info(s.Config.HubID))
		},
	}

	// ModeCmd reads or changes the mode.
	ModeCmd = Command{
		Name:    "mode",
		Aliases: []string{"m"},
		Help:    "[idle|raw|aec|aec-ext|agc|agc-ext|scd|wom]",
		Run: func(s *Shell, args []string) (string, error) {
			if len(args) == 0 {
				return s.Device.Mode().String(), nil
			}
			m, err := device.ParseMode(args[0])
			if err != nil {
				return "", err
			}
			if err := s.Device.SetMode(m); err != nil {
				return "", err
			}
			return ok, nil
		},
	}

	// LEDCmd reads or sets an LED current.
	LEDCmd = Command{
		Name: "led",
		Help: "1|2|3 [VALUE]",
		Run: func(s *Shell, args []string) (string, error) {
			if len(args) == 0 {
				return "", errUsage
			}
			ch, err := strconv.Atoi(args[0])
			if err != nil || ch < 1 || ch > 3 {
				return "", fmt.Errorf("invalid LED channel %q", args[0])
			}
			return s.attr(device.AttrLED1+device.Attribute(ch-1), args[1:])
		},
	}

	// MotionCmd reads or sets wake on motion parameters.
	MotionCmd = Command{
		Name: "motion",
		Help: "[TIME THRESHOLD]",
		Run: func(s *Shell, args []string) (string, error) {
			switch len(args) {
			case 0:
				t, err := s.Device.Attribute(device.AttrMotionTime)
				if err != nil {
					return "", err
				}
				th, err := s.Device.Attribute(device.AttrMotionThreshold)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("time=%d threshold=%d", t, th), nil
			case 2:
				if _, err := s.attr(device.AttrMotionTime, args[:1]); err != nil {
					return "", err
				}
				return s.attr(device.AttrMotionThreshold, args[1:])
			}
			return "", errUsage
		},
	}

	// ProfileCmd sends user profile values to the algorithm.
	ProfileCmd = Command{
		Name: "profile",
		Help: "height|weight|age|gender VALUE",
		Run: func(s *Shell, args []string) (string, error) {
			if len(args) != 2 {
				return "", errUsage
			}
			a, err := device.ParseAttribute(args[0])
			if err != nil {
				return "", err
			}
			switch a {
			case device.AttrHeight, device.AttrWeight, device.AttrAge, device.AttrGender:
				return s.attr(a, args[1:])
			}
			return "", errUsage
		},
	}

	// AttrCmd reads or writes any attribute, lists all without arguments.
	AttrCmd = Command{
		Name:    "attr",
		Aliases: []string{"a"},
		Help:    "[NAME [VALUE]]",
		Run: func(s *Shell, args []string) (string, error) {
			if len(args) == 0 {
				var lines []string
				for _, a := range device.Attributes() {
					val := "-"
					if v, err := s.Device.Attribute(a); err == nil {
						val = strconv.Itoa(v)
					}
					lines = append(lines, a.String()+" "+val)
				}
				return strings.Join(lines, "\n"), nil
			}
			a, err := device.ParseAttribute(args[0])
			if err != nil {
				return "", err
			}
			return s.attr(a, args[1:])
		},
	}

	// FetchCmd fetches the oldest record of a kind.
	FetchCmd = Command{
		Name:    "fetch",
		Aliases: []string{"f"},
		Help:    "raw|report|ext|scd",
		Run: func(s *Shell, args []string) (string, error) {
			if len(args) != 1 {
				return "", errUsage
			}
			kind, err := records.ParseKind(args[0])
			if err != nil {
				return "", err
			}
			rec, found := s.Device.Fetch(kind)
			if !found {
				return "", fmt.Errorf("no %s record available", kind)
			}
			msg, err := msgs.FromRecord(rec)
			if err != nil {
				return "", err
			}
			return s.Format(msg)
		},
	}

	// FlashCmd writes a firmware image and re-initializes the hub.
	FlashCmd = Command{
		Name: "flash",
		Help: "FILE",
		Run: func(s *Shell, args []string) (string, error) {
			if len(args) != 1 {
				return "", errUsage
			}
			if s.Flasher == nil {
				return "", fmt.Errorf("flashing not available")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return "", err
			}
			img := bootloader.Image(data)
			if err := img.Validate(); err != nil {
				return "", err
			}
			if err := s.Device.DisableSensors(); err != nil {
				// an unresponsive application is a reason to flash
				glog.Warningf("disable sensors: %v", err)
			}
			// the poller must not touch the bus while the hub is reset
			s.Device.Suspend()
			app, err := s.Flasher.Flash(img)
			if err != nil {
				return "", err
			}
			if err := s.Device.Init(); err != nil {
				return "", fmt.Errorf("init after flash: %w", err)
			}
			return fmt.Sprintf("flashed %d pages, mcu 0x%02x firmware %s", img.PageCount(), app.MCUType, app.Version), nil
		},
	}

	// OffCmd powers the sensors down.
	OffCmd = Command{
		Name: "off",
		Help: "",
		Run: func(s *Shell, args []string) (string, error) {
			if err := s.Device.DisableSensors(); err != nil {
				return "", err
			}
			return ok, nil
		},
	}
)
