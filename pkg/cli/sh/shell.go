// Package sh provides the operator shell over a sensor hub.
package sh

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"reflect"

	"github.com/abiosoft/ishell"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/sensorhub.go/pkg/env"
	"github.com/robotalks/sensorhub.go/pkg/hub/bootloader"
	"github.com/robotalks/sensorhub.go/pkg/hub/device"
	"github.com/robotalks/sensorhub.go/pkg/hub/msgs"
	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

// Device is the hub surface used by the shell. *device.Hub implements it.
type Device interface {
	Init() error
	Info(hubID string) *msgs.HubInfo
	Mode() device.Mode
	SetMode(device.Mode) error
	Attribute(device.Attribute) (int, error)
	SetAttribute(device.Attribute, int) error
	Fetch(records.Kind) (records.Record, bool)
	DisableSensors() error
	Suspend() *device.Paused
}

// Flasher writes firmware. *bootloader.Loader implements it.
type Flasher interface {
	Flash(bootloader.Image) (bootloader.AppInfo, error)
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Config  *env.Config
	Device  Device
	Flasher Flasher
}

const shellKey = "$shell"

var (
	// flags

	evalOnly   bool
	outputJSON bool
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(conf *env.Config, dev Device, flasher Flasher) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Config:  conf,
		Device:  dev,
		Flasher: flasher,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(conf.HubID + " > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd.ishellCmd())
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Format renders a message for display.
func (s *Shell) Format(msg proto.Message) (string, error) {
	if s.OutputJSON {
		out, err := json.Marshal(msg)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return fmt.Sprintf("%s %s",
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		msg.String()), nil
}

// Exec runs a command by name.
func (s *Shell) Exec(name string, args ...string) (string, error) {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd.run(s, args)
		}
	}
	return "", fmt.Errorf("unknown command %q", name)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return errors.New("command expected")
	}
	s.Shell.Run()
	return nil
}
