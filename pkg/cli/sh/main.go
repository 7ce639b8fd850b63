package sh

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/sensorhub.go/pkg/env"
	"github.com/robotalks/sensorhub.go/pkg/hub/bootloader"
	"github.com/robotalks/sensorhub.go/pkg/hub/comm/periph"
	"github.com/robotalks/sensorhub.go/pkg/hub/device"
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	if err := run(flag.Args()...); err != nil {
		glog.Exit(err)
	}
}

// run returns instead of exiting so deferred closes run.
func run(args ...string) error {
	conf, err := env.Load()
	if err != nil {
		return err
	}
	dc, err := conf.DeviceConfig()
	if err != nil {
		return err
	}
	hw, err := periph.Open(conf.PeriphConfig())
	if err != nil {
		return err
	}
	defer hw.Close()
	hub, err := device.New(hw.Dev, hw.Wake, hw.Reset, dc)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	if err := hub.Init(); err != nil {
		// still useful for flashing
		glog.Errorf("hub init: %v", err)
	}
	loader := bootloader.NewLoader(hw.Dev, hw.Wake, hw.Reset)
	return New(conf, hub, loader).Run(args...)
}
