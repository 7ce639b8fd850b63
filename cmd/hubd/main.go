package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/sensorhub.go/pkg/env"
	"github.com/robotalks/sensorhub.go/pkg/hub/comm/periph"
	"github.com/robotalks/sensorhub.go/pkg/hub/device"
	"github.com/robotalks/sensorhub.go/pkg/hub/msgs"
	"github.com/robotalks/sensorhub.go/pkg/publish/mqtt"
	"github.com/robotalks/sensorhub.go/pkg/publish/websocket"
	"github.com/robotalks/sensorhub.go/pkg/service"
)

func init() {
	env.SetupFlags()
}

func logSink(_ context.Context, s service.Sample) error {
	if glog.V(1) {
		msg, err := msgs.FromRecord(s.Record)
		if err != nil {
			return err
		}
		glog.Infof("%s %s", s.Record.Kind(), msg)
	}
	return nil
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		glog.Exit(err)
	}
}

// run returns instead of exiting so deferred closes run.
func run() error {
	conf, err := env.Load()
	if err != nil {
		return err
	}
	dc, err := conf.DeviceConfig()
	if err != nil {
		return err
	}
	mode, err := conf.InitialMode()
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
	if err = hub.Init(); err != nil {
		return fmt.Errorf("hub init: %w", err)
	}
	glog.Infof("hub %s firmware %s ready", conf.HubID, hub.Version())

	runner := service.NewRunner().HandleSignals()
	sampler := service.NewSampler(hub, service.SinkFunc(logSink))
	sampler.Interval = conf.SampleInterval
	if conf.MQTTBrokerURL != "" {
		client, err := mqtt.NewClientFromURL(conf.MQTTBrokerURL)
		if err != nil {
			return err
		}
		sink := mqtt.NewSink(client, conf.HubID)
		sink.Info = func() *msgs.HubInfo { return hub.Info(conf.HubID) }
		sampler.AddSink(sink)
		runner.Go(sink)
	}
	if conf.WebsocketAddr != "" {
		b := websocket.NewBroadcaster(conf.WebsocketAddr, conf.HubID)
		sampler.AddSink(b)
		runner.Go(b)
	}

	runner.Go(hub)
	if err = hub.SetMode(mode); err != nil {
		glog.Errorf("enter mode %s: %v", mode, err)
		runner.Stop()
	} else {
		runner.Go(sampler)
	}
	err = runner.Wait()

	if derr := hub.DisableSensors(); derr != nil {
		glog.Errorf("disable sensors: %v", derr)
	}
	return err
}
