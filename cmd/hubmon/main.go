package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sensorhub.go/pkg/hub/msgs"
	"github.com/robotalks/sensorhub.go/pkg/publish/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/sensorhub/"
	hubID   = "+"
)

func init() {
	if val := os.Getenv("SENSORHUB_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&hubID, "hub", hubID, "Hub ID to watch, + for all.")
}

func main() {
	flag.Parse()

	client, err := mqtt.NewClientFromURL(mqttURL)
	if err != nil {
		glog.Exit(err)
	}
	if err = client.Connect(); err != nil {
		glog.Exit(err)
	}
	defer client.Close()

	err = mqtt.Watch(client, hubID, func(topic string, env *msgs.Envelope) {
		msg, err := env.Decode()
		if err != nil {
			glog.Warningf("%s: decode error: (type_id=%x) %v", topic, env.TypeId, err)
			return
		}
		fmt.Printf("%s %s: [%s] %s\n",
			env.Time().Format(time.StampMicro), topic,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			msg.String())
	})
	if err != nil {
		glog.Exit(err)
	}
	<-(chan struct{})(nil)
}
