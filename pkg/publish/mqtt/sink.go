package mqtt

import (
	"context"
	"errors"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/sensorhub.go/pkg/hub/msgs"
	"github.com/robotalks/sensorhub.go/pkg/hub/records"
	"github.com/robotalks/sensorhub.go/pkg/service"
)

// DefaultPublishTimeout bounds the wait for a publish acknowledgement.
const DefaultPublishTimeout = time.Second

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt publish timeout")

// RecordTopic is the topic carrying records of a kind.
func RecordTopic(hubID string, kind records.Kind) string {
	return hubID + "/" + kind.String()
}

// MetaTopic is the retained topic carrying HubInfo.
func MetaTopic(hubID string) string {
	return hubID + "/meta"
}

// Sink publishes records as envelopes.
type Sink struct {
	Client  *Client
	HubID   string
	Timeout time.Duration
	// Info is published retained on every (re)connect when set.
	Info func() *msgs.HubInfo
}

// NewSink creates a Sink on top of a client.
func NewSink(client *Client, hubID string) *Sink {
	s := &Sink{Client: client, HubID: hubID, Timeout: DefaultPublishTimeout}
	client.OnConnect = func(*Client) {
		if err := s.PublishInfo(); err != nil {
			glog.Warningf("mqtt publish info: %v", err)
		}
	}
	return s
}

// Name implements service.Named.
func (s *Sink) Name() string {
	return "mqtt"
}

// Deliver implements service.Sink.
func (s *Sink) Deliver(ctx context.Context, sample service.Sample) error {
	env, err := msgs.WrapRecord(s.HubID, sample.Time, sample.Record)
	if err != nil {
		return err
	}
	data, err := env.Encode()
	if err != nil {
		return err
	}
	return s.wait(ctx, s.Client.Pub(RecordTopic(s.HubID, sample.Record.Kind()), data))
}

// PublishInfo publishes HubInfo retained.
func (s *Sink) PublishInfo() error {
	if s.Info == nil {
		return nil
	}
	info := s.Info()
	info.HubId = s.HubID
	env, err := msgs.Wrap(s.HubID, time.Now(), info)
	if err != nil {
		return err
	}
	data, err := env.Encode()
	if err != nil {
		return err
	}
	return s.wait(context.Background(), s.Client.PubWith(MetaTopic(s.HubID), data, 1, true))
}

func (s *Sink) wait(ctx context.Context, token paho.Token) error {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = DefaultPublishTimeout
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}
	if !token.WaitTimeout(timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Run implements service.Runnable. It connects and stays until ctx is done.
func (s *Sink) Run(ctx context.Context) error {
	if err := s.Client.Connect(); err != nil {
		return err
	}
	defer s.Client.Close()
	<-ctx.Done()
	return ctx.Err()
}

// Watch subscribes envelopes published by a hub, "+" watches all hubs.
// Undecodable payloads are logged and skipped.
func Watch(client *Client, hubID string, fn func(topic string, env *msgs.Envelope)) error {
	token := client.Sub(hubID+"/+", func(topic string, payload []byte) {
		env, err := msgs.DecodeEnvelope(payload)
		if err != nil {
			glog.Warningf("mqtt %s: %v", topic, err)
			return
		}
		fn(topic, env)
	})
	token.Wait()
	return token.Error()
}
