// Package mqtt publishes hub records to an MQTT broker.
package mqtt

import (
	"net/url"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Client)

// Client wraps the paho client with a topic prefix.
type Client struct {
	Client       paho.Client
	TopicPrefix  string
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	subsLock sync.RWMutex
	subs     map[string][]Handler
}

// MatchTopic matches topic with a filter which may contain + and #.
func MatchTopic(topic, filter string) bool {
	tokensT, tokensF := strings.Split(topic, "/"), strings.Split(filter, "/")
	for i, token := range tokensF {
		if token == "#" && i+1 == len(tokensF) {
			return true
		}
		if i >= len(tokensT) {
			return false
		}
		if token != "+" && token != tokensT[i] {
			return false
		}
	}
	return len(tokensF) == len(tokensT)
}

// ClientOptionsFromURL creates ClientOptions from URL.
// The URL path is the topic prefix, query client-id sets the client ID.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}

	topicPrefix := strings.TrimPrefix(u.Path, "/")
	if topicPrefix != "" && !strings.HasSuffix(topicPrefix, "/") {
		topicPrefix += "/"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// NewClient creates a Client.
func NewClient(options *paho.ClientOptions, topicPrefix string) *Client {
	c := &Client{TopicPrefix: topicPrefix}
	options.SetOnConnectHandler(c.onConnect)
	options.SetConnectionLostHandler(c.onConnectionLost)
	c.Client = paho.NewClient(options)
	return c
}

// NewClientFromURL creates Client from URL.
func NewClientFromURL(brokerURL string) (*Client, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewClient(opts, topicPrefix), nil
}

// Connect connects the client and waits for the result.
func (c *Client) Connect() error {
	token := c.Client.Connect()
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (c *Client) Close() error {
	c.Client.Disconnect(250)
	return nil
}

// Sub subscribes a topic filter relative to the prefix.
func (c *Client) Sub(filter string, handler Handler) paho.Token {
	c.subsLock.Lock()
	if c.subs == nil {
		c.subs = make(map[string][]Handler)
	}
	handlers := c.subs[filter]
	c.subs[filter] = append(handlers, handler)
	c.subsLock.Unlock()
	if len(handlers) > 0 {
		return &paho.DummyToken{}
	}
	glog.V(2).Infof("SUB %q", c.TopicPrefix+filter)
	return c.Client.Subscribe(c.TopicPrefix+filter, 0, c.dispatch)
}

// Pub publishes to a topic relative to the prefix.
func (c *Client) Pub(topic string, payload []byte) paho.Token {
	return c.PubWith(topic, payload, 0, false)
}

// PubWith publishes with QoS and retain settings.
func (c *Client) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	glog.V(4).Infof("PUB %q %d bytes", c.TopicPrefix+topic, len(payload))
	return c.Client.Publish(c.TopicPrefix+topic, qos, retain, payload)
}

func (c *Client) resubscribe() {
	filters := make(map[string]byte)
	c.subsLock.RLock()
	for filter := range c.subs {
		filters[c.TopicPrefix+filter] = 0
	}
	c.subsLock.RUnlock()
	if len(filters) > 0 {
		c.Client.SubscribeMultiple(filters, c.dispatch)
	}
}

func (c *Client) onConnect(paho.Client) {
	glog.Info("mqtt connected")
	c.resubscribe()
	if h := c.OnConnect; h != nil {
		h(c)
	}
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	glog.Warningf("mqtt connection lost: %v", err)
	if h := c.OnDisconnect; h != nil {
		h(c)
	}
}

func (c *Client) dispatch(_ paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, c.TopicPrefix) {
		return
	}
	glog.V(2).Infof("RCV %q", topic)
	topic = topic[len(c.TopicPrefix):]
	var handlers []Handler
	c.subsLock.RLock()
	for filter, hs := range c.subs {
		if MatchTopic(topic, filter) {
			handlers = append(handlers, hs...)
		}
	}
	c.subsLock.RUnlock()
	payload := msg.Payload()
	for _, h := range handlers {
		h(topic, payload)
	}
}
