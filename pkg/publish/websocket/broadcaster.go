// Package websocket streams hub records to websocket clients.
package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/sensorhub.go/pkg/hub/msgs"
	"github.com/robotalks/sensorhub.go/pkg/service"
)

// DefaultPath is where the record stream is served.
const DefaultPath = "/records"

// DefaultBacklog is the number of envelopes buffered per client.
const DefaultBacklog = 64

// Broadcaster sends every record as a binary envelope to all clients.
// A client not keeping up loses envelopes instead of blocking others.
type Broadcaster struct {
	Addr    string
	HubID   string
	Backlog int

	lock    sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn   *websocket.Conn
	sendCh chan []byte
}

// NewBroadcaster creates a Broadcaster listening on addr when run.
func NewBroadcaster(addr, hubID string) *Broadcaster {
	return &Broadcaster{Addr: addr, HubID: hubID, Backlog: DefaultBacklog}
}

// Name implements service.Named.
func (b *Broadcaster) Name() string {
	return "websocket"
}

// Handler returns the http.Handler accepting clients.
func (b *Broadcaster) Handler() http.Handler {
	return websocket.Handler(b.serve)
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) serve(conn *websocket.Conn) {
	backlog := b.Backlog
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	c := &client{conn: conn, sendCh: make(chan []byte, backlog)}
	b.lock.Lock()
	if b.clients == nil {
		b.clients = make(map[*client]struct{})
	}
	b.clients[c] = struct{}{}
	b.lock.Unlock()
	glog.Infof("websocket client %s connected", conn.Request().RemoteAddr)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		var discard []byte
		for {
			// clients never send, a read error means gone
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	defer func() {
		b.lock.Lock()
		delete(b.clients, c)
		b.lock.Unlock()
		conn.Close()
		glog.Infof("websocket client %s disconnected", conn.Request().RemoteAddr)
	}()
	for {
		select {
		case <-closed:
			return
		case data := <-c.sendCh:
			if err := websocket.Message.Send(conn, data); err != nil {
				glog.V(2).Infof("websocket send: %v", err)
				return
			}
		}
	}
}

// Deliver implements service.Sink.
func (b *Broadcaster) Deliver(_ context.Context, sample service.Sample) error {
	env, err := msgs.WrapRecord(b.HubID, sample.Time, sample.Record)
	if err != nil {
		return err
	}
	data, err := env.Encode()
	if err != nil {
		return err
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	for c := range b.clients {
		select {
		case c.sendCh <- data:
		default:
			glog.V(2).Infof("websocket client %s lagging, envelope dropped", c.conn.Request().RemoteAddr)
		}
	}
	return nil
}

// Run implements service.Runnable.
func (b *Broadcaster) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", b.Addr)
	if err != nil {
		return err
	}
	glog.Infof("websocket listening on %s%s", ln.Addr(), DefaultPath)
	mux := http.NewServeMux()
	mux.Handle(DefaultPath, b.Handler())
	server := &http.Server{Handler: mux}
	return service.RunWithContextCloser(ctx, server, func() error {
		return server.Serve(ln)
	})
}
