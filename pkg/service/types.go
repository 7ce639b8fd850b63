// Package service provides the runtime plumbing around a hub: runnable
// lifecycle, error aggregation and record sampling.
package service

import (
	"context"
	"time"

	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Source provides non-blocking access to queued records.
// *device.Hub implements it.
type Source interface {
	LiveQueues() []records.Kind
	Fetch(records.Kind) (records.Record, bool)
}

// Sample is a record fetched at a point of time.
type Sample struct {
	Time   time.Time
	Record records.Record
}

// Sink consumes samples.
type Sink interface {
	Deliver(context.Context, Sample) error
}

// SinkFunc is the func form of Sink.
type SinkFunc func(context.Context, Sample) error

// Deliver implements Sink.
func (f SinkFunc) Deliver(ctx context.Context, s Sample) error {
	return f(ctx, s)
}
