package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang/glog"
)

// DefaultSampleInterval is used when Sampler.Interval is zero.
const DefaultSampleInterval = 100 * time.Millisecond

// Sampler periodically drains every live queue of a Source and fans
// the records out to Sinks.
type Sampler struct {
	Interval time.Duration
	// MaxBatch limits records fetched per queue in one round, 0 drains.
	MaxBatch int

	source   Source
	sinks    []Sink
	wakeUpCh chan struct{}
}

// NewSampler creates a Sampler.
func NewSampler(source Source, sinks ...Sink) *Sampler {
	return &Sampler{
		Interval: DefaultSampleInterval,
		source:   source,
		sinks:    sinks,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// AddSink appends sinks. Not safe once Run started.
func (s *Sampler) AddSink(sinks ...Sink) *Sampler {
	s.sinks = append(s.sinks, sinks...)
	return s
}

// Name implements Named.
func (s *Sampler) Name() string {
	return "sampler"
}

// Run implements Runnable.
func (s *Sampler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval == 0 {
		interval = DefaultSampleInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.round(ctx, now)
		case <-s.wakeUpCh:
			s.round(ctx, time.Now())
		}
	}
}

// TriggerNext requests a round without waiting for the next tick.
func (s *Sampler) TriggerNext() {
	select {
	case s.wakeUpCh <- struct{}{}:
	default:
	}
}

func (s *Sampler) round(ctx context.Context, now time.Time) {
	n, err := s.SampleOnce(ctx, now)
	if err != nil {
		glog.Errorf("sampler: %v", err)
	}
	if n > 0 {
		glog.V(4).Infof("sampler: %d records", n)
	}
}

// SampleOnce fetches records from all live queues and delivers them to
// every sink. Sink errors never stop the round; they are aggregated.
func (s *Sampler) SampleOnce(ctx context.Context, now time.Time) (int, error) {
	var (
		errs  AggregatedError
		count int
	)
	for _, kind := range s.source.LiveQueues() {
		for n := 0; s.MaxBatch <= 0 || n < s.MaxBatch; n++ {
			rec, ok := s.source.Fetch(kind)
			if !ok {
				break
			}
			count++
			sample := Sample{Time: now, Record: rec}
			for i, sink := range s.sinks {
				if err := sink.Deliver(ctx, sample); err != nil {
					errs.Add(fmt.Errorf("sink[%s] %s: %w", sinkName(sink, i), kind, err))
				}
			}
		}
	}
	return count, errs.Aggregate()
}

func sinkName(sink Sink, n int) string {
	if named, ok := sink.(Named); ok {
		return named.Name()
	}
	return strconv.Itoa(n)
}
