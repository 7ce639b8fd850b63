package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robotalks/sensorhub.go/pkg/hub/records"
	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())

	e1, e2 := errors.New("e1"), errors.New("e2")
	err := errs.Add(e1).Aggregate()
	require.EqualError(t, err, "e1")

	err = errs.Add(nil, e2).Aggregate()
	require.EqualError(t, err, "multiple errors:\n  e1\n  e2")
	require.ErrorIs(t, err, e2)
}

func TestRunnerWaitsAll(t *testing.T) {
	r := NewRunner()
	var mu sync.Mutex
	var ran []string
	run := func(name string) Runnable {
		return NamedRun(name, RunFunc(func(context.Context) error {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
			return nil
		}))
	}
	require.NoError(t, r.Go(run("a"), run("b")).Wait())
	require.ElementsMatch(t, []string{"a", "b"}, ran)
}

func TestRunnerFirstErrorStopsGroup(t *testing.T) {
	boom := errors.New("boom")
	r := NewRunner()
	r.Go(
		NamedRun("blocker", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		NamedRun("failer", RunFunc(func(context.Context) error {
			return boom
		})),
	)
	err := r.Wait()
	require.ErrorIs(t, err, boom)
	require.Error(t, r.Context().Err())
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner()
	r.Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	r.Stop()
	require.NoError(t, r.Wait())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunWithContextCloser(t *testing.T) {
	t.Run("cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		stop := make(chan struct{})
		closed := false
		cancel()
		err := RunWithContextCloser(ctx, closerFunc(func() error {
			closed = true
			close(stop)
			return nil
		}), func() error {
			<-stop
			return errors.New("closed")
		})
		require.ErrorIs(t, err, context.Canceled)
		require.True(t, closed)
	})
	t.Run("return", func(t *testing.T) {
		closed := false
		err := RunWithContextCloser(context.Background(), closerFunc(func() error {
			closed = true
			return nil
		}), func() error { return nil })
		require.NoError(t, err)
		require.True(t, closed)
	})
}

type testSource struct {
	queues map[records.Kind][]records.Record
}

func (s *testSource) LiveQueues() (kinds []records.Kind) {
	for _, k := range records.Kinds {
		if _, ok := s.queues[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return
}

func (s *testSource) Fetch(k records.Kind) (records.Record, bool) {
	q := s.queues[k]
	if len(q) == 0 {
		return nil, false
	}
	s.queues[k] = q[1:]
	return q[0], true
}

type namedSink struct {
	name string
	got  []Sample
	err  error
}

func (s *namedSink) Name() string { return s.name }

func (s *namedSink) Deliver(_ context.Context, sample Sample) error {
	s.got = append(s.got, sample)
	return s.err
}

func newTestSource() *testSource {
	return &testSource{queues: map[records.Kind][]records.Record{
		records.KindRaw: {records.Raw{PPG: [6]uint32{1}}, records.Raw{PPG: [6]uint32{2}}},
		records.KindScd: {records.Scd{State: records.SCDOnSkin}},
	}}
}

func TestSampleOnce(t *testing.T) {
	src := newTestSource()
	good := &namedSink{name: "good"}
	bad := &namedSink{name: "bad", err: errors.New("offline")}
	s := NewSampler(src, good, bad)
	now := time.Unix(100, 0)

	n, err := s.SampleOnce(context.Background(), now)
	require.Equal(t, 3, n)
	require.Error(t, err)
	var agg *AggregatedError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Errors, 3)
	require.Contains(t, err.Error(), "sink[bad] raw: offline")

	require.Len(t, good.got, 3)
	require.Len(t, bad.got, 3)
	require.Equal(t, now, good.got[0].Time)
	require.Equal(t, uint32(1), good.got[0].Record.(records.Raw).PPG[0])
	require.Equal(t, uint32(2), good.got[1].Record.(records.Raw).PPG[0])
	require.Equal(t, records.KindScd, good.got[2].Record.Kind())

	n, err = s.SampleOnce(context.Background(), now)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSampleOnceBatch(t *testing.T) {
	src := newTestSource()
	sink := &namedSink{name: "s"}
	s := NewSampler(src, sink)
	s.MaxBatch = 1

	n, err := s.SampleOnce(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	n, err = s.SampleOnce(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestSamplerRunTrigger(t *testing.T) {
	src := newTestSource()
	delivered := make(chan Sample, 8)
	s := NewSampler(src, SinkFunc(func(_ context.Context, sample Sample) error {
		delivered <- sample
		return nil
	}))
	s.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	s.TriggerNext()
	for i := 0; i < 3; i++ {
		select {
		case <-delivered:
		case <-time.After(time.Second):
			t.Fatal("sample not delivered")
		}
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
