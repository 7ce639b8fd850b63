package queue

import (
	"testing"

	"github.com/robotalks/sensorhub.go/pkg/hub/records"
	"github.com/stretchr/testify/require"
)

func scd(s records.SCDState) records.Scd {
	return records.Scd{State: s}
}

func rawWith(v uint32) records.Raw {
	var r records.Raw
	r.PPG[0] = v
	r.Accel[2] = -int16(v)
	return r
}

func TestCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		_, err := New[records.Scd](c, records.ScdCodec)
		require.Equal(t, ErrCapacity, err)
	}
}

func TestFIFOOrder(t *testing.T) {
	q, err := New[records.Raw](4, records.RawCodec)
	require.NoError(t, err)
	_, ok := q.Get()
	require.False(t, ok)

	for n := uint32(1); n <= 3; n++ {
		require.Zero(t, q.Put(rawWith(n)))
	}
	require.Equal(t, 3, q.Len())
	for n := uint32(1); n <= 3; n++ {
		r, ok := q.Get()
		require.True(t, ok)
		require.Equal(t, rawWith(n), r)
	}
	_, ok = q.Get()
	require.False(t, ok)
}

func TestWrapAround(t *testing.T) {
	q, err := New[records.Raw](3, records.RawCodec)
	require.NoError(t, err)
	for n := uint32(0); n < 20; n++ {
		require.Zero(t, q.Put(rawWith(n)))
		r, ok := q.Get()
		require.True(t, ok)
		require.Equal(t, rawWith(n), r)
	}
}

func TestOverflowPurgesEverything(t *testing.T) {
	q, err := New[records.Scd](3, records.ScdCodec)
	require.NoError(t, err)
	require.Zero(t, q.Put(scd(records.SCDOffSkin)))
	require.Zero(t, q.Put(scd(records.SCDOnObject)))
	require.Zero(t, q.Put(scd(records.SCDOnSkin)))
	require.Equal(t, 3, q.Len())

	// the full queue is emptied, not just its oldest record.
	require.Equal(t, 3, q.Put(scd(records.SCDUndetected)))
	require.Equal(t, 1, q.Len())
	require.Equal(t, uint64(3), q.Dropped())
	v, ok := q.Get()
	require.True(t, ok)
	require.Equal(t, scd(records.SCDUndetected), v)
	_, ok = q.Get()
	require.False(t, ok)
}

func TestPurge(t *testing.T) {
	q, err := New[records.Algo](2, records.AlgoCodec)
	require.NoError(t, err)
	q.Put(records.Algo{SCD: records.SCDOnSkin})
	require.Equal(t, 1, q.Purge())
	require.Zero(t, q.Len())
	require.Equal(t, 2, q.Cap())
	require.Zero(t, q.Dropped())
}
