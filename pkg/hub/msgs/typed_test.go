package msgs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

func TestFromRecord(t *testing.T) {
	raw := records.Raw{PPG: [6]uint32{1, 2, 3, 4, 5, 0xffffff}, Accel: [3]int16{-1, 0, 1}}
	msg, err := FromRecord(raw)
	require.NoError(t, err)
	require.Equal(t, &RawSample{Ppg: []uint32{1, 2, 3, 4, 5, 0xffffff}, Accel: []int32{-1, 0, 1}}, msg)

	ext := records.AlgoExtended{SCD: records.SCDOnSkin}
	ext.HeartRate = 600
	ext.Counters.RunSteps = 12
	ext.Adjustments.LED[1] = records.Adjustment{Requested: true, Value: 9}
	ext.Adjustments.LED[2] = records.Adjustment{Value: 4}
	msg, err = FromRecord(ext)
	require.NoError(t, err)
	report := msg.(*AlgoReport)
	require.True(t, report.Extended)
	require.Equal(t, uint32(600), report.HeartRate)
	require.Equal(t, uint32(12), report.Counters.RunSteps)
	require.Equal(t, []uint32{0, 9, 0}, report.LedAdjustments)
	require.Equal(t, uint32(records.SCDOnSkin), report.Scd)
}

func TestEnvelope(t *testing.T) {
	ts := time.Unix(100, 5)
	algo := records.Algo{SpO2: records.SpO2{Value: 965, Motion: true}}
	algo.HeartRate = 725
	env, err := WrapRecord("hub-1", ts, algo)
	require.NoError(t, err)
	require.True(t, env.IsEvent())

	data, err := env.Encode()
	require.NoError(t, err)
	decoded, err := DecodeEnvelope(data)
	require.NoError(t, err)
	require.Equal(t, "hub-1", decoded.HubId)
	require.True(t, ts.Equal(decoded.Time()))
	require.Equal(t, AlgoReportTypeID, decoded.TypeId)

	msg, err := decoded.Decode()
	require.NoError(t, err)
	report := msg.(*AlgoReport)
	require.Equal(t, uint32(725), report.HeartRate)
	require.Equal(t, uint32(965), report.Spo2.Value)
	require.True(t, report.Spo2.Motion)
	require.False(t, report.Extended)
}

func TestEnvelopeUnknownType(t *testing.T) {
	env := &Envelope{TypeId: TypeIDKindEvent | 0x7777}
	_, err := env.Decode()
	require.IsType(t, &ErrUnknownType{}, err)

	info, err := Wrap("hub-2", time.Now(), &HubInfo{Firmware: "30.1.4"})
	require.NoError(t, err)
	require.False(t, info.IsEvent())
}

func TestUnsupportedRecord(t *testing.T) {
	_, err := FromRecord(nil)
	require.Equal(t, ErrUnsupportedRecord, err)
}
