package records

import (
	"encoding/binary"
	"fmt"
)

// Algorithm report sizes.
const (
	vitalsSize       = 8
	spo2Size         = 11
	countersSize     = 16
	adjustmentsSize  = 15
	AlgoSize         = vitalsSize + spo2Size + 1
	AlgoExtendedSize = 56
)

// Activity is the activity classification.
type Activity uint8

// Activity classes.
const (
	ActivityRest Activity = iota
	ActivityOther
	ActivityWalk
	ActivityRun
	ActivityBike
)

var activityNames = []string{"rest", "other", "walk", "run", "bike"}

// String implements fmt.Stringer.
func (a Activity) String() string {
	if int(a) < len(activityNames) {
		return activityNames[a]
	}
	return fmt.Sprintf("activity(%d)", uint8(a))
}

// Vitals is the leading heart and respiration section of every report.
type Vitals struct {
	OpMode uint8
	// HeartRate in 0.1 bpm.
	HeartRate           uint16
	HeartRateConfidence uint8
	// RespirationRate in 0.1 breaths per minute.
	RespirationRate       uint16
	RespirationConfidence uint8
	Activity              Activity
}

// HeartRateBPM returns the heart rate in bpm.
func (v Vitals) HeartRateBPM() float64 { return float64(v.HeartRate) / 10 }

// RespirationRatePM returns the respiration rate per minute.
func (v Vitals) RespirationRatePM() float64 { return float64(v.RespirationRate) / 10 }

func (v *Vitals) decode(b []byte) {
	v.OpMode = b[0]
	v.HeartRate = binary.BigEndian.Uint16(b[1:])
	v.HeartRateConfidence = b[3]
	v.RespirationRate = binary.BigEndian.Uint16(b[4:])
	v.RespirationConfidence = b[6]
	v.Activity = Activity(b[7])
}

func (v Vitals) encode(b []byte) {
	b[0] = v.OpMode
	binary.BigEndian.PutUint16(b[1:], v.HeartRate)
	b[3] = v.HeartRateConfidence
	binary.BigEndian.PutUint16(b[4:], v.RespirationRate)
	b[6] = v.RespirationConfidence
	b[7] = byte(v.Activity)
}

// SpO2 is the blood oxygen section of a report.
type SpO2 struct {
	// R is the ratio in 0.001 units.
	R          uint16
	Confidence uint8
	// Value in 0.1 percent.
	Value            uint16
	Complete         uint8
	LowSignalQuality bool
	Motion           bool
	LowPI            bool
	Unreliable       bool
	State            uint8
}

// Percent returns the saturation in percent.
func (s SpO2) Percent() float64 { return float64(s.Value) / 10 }

// Ratio returns R as a float.
func (s SpO2) Ratio() float64 { return float64(s.R) / 1000 }

func (s *SpO2) decode(b []byte) {
	s.R = binary.BigEndian.Uint16(b)
	s.Confidence = b[2]
	s.Value = binary.BigEndian.Uint16(b[3:])
	s.Complete = b[5]
	s.LowSignalQuality = flag(b[6])
	s.Motion = flag(b[7])
	s.LowPI = flag(b[8])
	s.Unreliable = flag(b[9])
	s.State = b[10]
}

func (s SpO2) encode(b []byte) {
	binary.BigEndian.PutUint16(b, s.R)
	b[2] = s.Confidence
	binary.BigEndian.PutUint16(b[3:], s.Value)
	b[5] = s.Complete
	b[6] = flagByte(s.LowSignalQuality)
	b[7] = flagByte(s.Motion)
	b[8] = flagByte(s.LowPI)
	b[9] = flagByte(s.Unreliable)
	b[10] = s.State
}

// Algo is the normal algorithm report.
type Algo struct {
	Vitals
	SpO2 SpO2
	SCD  SCDState
}

// Kind implements Record.
func (Algo) Kind() Kind { return KindReport }

// DecodeAlgo decodes an Algo record from the start of b.
func DecodeAlgo(b []byte) (a Algo, err error) {
	if err = checkLen(KindReport, b, AlgoSize); err != nil {
		return
	}
	a.Vitals.decode(b)
	a.SpO2.decode(b[vitalsSize:])
	a.SCD = SCDState(b[vitalsSize+spo2Size])
	return
}

// Encode writes the wire form into b[:AlgoSize].
func (a Algo) Encode(b []byte) {
	a.Vitals.encode(b)
	a.SpO2.encode(b[vitalsSize:])
	b[vitalsSize+spo2Size] = byte(a.SCD)
}

// Counters are cumulative activity counters.
type Counters struct {
	WalkSteps uint32
	RunSteps  uint32
	// Energy and ActiveEnergy in 0.1 kcal.
	Energy       uint32
	ActiveEnergy uint32
}

// Adjustment is an auto-gain request for one LED.
type Adjustment struct {
	Requested bool
	Value     uint16
}

// Adjustments are the auto-gain requests reported by the algorithm.
type Adjustments struct {
	LED                      [3]Adjustment
	IntegrationTimeRequested bool
	IntegrationTime          uint8
	SamplingRateRequested    bool
	SamplingRate             uint8
	SamplingAverageRequested bool
	SamplingAverage          uint8
}

// AlgoExtended is the extended algorithm report.
type AlgoExtended struct {
	Vitals
	Counters              Counters
	Adjustments           Adjustments
	SCD                   SCDState
	SpO2                  SpO2
	IBIOffset             uint8
	UnreliableOrientation bool
}

// Kind implements Record.
func (AlgoExtended) Kind() Kind { return KindExtendedReport }

const (
	extCounters    = vitalsSize
	extAdjustments = extCounters + countersSize
	extSCD         = extAdjustments + adjustmentsSize
	extSpO2        = extSCD + 1
	extIBI         = extSpO2 + spo2Size
	extOrientation = extIBI + 1
)

// DecodeAlgoExtended decodes an AlgoExtended record from the start of b.
func DecodeAlgoExtended(b []byte) (a AlgoExtended, err error) {
	if err = checkLen(KindExtendedReport, b, AlgoExtendedSize); err != nil {
		return
	}
	a.Vitals.decode(b)
	c := b[extCounters:]
	a.Counters = Counters{
		WalkSteps:    binary.BigEndian.Uint32(c),
		RunSteps:     binary.BigEndian.Uint32(c[4:]),
		Energy:       binary.BigEndian.Uint32(c[8:]),
		ActiveEnergy: binary.BigEndian.Uint32(c[12:]),
	}
	adj := b[extAdjustments:]
	for n := range a.Adjustments.LED {
		a.Adjustments.LED[n] = Adjustment{
			Requested: flag(adj[n*3]),
			Value:     binary.BigEndian.Uint16(adj[n*3+1:]),
		}
	}
	a.Adjustments.IntegrationTimeRequested = flag(adj[9])
	a.Adjustments.IntegrationTime = adj[10]
	a.Adjustments.SamplingRateRequested = flag(adj[11])
	a.Adjustments.SamplingRate = adj[12]
	a.Adjustments.SamplingAverageRequested = flag(adj[13])
	a.Adjustments.SamplingAverage = adj[14]
	a.SCD = SCDState(b[extSCD])
	a.SpO2.decode(b[extSpO2:])
	a.IBIOffset = b[extIBI]
	a.UnreliableOrientation = flag(b[extOrientation])
	return
}

// Encode writes the wire form into b[:AlgoExtendedSize].
func (a AlgoExtended) Encode(b []byte) {
	for n := range b[:AlgoExtendedSize] {
		b[n] = 0
	}
	a.Vitals.encode(b)
	c := b[extCounters:]
	binary.BigEndian.PutUint32(c, a.Counters.WalkSteps)
	binary.BigEndian.PutUint32(c[4:], a.Counters.RunSteps)
	binary.BigEndian.PutUint32(c[8:], a.Counters.Energy)
	binary.BigEndian.PutUint32(c[12:], a.Counters.ActiveEnergy)
	adj := b[extAdjustments:]
	for n, l := range a.Adjustments.LED {
		adj[n*3] = flagByte(l.Requested)
		binary.BigEndian.PutUint16(adj[n*3+1:], l.Value)
	}
	adj[9] = flagByte(a.Adjustments.IntegrationTimeRequested)
	adj[10] = a.Adjustments.IntegrationTime
	adj[11] = flagByte(a.Adjustments.SamplingRateRequested)
	adj[12] = a.Adjustments.SamplingRate
	adj[13] = flagByte(a.Adjustments.SamplingAverageRequested)
	adj[14] = a.Adjustments.SamplingAverage
	b[extSCD] = byte(a.SCD)
	a.SpO2.encode(b[extSpO2:])
	b[extIBI] = a.IBIOffset
	b[extOrientation] = flagByte(a.UnreliableOrientation)
}
