package msgs

import (
	"github.com/golang/protobuf/proto"
)

// HubInfo describes a hub instance.
type HubInfo struct {
	HubId        string `protobuf:"bytes,1,opt,name=hub_id,json=hubId,proto3" json:"hub_id,omitempty"`
	Firmware     string `protobuf:"bytes,2,opt,name=firmware,proto3" json:"firmware,omitempty"`
	Afe          uint32 `protobuf:"varint,3,opt,name=afe,proto3" json:"afe,omitempty"`
	Accel        uint32 `protobuf:"varint,4,opt,name=accel,proto3" json:"accel,omitempty"`
	Mode         string `protobuf:"bytes,5,opt,name=mode,proto3" json:"mode,omitempty"`
	ReportFormat string `protobuf:"bytes,6,opt,name=report_format,json=reportFormat,proto3" json:"report_format,omitempty"`
}

// Reset implements proto.Message.
func (m *HubInfo) Reset() { *m = HubInfo{} }

// String implements proto.Message.
func (m *HubInfo) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*HubInfo) ProtoMessage() {}

// TypeID implements Message.
func (*HubInfo) TypeID() uint32 { return HubInfoTypeID }

// NewMessage implements Message.
func (*HubInfo) NewMessage() Message { return &HubInfo{} }

// RawSample is a raw sensor sample.
type RawSample struct {
	Ppg   []uint32 `protobuf:"varint,1,rep,packed,name=ppg,proto3" json:"ppg,omitempty"`
	Accel []int32  `protobuf:"zigzag32,2,rep,packed,name=accel,proto3" json:"accel,omitempty"`
}

// Reset implements proto.Message.
func (m *RawSample) Reset() { *m = RawSample{} }

// String implements proto.Message.
func (m *RawSample) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*RawSample) ProtoMessage() {}

// TypeID implements Message.
func (*RawSample) TypeID() uint32 { return RawSampleTypeID }

// NewMessage implements Message.
func (*RawSample) NewMessage() Message { return &RawSample{} }

// SpO2 is the blood oxygen section of a report.
type SpO2 struct {
	R                uint32 `protobuf:"varint,1,opt,name=r,proto3" json:"r,omitempty"`
	Confidence       uint32 `protobuf:"varint,2,opt,name=confidence,proto3" json:"confidence,omitempty"`
	Value            uint32 `protobuf:"varint,3,opt,name=value,proto3" json:"value,omitempty"`
	Complete         uint32 `protobuf:"varint,4,opt,name=complete,proto3" json:"complete,omitempty"`
	LowSignalQuality bool   `protobuf:"varint,5,opt,name=low_signal_quality,json=lowSignalQuality,proto3" json:"low_signal_quality,omitempty"`
	Motion           bool   `protobuf:"varint,6,opt,name=motion,proto3" json:"motion,omitempty"`
	LowPi            bool   `protobuf:"varint,7,opt,name=low_pi,json=lowPi,proto3" json:"low_pi,omitempty"`
	Unreliable       bool   `protobuf:"varint,8,opt,name=unreliable,proto3" json:"unreliable,omitempty"`
	State            uint32 `protobuf:"varint,9,opt,name=state,proto3" json:"state,omitempty"`
}

// Reset implements proto.Message.
func (m *SpO2) Reset() { *m = SpO2{} }

// String implements proto.Message.
func (m *SpO2) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*SpO2) ProtoMessage() {}

// Counters are cumulative activity counters.
type Counters struct {
	WalkSteps    uint32 `protobuf:"varint,1,opt,name=walk_steps,json=walkSteps,proto3" json:"walk_steps,omitempty"`
	RunSteps     uint32 `protobuf:"varint,2,opt,name=run_steps,json=runSteps,proto3" json:"run_steps,omitempty"`
	Energy       uint32 `protobuf:"varint,3,opt,name=energy,proto3" json:"energy,omitempty"`
	ActiveEnergy uint32 `protobuf:"varint,4,opt,name=active_energy,json=activeEnergy,proto3" json:"active_energy,omitempty"`
}

// Reset implements proto.Message.
func (m *Counters) Reset() { *m = Counters{} }

// String implements proto.Message.
func (m *Counters) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Counters) ProtoMessage() {}

// AlgoReport is a normal or extended algorithm report.
type AlgoReport struct {
	OpMode                uint32    `protobuf:"varint,1,opt,name=op_mode,json=opMode,proto3" json:"op_mode,omitempty"`
	HeartRate             uint32    `protobuf:"varint,2,opt,name=heart_rate,json=heartRate,proto3" json:"heart_rate,omitempty"`
	HeartRateConfidence   uint32    `protobuf:"varint,3,opt,name=heart_rate_confidence,json=heartRateConfidence,proto3" json:"heart_rate_confidence,omitempty"`
	RespirationRate       uint32    `protobuf:"varint,4,opt,name=respiration_rate,json=respirationRate,proto3" json:"respiration_rate,omitempty"`
	RespirationConfidence uint32    `protobuf:"varint,5,opt,name=respiration_confidence,json=respirationConfidence,proto3" json:"respiration_confidence,omitempty"`
	Activity              uint32    `protobuf:"varint,6,opt,name=activity,proto3" json:"activity,omitempty"`
	Spo2                  *SpO2     `protobuf:"bytes,7,opt,name=spo2,proto3" json:"spo2,omitempty"`
	Scd                   uint32    `protobuf:"varint,8,opt,name=scd,proto3" json:"scd,omitempty"`
	Extended              bool      `protobuf:"varint,9,opt,name=extended,proto3" json:"extended,omitempty"`
	Counters              *Counters `protobuf:"bytes,10,opt,name=counters,proto3" json:"counters,omitempty"`
	LedAdjustments        []uint32  `protobuf:"varint,11,rep,packed,name=led_adjustments,json=ledAdjustments,proto3" json:"led_adjustments,omitempty"`
}

// Reset implements proto.Message.
func (m *AlgoReport) Reset() { *m = AlgoReport{} }

// String implements proto.Message.
func (m *AlgoReport) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*AlgoReport) ProtoMessage() {}

// TypeID implements Message.
func (*AlgoReport) TypeID() uint32 { return AlgoReportTypeID }

// NewMessage implements Message.
func (*AlgoReport) NewMessage() Message { return &AlgoReport{} }

// ScdState is the skin contact state.
type ScdState struct {
	State uint32 `protobuf:"varint,1,opt,name=state,proto3" json:"state,omitempty"`
}

// Reset implements proto.Message.
func (m *ScdState) Reset() { *m = ScdState{} }

// String implements proto.Message.
func (m *ScdState) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*ScdState) ProtoMessage() {}

// TypeID implements Message.
func (*ScdState) TypeID() uint32 { return ScdStateTypeID }

// NewMessage implements Message.
func (*ScdState) NewMessage() Message { return &ScdState{} }
