package msgs

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/sensorhub.go/pkg/hub/records"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
)

// Message Kinds
const (
	TypeIDKindState uint32 = 0x00000000
	TypeIDKindEvent uint32 = 0x80000000
)

// Type IDs
const (
	TypeIDGroupHub uint32 = 0x00010000

	HubInfoTypeID    = TypeIDKindState | TypeIDGroupHub | 0x0001
	RawSampleTypeID  = TypeIDKindEvent | TypeIDGroupHub | 0x0010
	AlgoReportTypeID = TypeIDKindEvent | TypeIDGroupHub | 0x0011
	ScdStateTypeID   = TypeIDKindEvent | TypeIDGroupHub | 0x0012
)

// Message is a protobuf message with a registered type ID.
type Message interface {
	proto.Message
	TypeID() uint32
	NewMessage() Message
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// ErrUnsupportedRecord indicates a record without a message mapping.
var ErrUnsupportedRecord = errors.New("unsupported record")

// MessageTypes are predefined mapping of type ID to messages.
var MessageTypes = map[uint32]Message{
	HubInfoTypeID:    (*HubInfo)(nil),
	RawSampleTypeID:  (*RawSample)(nil),
	AlgoReportTypeID: (*AlgoReport)(nil),
	ScdStateTypeID:   (*ScdState)(nil),
}

// Envelope wraps a message with type and origin.
type Envelope struct {
	TypeId    uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	HubId     string `protobuf:"bytes,2,opt,name=hub_id,json=hubId,proto3" json:"hub_id,omitempty"`
	Timestamp int64  `protobuf:"varint,3,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Message   []byte `protobuf:"bytes,4,opt,name=message,proto3" json:"message,omitempty"`
}

// Reset implements proto.Message.
func (m *Envelope) Reset() { *m = Envelope{} }

// String implements proto.Message.
func (m *Envelope) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Envelope) ProtoMessage() {}

// Wrap creates an Envelope from a message.
func Wrap(hubID string, ts time.Time, msg Message) (*Envelope, error) {
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		TypeId:    msg.TypeID(),
		HubId:     hubID,
		Timestamp: ts.UnixNano(),
		Message:   data,
	}, nil
}

// Decode decodes the wrapped message.
func (m *Envelope) Decode() (Message, error) {
	msgType, ok := MessageTypes[m.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: m.TypeId}
	}
	msg := msgType.NewMessage()
	if err := proto.Unmarshal(m.Message, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Encode encodes the Envelope to bytes.
func (m *Envelope) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// Time returns the timestamp.
func (m *Envelope) Time() time.Time {
	return time.Unix(0, m.Timestamp)
}

// IsEvent determines if the message is an event.
func (m *Envelope) IsEvent() bool {
	return m.TypeId&TypeIDMaskKind == TypeIDKindEvent
}

// DecodeEnvelope decodes bytes into Envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := proto.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func spo2From(s records.SpO2) *SpO2 {
	return &SpO2{
		R:                uint32(s.R),
		Confidence:       uint32(s.Confidence),
		Value:            uint32(s.Value),
		Complete:         uint32(s.Complete),
		LowSignalQuality: s.LowSignalQuality,
		Motion:           s.Motion,
		LowPi:            s.LowPI,
		Unreliable:       s.Unreliable,
		State:            uint32(s.State),
	}
}

func reportFrom(v records.Vitals) *AlgoReport {
	return &AlgoReport{
		OpMode:                uint32(v.OpMode),
		HeartRate:             uint32(v.HeartRate),
		HeartRateConfidence:   uint32(v.HeartRateConfidence),
		RespirationRate:       uint32(v.RespirationRate),
		RespirationConfidence: uint32(v.RespirationConfidence),
		Activity:              uint32(v.Activity),
	}
}

// FromRecord converts a decoded record into its message.
func FromRecord(rec records.Record) (Message, error) {
	switch r := rec.(type) {
	case records.Raw:
		msg := &RawSample{Ppg: make([]uint32, len(r.PPG)), Accel: make([]int32, len(r.Accel))}
		copy(msg.Ppg, r.PPG[:])
		for n, v := range r.Accel {
			msg.Accel[n] = int32(v)
		}
		return msg, nil
	case records.Algo:
		msg := reportFrom(r.Vitals)
		msg.Spo2 = spo2From(r.SpO2)
		msg.Scd = uint32(r.SCD)
		return msg, nil
	case records.AlgoExtended:
		msg := reportFrom(r.Vitals)
		msg.Spo2 = spo2From(r.SpO2)
		msg.Scd = uint32(r.SCD)
		msg.Extended = true
		msg.Counters = &Counters{
			WalkSteps:    r.Counters.WalkSteps,
			RunSteps:     r.Counters.RunSteps,
			Energy:       r.Counters.Energy,
			ActiveEnergy: r.Counters.ActiveEnergy,
		}
		for _, adj := range r.Adjustments.LED {
			var v uint32
			if adj.Requested {
				v = uint32(adj.Value)
			}
			msg.LedAdjustments = append(msg.LedAdjustments, v)
		}
		return msg, nil
	case records.Scd:
		return &ScdState{State: uint32(r.State)}, nil
	}
	return nil, ErrUnsupportedRecord
}

// WrapRecord converts rec and wraps it into an Envelope.
func WrapRecord(hubID string, ts time.Time, rec records.Record) (*Envelope, error) {
	msg, err := FromRecord(rec)
	if err != nil {
		return nil, err
	}
	return Wrap(hubID, ts, msg)
}
