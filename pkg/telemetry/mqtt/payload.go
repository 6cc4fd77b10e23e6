package mqtt

import (
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/opmode/pkg/opmode"
	"github.com/robotalks/opmode/pkg/telemetry"
)

// Payload field names.
const (
	FieldDevice   = "device"
	FieldMode     = "mode"
	FieldModeCode = "mode_code"
	FieldPosition = "position"
	FieldAt       = "at_unix_ms"
)

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func numberValue(n float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: n}}
}

// EncodeSample encodes a sample as a protobuf Struct.
func EncodeSample(s telemetry.Sample) ([]byte, error) {
	msg := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldDevice:   stringValue(s.Device),
			FieldMode:     stringValue(s.Mode.String()),
			FieldModeCode: numberValue(float64(s.Mode)),
			FieldPosition: numberValue(float64(s.Position)),
			FieldAt:       numberValue(float64(s.At.UnixNano() / int64(time.Millisecond))),
		},
	}
	return proto.Marshal(msg)
}

// DecodeSample decodes a payload created by EncodeSample.
func DecodeSample(payload []byte) (telemetry.Sample, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return telemetry.Sample{}, err
	}
	fields := msg.GetFields()
	code, ok := fields[FieldModeCode]
	if !ok {
		return telemetry.Sample{}, fmt.Errorf("missing field %s", FieldModeCode)
	}
	ms := int64(fields[FieldAt].GetNumberValue())
	return telemetry.Sample{
		Device:   fields[FieldDevice].GetStringValue(),
		Mode:     opmode.Mode(code.GetNumberValue()),
		Position: uint8(fields[FieldPosition].GetNumberValue()),
		At:       time.Unix(0, ms*int64(time.Millisecond)),
	}, nil
}
