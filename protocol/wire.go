package protocol

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// This file provides small, generic helpers over protowire's primitive
// varint/tag/length-delimited encoding, shared by every message type in
// messages.go. Each message hand-writes its own Marshal/Unmarshal using
// these helpers rather than through generated code or descriptor
// reflection: the 4-byte length-prefixed framing (see frame.go) is not
// protobuf's own delimited-stream convention, so a generated "read one
// delimited message" helper would assume the wrong framing. Hand-rolling
// the message bodies themselves (still using protowire for the actual
// varint/tag math) keeps the whole codec honest about that distinction.

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarintField(b, num, 1)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendDoubleField(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendMessageField(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// fieldVisitor is called once per top-level field encountered while
// walking a message payload. raw holds the field's undecoded value bytes:
// the varint (as a uint64), the raw 8/4 bytes of a fixed64/fixed32, or the
// inner bytes of a length-delimited field (string/bytes/submessage).
type fieldVisitor func(num protowire.Number, typ protowire.Type, raw []byte) error

// walkFields decodes data as a flat sequence of protobuf fields, invoking
// visit for each one. It is the shared decode loop for every Unmarshal in
// messages.go.
func walkFields(data []byte, visit fieldVisitor) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("protocol: invalid field tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		var raw []byte
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("protocol: invalid varint field %d: %w", num, protowire.ParseError(n))
			}
			raw = protowire.AppendVarint(nil, v)
			data = data[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return fmt.Errorf("protocol: invalid fixed64 field %d: %w", num, protowire.ParseError(n))
			}
			raw = protowire.AppendFixed64(nil, v)
			data = data[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return fmt.Errorf("protocol: invalid fixed32 field %d: %w", num, protowire.ParseError(n))
			}
			raw = protowire.AppendFixed32(nil, v)
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("protocol: invalid bytes field %d: %w", num, protowire.ParseError(n))
			}
			raw = append([]byte(nil), v...)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("protocol: invalid field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		if err := visit(num, typ, raw); err != nil {
			return err
		}
	}
	return nil
}

func varintFromRaw(raw []byte) uint64 {
	v, _ := protowire.ConsumeVarint(raw)
	return v
}

func stringFromRaw(raw []byte) string { return string(raw) }

func doubleFromRaw(raw []byte) float64 {
	v, _ := protowire.ConsumeFixed64(raw)
	return math.Float64frombits(v)
}
