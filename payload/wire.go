package payload

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// unmarshal walks the top-level protobuf fields of data and hands each one
// to apply. Varint, fixed32, and fixed64 values arrive in v; length-prefixed
// values arrive in raw. Fields apply does not recognize are simply ignored,
// matching protobuf unknown-field semantics. Only malformed wire data
// errors.
func unmarshal(data []byte, apply func(num protowire.Number, typ protowire.Type, v uint64, raw []byte)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		var (
			v   uint64
			raw []byte
		)
		switch typ {
		case protowire.VarintType:
			v, n = protowire.ConsumeVarint(data)
		case protowire.Fixed32Type:
			var v32 uint32
			v32, n = protowire.ConsumeFixed32(data)
			v = uint64(v32)
		case protowire.Fixed64Type:
			v, n = protowire.ConsumeFixed64(data)
		case protowire.BytesType:
			raw, n = protowire.ConsumeBytes(data)
		default:
			// Groups and future wire types: skip the whole field.
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}

		apply(num, typ, v, raw)
		data = data[n:]
	}
	return nil
}

// asBool interprets a varint as a protobuf bool.
func asBool(v uint64) bool {
	return v != 0
}

// asInt32 interprets a varint as a protobuf int32 (sign-extended varint).
func asInt32(v uint64) int32 {
	return int32(v)
}

// appendVarint appends a varint-typed field. Zero values are omitted, the
// proto3 convention, so absent and zero round-trip identically.
func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendBool appends a bool field (omitted when false).
func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

// appendInt32 appends an int32 field (omitted when zero). Negative values
// sign-extend to the full 10-byte varint, as protobuf requires.
func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

// appendString appends a string field (omitted when empty).
func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}
