package wire

import "math"

// Value is the decoded form of a single tag-prefixed value. It is the
// tagged union described in spec §3: scalars carry their payload inline in
// bits, byte-family values and typed arrays carry a zero-copy slice into
// the source buffer, and containers carry nothing beyond the Kind itself
// (the Reader must be iterated or skipped past their container_end).
//
// A Value never owns storage: Raw, when non-nil, aliases the buffer the
// Reader was constructed with and is valid only as long as that buffer is.
type Value struct {
	Kind Kind

	// Raw is the zero-copy payload for Bytes-family kinds (the string/blob
	// content) and, for TypedArray, the packed little-endian element bytes.
	Raw []byte

	bits  uint64 // integer magnitude, float bit pattern, or 0/1 for Bool
	neg   bool   // true for negative integer kinds
	Elem  ElemKind
	Count int
}

func NewNull() Value { return Value{Kind: Null} }

func NewBool(b bool) Value {
	v := Value{Kind: Bool}
	if b {
		v.bits = 1
	}
	return v
}

func NewUint(kind Kind, u uint64) Value {
	return Value{Kind: kind, bits: u}
}

func NewInt(kind Kind, i int64) Value {
	v := Value{Kind: kind}
	if i < 0 {
		v.neg = true
		v.bits = uint64(-i) // two's-complement wraparound on MinInt64 is well-defined and yields the correct magnitude
	} else {
		v.bits = uint64(i)
	}
	return v
}

// NewSignedMagnitude builds a var_int_signed_positive/negative value
// directly from its sign and magnitude, the only representation able to
// express i64::MIN (magnitude 2^63, which has no positive int64 counterpart).
func NewSignedMagnitude(negative bool, magnitude uint64) Value {
	kind := VarIntSignedPositive
	if negative {
		kind = VarIntSignedNegative
	}
	return Value{Kind: kind, bits: magnitude, neg: negative}
}

func NewFloat32(f float32) Value {
	return Value{Kind: F32, bits: uint64(math.Float32bits(f))}
}

func NewFloat64(f float64) Value {
	return Value{Kind: F64, bits: math.Float64bits(f)}
}

func NewBytes(kind Kind, raw []byte) Value {
	return Value{Kind: kind, Raw: raw}
}

func NewTypedArray(elem ElemKind, count int, raw []byte) Value {
	return Value{Kind: TypedArray, Elem: elem, Count: count, Raw: raw}
}

// Bool returns the value's boolean payload. Only meaningful for Kind == Bool.
func (v Value) Bool() bool { return v.bits != 0 }

// Uint64 returns the value's unsigned magnitude. Meaningful for U8/U16/U32/U64,
// SmallUint, and VarIntUnsigned.
func (v Value) Uint64() uint64 { return v.bits }

// Int64 returns the value's signed magnitude as an int64. Meaningful for
// I8/I16/I32/I64, SmallIntPositive/Negative, and VarIntSignedPositive/
// Negative; a VarIntSignedNegative magnitude of MinNegativeMagnitude
// decodes to exactly math.MinInt64.
func (v Value) Int64() int64 {
	switch v.Kind {
	case VarIntSignedPositive, VarIntSignedNegative:
		if v.neg {
			if v.bits == MinNegativeMagnitude {
				return math.MinInt64
			}
			return -int64(v.bits)
		}
		return int64(v.bits)
	case SmallIntNegative:
		return -int64(v.bits)
	default:
		if v.neg {
			return -int64(v.bits)
		}
		return int64(v.bits)
	}
}

// Float32 returns the value's bit pattern reinterpreted as a float32.
func (v Value) Float32() float32 { return math.Float32frombits(uint32(v.bits)) }

// Float64 returns the value's bit pattern reinterpreted as a float64.
func (v Value) Float64() float64 { return math.Float64frombits(v.bits) }

// IsSignedNegative reports whether v is a negative signed-kind value.
func (v Value) IsSignedNegative() bool { return v.neg }
