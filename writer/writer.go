// Package writer implements the tagwire Writer primitives described in
// spec §4.4: tag-dispatching emitters for every wire kind, plus WriteAny,
// the canonical host-value-to-narrowest-kind dispatcher that
// patch.NewUpdateAny builds on.
package writer

import (
	"math"

	"github.com/tagwire/tagwire/wire"
)

// Writer wraps a caller-owned Sink and exposes one emit method per wire
// kind. It holds no buffer of its own; every Write* call appends directly
// to the sink.
type Writer struct {
	sink Sink
}

// New creates a Writer that appends to sink.
func New(sink Sink) *Writer {
	return &Writer{sink: sink}
}

func (w *Writer) writeTag(k wire.Kind, data uint8) error {
	return w.sink.WriteByte(wire.EncodeTag(k, data))
}

func (w *Writer) writeLE(v uint64, n int) error {
	var buf [8]byte
	for i := 0; i < n; i++ {
		buf[i] = byte(v)
		v >>= 8
	}
	return w.sink.WriteAll(buf[:n])
}

// WriteNull emits a null value.
func (w *Writer) WriteNull() error {
	return w.writeTag(wire.Null, 0)
}

// WriteBool emits an inline boolean.
func (w *Writer) WriteBool(b bool) error {
	var data uint8
	if b {
		data = 1
	}
	return w.writeTag(wire.Bool, data)
}

// StartObject emits an object's open marker. The caller must later call
// EndContainer.
func (w *Writer) StartObject() error {
	return w.writeTag(wire.Object, 0)
}

// StartArray emits an array's open marker. The caller must later call
// EndContainer.
func (w *Writer) StartArray() error {
	return w.writeTag(wire.Array, 0)
}

// EndContainer emits the container_end sentinel closing the innermost
// open object or array.
func (w *Writer) EndContainer() error {
	return w.writeTag(wire.ContainerEnd, 0)
}

// WriteFixedUint emits v using one of the fixed-width unsigned kinds
// (U8/U16/U32/U64), which WriteAny never selects on its own -- fixed-width
// kinds are only produced when the caller explicitly asks for them.
func (w *Writer) WriteFixedUint(kind wire.Kind, v uint64) error {
	n, ok := fixedUintSize(kind)
	if !ok {
		return wireErrNotFixedUint(kind)
	}
	if err := w.writeTag(kind, 0); err != nil {
		return err
	}
	return w.writeLE(v, n)
}

// WriteFixedInt emits v using one of the fixed-width signed kinds
// (I8/I16/I32/I64).
func (w *Writer) WriteFixedInt(kind wire.Kind, v int64) error {
	n, ok := fixedIntSize(kind)
	if !ok {
		return wireErrNotFixedInt(kind)
	}
	if err := w.writeTag(kind, 0); err != nil {
		return err
	}
	return w.writeLE(uint64(v), n)
}

// WriteF32 emits a 32-bit IEEE float.
func (w *Writer) WriteF32(f float32) error {
	if err := w.writeTag(wire.F32, 0); err != nil {
		return err
	}
	return w.writeLE(uint64(math.Float32bits(f)), 4)
}

// WriteF64 emits a 64-bit IEEE float.
func (w *Writer) WriteF64(f float64) error {
	if err := w.writeTag(wire.F64, 0); err != nil {
		return err
	}
	return w.writeLE(math.Float64bits(f), 8)
}

// WriteF16 emits a 16-bit IEEE float, converted from f32 with round-to-nearest.
func (w *Writer) WriteF16(f float32) error {
	if err := w.writeTag(wire.F16, 0); err != nil {
		return err
	}
	return w.writeLE(uint64(wire.Float32ToFloat16(f)), 2)
}

// WriteUint emits v in its canonical form: the inline small_uint form when
// v fits in [0,7], otherwise the narrowest var_int_unsigned.
func (w *Writer) WriteUint(v uint64) error {
	if v <= 7 {
		return w.writeTag(wire.SmallUint, uint8(v))
	}
	n := wire.VarintSize(v)
	if err := w.writeTag(wire.VarIntUnsigned, uint8(n-1)); err != nil {
		return err
	}
	return w.writeLE(v, n)
}

// WriteInt emits v in its canonical form: small_uint(0) for zero,
// small_int_positive for 1..7, small_int_negative for -1..-7, otherwise the
// narrowest var_int_signed_positive/negative.
func (w *Writer) WriteInt(v int64) error {
	switch {
	case v == 0:
		return w.writeTag(wire.SmallUint, 0)
	case v > 0 && v <= 7:
		return w.writeTag(wire.SmallIntPositive, uint8(v))
	case v < 0 && v >= -7:
		return w.writeTag(wire.SmallIntNegative, uint8(-v))
	case v > 0:
		return w.writeSignedMagnitude(false, uint64(v))
	case v == -1<<63:
		return w.writeSignedMagnitude(true, wire.MinNegativeMagnitude)
	default:
		return w.writeSignedMagnitude(true, uint64(-v))
	}
}

func (w *Writer) writeSignedMagnitude(negative bool, magnitude uint64) error {
	kind := wire.VarIntSignedPositive
	if negative {
		kind = wire.VarIntSignedNegative
	}
	n := wire.VarintSize(magnitude)
	if err := w.writeTag(kind, uint8(n-1)); err != nil {
		return err
	}
	return w.writeLE(magnitude, n)
}

// WriteBytes emits raw in its canonical form: small_bytes for length <= 7,
// otherwise var_int_bytes with the narrowest length-of-length. This is used
// for both object keys and blob-typed values -- both are bytes-family.
func (w *Writer) WriteBytes(raw []byte) error {
	if len(raw) <= 7 {
		if err := w.writeTag(wire.SmallBytes, uint8(len(raw))); err != nil {
			return err
		}
		return w.sink.WriteAll(raw)
	}

	n := wire.VarintSize(uint64(len(raw)))
	if err := w.writeTag(wire.VarIntBytes, uint8(n-1)); err != nil {
		return err
	}
	if err := w.writeLE(uint64(len(raw)), n); err != nil {
		return err
	}
	return w.sink.WriteAll(raw)
}

// WriteBytesFixed emits raw using the fixed 8-byte-length-prefixed Bytes
// kind rather than the canonical var_int_bytes form. spec §3 reserves this
// form for payloads >= 2^56 or callers that otherwise opt out of the
// varint-length form.
func (w *Writer) WriteBytesFixed(raw []byte) error {
	if err := w.writeTag(wire.Bytes, 0); err != nil {
		return err
	}
	if err := w.writeLE(uint64(len(raw)), 8); err != nil {
		return err
	}
	return w.sink.WriteAll(raw)
}

// WriteRaw copies b to the sink byte-for-byte, bypassing all tag logic.
// The patch engine uses this to copy untouched subtrees verbatim.
func (w *Writer) WriteRaw(b []byte) error {
	return w.sink.WriteAll(b)
}

// WriteTypedArray emits a typed_array value for a packed little-endian
// payload of count elements of kind elem. raw must already be exactly
// count*elem.Size() bytes; use the wire.AppendUint*Array helpers to build it.
func (w *Writer) WriteTypedArray(elem wire.ElemKind, count int, raw []byte) error {
	if len(raw) != count*elem.Size() {
		return wireErrTypedArrayLength(count, elem, len(raw))
	}
	if err := w.writeTag(wire.TypedArray, 0); err != nil {
		return err
	}
	if err := w.sink.WriteByte(byte(elem)); err != nil {
		return err
	}
	// The count is written as an ordinary canonical unsigned value (its own
	// small_uint/var_int_unsigned tag byte), reusing the varint machinery
	// rather than inventing a typed_array-specific length encoding.
	if err := w.WriteUint(uint64(count)); err != nil {
		return err
	}
	return w.sink.WriteAll(raw)
}

func fixedUintSize(k wire.Kind) (int, bool) {
	switch k {
	case wire.U8:
		return 1, true
	case wire.U16:
		return 2, true
	case wire.U32:
		return 4, true
	case wire.U64:
		return 8, true
	default:
		return 0, false
	}
}

func fixedIntSize(k wire.Kind) (int, bool) {
	switch k {
	case wire.I8:
		return 1, true
	case wire.I16:
		return 2, true
	case wire.I32:
		return 4, true
	case wire.I64:
		return 8, true
	default:
		return 0, false
	}
}
