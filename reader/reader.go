// Package reader implements the tagwire Reader described in spec §4.2: a
// forward-only cursor over an encoded buffer that reads, skips, or
// iterates values with optional depth/size limits and zero allocation
// when those limits are disabled.
package reader

import (
	"math"

	rerrors "github.com/tagwire/tagwire/internal/errors"
	"github.com/tagwire/tagwire/wire"
)

// Reader is a cursor (buffer, pos, depth) plus an optional per-depth
// iteration-count stack. Values it yields whose payload is a byte slice
// alias the buffer it was constructed with; they are valid for as long as
// that buffer is.
type Reader struct {
	buf    []byte
	pos    int
	depth  int
	limits Limits

	// counters holds one entry per currently-open container, pushed when
	// its open tag is read and popped at its container_end. It is only
	// ever allocated when a counting limit (MaxArrayLength/MaxObjectSize)
	// is configured.
	counters []int
}

// New constructs a Reader over buf with the given limits.
func New(buf []byte, opts ...Option) *Reader {
	var l Limits
	for _, o := range opts {
		o(&l)
	}
	return &Reader{buf: buf, limits: l}
}

// Pos returns the cursor's current byte offset into the source buffer.
func (r *Reader) Pos() int { return r.pos }

// Buf returns the source buffer the Reader was constructed over.
func (r *Reader) Buf() []byte { return r.buf }

// Depth returns the Reader's current container nesting depth.
func (r *Reader) Depth() int { return r.depth }

// AtEnd reports whether the cursor has consumed the entire buffer.
func (r *Reader) AtEnd() bool { return r.pos >= len(r.buf) }

func (r *Reader) need(n int) error {
	if n < 0 || n > len(r.buf)-r.pos {
		return ErrUnexpectedEOF
	}
	return nil
}

// Read advances past exactly one value and returns its decoded form. For
// containers, only the open marker is consumed -- the caller must iterate
// with NextObjectEntry/NextArrayElement or skip past its container_end.
func (r *Reader) Read() (wire.Value, error) {
	v, err := r.step()
	if err != nil {
		return v, err
	}

	switch v.Kind {
	case wire.Object, wire.Array:
		r.depth++
		if r.limits.MaxDepth > 0 && r.depth > r.limits.MaxDepth {
			return v, rerrors.Wrapf(ErrMaxDepthExceeded, "at depth %d", r.depth)
		}
		if r.limits.countingEnabled() {
			r.counters = append(r.counters, 0)
		}
	case wire.ContainerEnd:
		if r.depth == 0 {
			return v, ErrUnexpectedContainerEnd
		}
		r.depth--
		if r.limits.countingEnabled() {
			r.counters = r.counters[:len(r.counters)-1]
		}
	}
	return v, nil
}

// step decodes exactly one tag and its immediate payload without touching
// depth bookkeeping; Read and the skip helpers share it.
func (r *Reader) step() (wire.Value, error) {
	if err := r.need(1); err != nil {
		return wire.Value{}, err
	}
	tag := r.buf[r.pos]
	kind, data := wire.DecodeTag(tag)
	if !kindAssigned(kind) {
		return wire.Value{}, rerrors.Wrapf(ErrInvalidTag, "at offset %d", r.pos)
	}
	r.pos++

	switch kind {
	case wire.Object, wire.Array, wire.ContainerEnd:
		return wire.Value{Kind: kind}, nil
	case wire.Null:
		return wire.NewNull(), nil
	case wire.Bool:
		return wire.NewBool(data != 0), nil
	case wire.U8, wire.U16, wire.U32, wire.U64:
		n := fixedSize(kind)
		if err := r.need(n); err != nil {
			return wire.Value{}, err
		}
		v := wire.DecodeVarint(r.buf[r.pos:], n)
		r.pos += n
		return wire.NewUint(kind, v), nil
	case wire.I8, wire.I16, wire.I32, wire.I64:
		n := fixedSize(kind)
		if err := r.need(n); err != nil {
			return wire.Value{}, err
		}
		u := wire.DecodeVarint(r.buf[r.pos:], n)
		r.pos += n
		return signExtend(kind, n, u), nil
	case wire.F16:
		if err := r.need(2); err != nil {
			return wire.Value{}, err
		}
		bits := uint16(wire.DecodeVarint(r.buf[r.pos:], 2))
		r.pos += 2
		return wire.NewFloat32(wire.Float16ToFloat32(bits)), nil
	case wire.F32:
		if err := r.need(4); err != nil {
			return wire.Value{}, err
		}
		v := wire.NewFloat32(math.Float32frombits(uint32(wire.DecodeVarint(r.buf[r.pos:], 4))))
		r.pos += 4
		return v, nil
	case wire.F64:
		if err := r.need(8); err != nil {
			return wire.Value{}, err
		}
		v := wire.NewFloat64(math.Float64frombits(wire.DecodeVarint(r.buf[r.pos:], 8)))
		r.pos += 8
		return v, nil
	case wire.SmallUint:
		return wire.NewUint(wire.SmallUint, uint64(data)), nil
	case wire.SmallIntPositive:
		if data == 0 {
			return wire.Value{}, rerrors.Wrapf(ErrInvalidTag, "small_int_positive with zero data at offset %d", r.pos-1)
		}
		return wire.NewInt(wire.SmallIntPositive, int64(data)), nil
	case wire.SmallIntNegative:
		if data == 0 {
			return wire.Value{}, rerrors.Wrapf(ErrInvalidTag, "small_int_negative with zero magnitude at offset %d", r.pos-1)
		}
		return wire.NewInt(wire.SmallIntNegative, -int64(data)), nil
	case wire.VarIntUnsigned:
		n := int(data) + 1
		if err := r.need(n); err != nil {
			return wire.Value{}, err
		}
		v := wire.DecodeVarint(r.buf[r.pos:], n)
		r.pos += n
		return wire.NewUint(wire.VarIntUnsigned, v), nil
	case wire.VarIntSignedPositive, wire.VarIntSignedNegative:
		n := int(data) + 1
		if err := r.need(n); err != nil {
			return wire.Value{}, err
		}
		magnitude := wire.DecodeVarint(r.buf[r.pos:], n)
		r.pos += n
		if kind == wire.VarIntSignedNegative && magnitude == 0 {
			return wire.Value{}, rerrors.Wrapf(ErrInvalidTag, "var_int_signed_negative with zero magnitude at offset %d", r.pos-n)
		}
		return wire.NewSignedMagnitude(kind == wire.VarIntSignedNegative, magnitude), nil
	case wire.Bytes:
		if err := r.need(8); err != nil {
			return wire.Value{}, err
		}
		length := wire.DecodeVarint(r.buf[r.pos:], 8)
		r.pos += 8
		return r.readBytesPayload(kind, length)
	case wire.VarIntBytes:
		n := int(data) + 1
		if err := r.need(n); err != nil {
			return wire.Value{}, err
		}
		length := wire.DecodeVarint(r.buf[r.pos:], n)
		r.pos += n
		return r.readBytesPayload(kind, length)
	case wire.SmallBytes:
		length := uint64(data)
		return r.readBytesPayload(kind, length)
	case wire.TypedArray:
		return r.readTypedArray()
	default:
		return wire.Value{}, rerrors.Wrapf(ErrInvalidTag, "unassigned kind code at offset %d", r.pos-1)
	}
}

func (r *Reader) readBytesPayload(kind wire.Kind, length uint64) (wire.Value, error) {
	if r.limits.MaxBytesLength > 0 && length > r.limits.MaxBytesLength {
		return wire.Value{}, rerrors.Wrapf(ErrBytesTooLong, "length %d exceeds limit %d", length, r.limits.MaxBytesLength)
	}
	if length > uint64(len(r.buf)-r.pos) {
		return wire.Value{}, ErrUnexpectedEOF
	}
	n := int(length)
	raw := r.buf[r.pos : r.pos+n]
	r.pos += n
	return wire.NewBytes(kind, raw), nil
}

func (r *Reader) readTypedArray() (wire.Value, error) {
	if err := r.need(1); err != nil {
		return wire.Value{}, err
	}
	elem := wire.ElemKind(r.buf[r.pos])
	r.pos++
	if elem >= wire.ElemKind(11) {
		return wire.Value{}, rerrors.Wrapf(ErrInvalidTag, "unknown typed_array element code %d", elem)
	}

	countVal, err := r.step()
	if err != nil {
		return wire.Value{}, err
	}
	if countVal.Kind != wire.SmallUint && countVal.Kind != wire.VarIntUnsigned {
		return wire.Value{}, rerrors.Wrapf(ErrInvalidTag, "typed_array count has non-unsigned kind %s", countVal.Kind)
	}
	count := countVal.Uint64()

	payloadLen := count * uint64(elem.Size())
	if r.limits.MaxBytesLength > 0 && payloadLen > r.limits.MaxBytesLength {
		return wire.Value{}, rerrors.Wrapf(ErrBytesTooLong, "typed_array payload %d exceeds limit %d", payloadLen, r.limits.MaxBytesLength)
	}
	if payloadLen > uint64(len(r.buf)-r.pos) {
		return wire.Value{}, ErrUnexpectedEOF
	}
	n := int(payloadLen)
	raw := r.buf[r.pos : r.pos+n]
	r.pos += n
	return wire.NewTypedArray(elem, int(count), raw), nil
}

// NextObjectEntry yields the next (key, value) pair of the object whose
// open tag was most recently Read, or ok=false at its container_end.
func (r *Reader) NextObjectEntry() (key []byte, val wire.Value, ok bool, err error) {
	counterIdx := len(r.counters) - 1

	k, err := r.Read()
	if err != nil {
		return nil, wire.Value{}, false, err
	}
	if k.Kind == wire.ContainerEnd {
		return nil, wire.Value{}, false, nil
	}
	if !k.Kind.IsBytesFamily() {
		return nil, wire.Value{}, false, rerrors.Wrapf(ErrInvalidTag, "object key has non-bytes kind %s", k.Kind)
	}

	val, err = r.Read()
	if err != nil {
		return nil, wire.Value{}, false, err
	}

	if r.limits.MaxObjectSize > 0 && counterIdx >= 0 {
		r.counters[counterIdx]++
		if r.counters[counterIdx] > r.limits.MaxObjectSize {
			return k.Raw, val, true, rerrors.Wrapf(ErrObjectTooLarge, "exceeds limit %d", r.limits.MaxObjectSize)
		}
	}
	return k.Raw, val, true, nil
}

// NextArrayElement yields the next element of the array whose open tag was
// most recently Read, or ok=false at its container_end.
func (r *Reader) NextArrayElement() (val wire.Value, ok bool, err error) {
	counterIdx := len(r.counters) - 1

	val, err = r.Read()
	if err != nil {
		return wire.Value{}, false, err
	}
	if val.Kind == wire.ContainerEnd {
		return wire.Value{}, false, nil
	}

	if r.limits.MaxArrayLength > 0 && counterIdx >= 0 {
		r.counters[counterIdx]++
		if r.counters[counterIdx] > r.limits.MaxArrayLength {
			return val, true, rerrors.Wrapf(ErrArrayTooLarge, "exceeds limit %d", r.limits.MaxArrayLength)
		}
	}
	return val, true, nil
}

// Skip advances past one full value: for containers, past their matching
// container_end. It never materializes keys or elements, so it never
// triggers MaxArrayLength/MaxObjectSize -- only MaxDepth, BytesTooLong, and
// the wire-level errors apply, matching Read's error set.
func (r *Reader) Skip() error {
	v, err := r.Read()
	if err != nil {
		return err
	}
	return r.skipContainerBody(v.Kind)
}

// SkipSpan is Skip plus the zero-copy byte range the value occupied in the
// source buffer, suitable for copying an untouched subtree verbatim.
func (r *Reader) SkipSpan() ([]byte, error) {
	start := r.pos
	if err := r.Skip(); err != nil {
		return nil, err
	}
	return r.buf[start:r.pos], nil
}

// FinishContainer consumes the remainder of the container whose open tag
// (kind) was already read via Read, leaving the cursor past its
// container_end. It is a no-op for non-container kinds. The patch engine
// uses this when it reads a value's open tag to inspect its Kind and then
// decides, after the fact, to discard or copy its body rather than
// recurse into it.
func (r *Reader) FinishContainer(kind wire.Kind) error {
	if kind != wire.Object && kind != wire.Array {
		return nil
	}
	return r.skipContainerBody(kind)
}

func (r *Reader) skipContainerBody(k wire.Kind) error {
	switch k {
	case wire.Object:
		for {
			key, err := r.Read()
			if err != nil {
				return err
			}
			if key.Kind == wire.ContainerEnd {
				return nil
			}
			val, err := r.Read()
			if err != nil {
				return err
			}
			if val.Kind == wire.Object || val.Kind == wire.Array {
				if err := r.skipContainerBody(val.Kind); err != nil {
					return err
				}
			}
		}
	case wire.Array:
		for {
			val, err := r.Read()
			if err != nil {
				return err
			}
			if val.Kind == wire.ContainerEnd {
				return nil
			}
			if val.Kind == wire.Object || val.Kind == wire.Array {
				if err := r.skipContainerBody(val.Kind); err != nil {
					return err
				}
			}
		}
	default:
		return nil
	}
}

func kindAssigned(k wire.Kind) bool {
	return k <= wire.TypedArray
}

func fixedSize(k wire.Kind) int {
	switch k {
	case wire.U8, wire.I8:
		return 1
	case wire.U16, wire.I16:
		return 2
	case wire.U32, wire.I32:
		return 4
	case wire.U64, wire.I64:
		return 8
	default:
		return 0
	}
}

func signExtend(kind wire.Kind, n int, u uint64) wire.Value {
	var i int64
	switch n {
	case 1:
		i = int64(int8(u))
	case 2:
		i = int64(int16(u))
	case 4:
		i = int64(int32(u))
	case 8:
		i = int64(u)
	}
	return wire.NewInt(kind, i)
}
