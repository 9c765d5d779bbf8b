package patch

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/tagwire/tagwire/path"
	"github.com/tagwire/tagwire/reader"
	"github.com/tagwire/tagwire/wire"
	"github.com/tagwire/tagwire/writer"
)

// patchTypedArray applies leaf updates addressed into a typed_array's
// packed payload (spec §4.4 step 7). A child path into a typed_array
// element -- anything other than a bare index with nothing after it -- is
// a PathTypeMismatch; an index beyond the array's fixed element count is
// IndexOutOfRange, since typed arrays can't be extended the way objects
// and arrays can.
func patchTypedArray(w *writer.Writer, val wire.Value, child []pstate) error {
	elem := val.Elem
	elemSize := elem.Size()
	count := val.Count

	type patchAt struct {
		idx int
		u   *Update
	}
	byIdx := make(map[int]*Update, len(child))
	var dupes []*Update
	for _, st := range child {
		seg, rest, ok := path.ParseSegment(st.rest)
		if !ok || seg.Kind != path.SegmentIndex || len(rest) != 0 {
			return ErrPathTypeMismatch
		}
		idx := int(seg.Index)
		if idx < 0 || idx >= count {
			return ErrIndexOutOfRange
		}
		if prev, ok := byIdx[idx]; ok {
			dupes = append(dupes, prev)
		}
		byIdx[idx] = st.u
	}

	indices := make([]int, 0, len(byIdx))
	for idx := range byIdx {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	out := make([]byte, 0, len(val.Raw))
	cursor := 0
	for _, idx := range indices {
		off := idx * elemSize
		out = append(out, val.Raw[cursor:off]...)
		eb, err := reinterpretAsElem(byIdx[idx], elem)
		if err != nil {
			return err
		}
		out = append(out, eb...)
		byIdx[idx].Applied = true
		cursor = off + elemSize
	}
	out = append(out, val.Raw[cursor:]...)
	for _, u := range dupes {
		u.Applied = true
	}

	return w.WriteTypedArray(elem, count, out)
}

// reinterpretAsElem invokes u.WriteFn against a scratch sink, decodes the
// canonical tagged value it produced, and converts that scalar into elem's
// raw little-endian representation. Narrowing conversions between integer
// kinds are permitted; a float scalar into an integer element (or vice
// versa) is rejected.
func reinterpretAsElem(u *Update, elem wire.ElemKind) ([]byte, error) {
	sink := writer.NewBufferSink()
	scratch := writer.New(sink)
	if err := u.WriteFn(scratch); err != nil {
		return nil, err
	}
	v, err := reader.New(sink.Buf).Read()
	if err != nil {
		return nil, err
	}
	return encodeElem(v, elem)
}

func encodeElem(v wire.Value, elem wire.ElemKind) ([]byte, error) {
	out := make([]byte, elem.Size())
	isFloatVal := v.Kind == wire.F16 || v.Kind == wire.F32 || v.Kind == wire.F64

	if elem.IsFloat() {
		var f64 float64
		switch {
		case v.Kind == wire.F32:
			f64 = float64(v.Float32())
		case v.Kind == wire.F64:
			f64 = v.Float64()
		default:
			return nil, ErrPathTypeMismatch
		}
		switch elem {
		case wire.ElemF16:
			binary.LittleEndian.PutUint16(out, wire.Float32ToFloat16(float32(f64)))
		case wire.ElemF32:
			binary.LittleEndian.PutUint32(out, math.Float32bits(float32(f64)))
		case wire.ElemF64:
			binary.LittleEndian.PutUint64(out, math.Float64bits(f64))
		}
		return out, nil
	}

	if isFloatVal {
		return nil, ErrPathTypeMismatch
	}
	var u64 uint64
	switch v.Kind {
	case wire.U8, wire.U16, wire.U32, wire.U64, wire.SmallUint, wire.VarIntUnsigned:
		u64 = v.Uint64()
	default:
		u64 = uint64(v.Int64())
	}
	switch elem {
	case wire.ElemU8, wire.ElemI8:
		out[0] = byte(u64)
	case wire.ElemU16, wire.ElemI16:
		binary.LittleEndian.PutUint16(out, uint16(u64))
	case wire.ElemU32, wire.ElemI32:
		binary.LittleEndian.PutUint32(out, uint32(u64))
	case wire.ElemU64, wire.ElemI64:
		binary.LittleEndian.PutUint64(out, u64)
	}
	return out, nil
}
