package patch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/patch"
	"github.com/tagwire/tagwire/reader"
	"github.com/tagwire/tagwire/wire"
	"github.com/tagwire/tagwire/writer"
)

func encodeAny(t *testing.T, v interface{}) []byte {
	t.Helper()
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.WriteAny(v))
	return sink.Buf
}

func readPath(t *testing.T, buf []byte, p string) (wire.Value, bool) {
	t.Helper()
	v, found, err := reader.New(buf).ReadPath([]byte(p))
	require.NoError(t, err)
	return v, found
}

// TestApplyUpdatesScenario1 mirrors the literal scenario from §8: a mix of
// leaf rewrites, an upsert into a brand-new nested object, a top-level
// upsert, a verbatim-copied leaf, a rewritten array element, a gap-filled
// array slot and an upsert past the source array's length.
func TestApplyUpdatesScenario1(t *testing.T) {
	src := encodeAny(t, map[string]interface{}{
		"a": int64(1),
		"b": map[string]interface{}{
			"c": true,
			"d": "old",
		},
		"arr": []interface{}{int64(10), int64(20)},
	})

	updates := []*patch.Update{
		patch.NewUpdateAny([]byte("a"), int64(2)),
		patch.NewUpdateAny([]byte("b.d"), "new"),
		patch.NewUpdateAny([]byte("x"), int64(999)),
		patch.NewUpdateAny([]byte("b.e.f"), int64(5)),
		patch.NewUpdateAny([]byte("arr[1]"), int64(99)),
		patch.NewUpdateAny([]byte("arr[3]"), int64(33)),
	}

	sink := writer.NewBufferSink()
	require.NoError(t, patch.ApplyUpdates(src, sink, updates))
	out := sink.Buf

	v, found := readPath(t, out, "a")
	require.True(t, found)
	require.Equal(t, int64(2), v.Int64())

	v, found = readPath(t, out, "b.c")
	require.True(t, found)
	require.True(t, v.Bool())

	v, found = readPath(t, out, "b.d")
	require.True(t, found)
	require.Equal(t, "new", string(v.Raw))

	v, found = readPath(t, out, "b.e.f")
	require.True(t, found)
	require.Equal(t, int64(5), v.Int64())

	v, found = readPath(t, out, "x")
	require.True(t, found)
	require.Equal(t, int64(999), v.Int64())

	v, found = readPath(t, out, "arr[0]")
	require.True(t, found)
	require.Equal(t, int64(10), v.Int64())

	v, found = readPath(t, out, "arr[1]")
	require.True(t, found)
	require.Equal(t, int64(99), v.Int64())

	v, found = readPath(t, out, "arr[2]")
	require.True(t, found)
	require.Equal(t, wire.Null, v.Kind)

	v, found = readPath(t, out, "arr[3]")
	require.True(t, found)
	require.Equal(t, int64(33), v.Int64())
}

func TestApplyUpdatesConflictingUpdates(t *testing.T) {
	src := encodeAny(t, map[string]interface{}{
		"b": map[string]interface{}{"c": true},
	})
	updates := []*patch.Update{
		patch.NewUpdateAny([]byte("b"), int64(1)),
		patch.NewUpdateAny([]byte("b.c"), int64(2)),
	}
	sink := writer.NewBufferSink()
	err := patch.ApplyUpdates(src, sink, updates)
	require.ErrorIs(t, err, patch.ErrConflictingUpdates)
}

func TestApplyUpdatesInvalidRoot(t *testing.T) {
	src := encodeAny(t, int64(1))
	updates := []*patch.Update{patch.NewUpdateAny([]byte("a"), int64(2))}
	sink := writer.NewBufferSink()
	err := patch.ApplyUpdates(src, sink, updates)
	require.ErrorIs(t, err, patch.ErrInvalidRoot)
}

func TestApplyUpdatesMalformedPath(t *testing.T) {
	src := encodeAny(t, map[string]interface{}{"a": int64(1)})
	updates := []*patch.Update{patch.NewUpdateAny([]byte("a["), int64(2))}
	sink := writer.NewBufferSink()
	err := patch.ApplyUpdates(src, sink, updates)
	require.ErrorIs(t, err, patch.ErrMalformedPath)
}

func TestApplyUpdatesPathTypeMismatch(t *testing.T) {
	src := encodeAny(t, map[string]interface{}{"a": int64(1)})
	updates := []*patch.Update{patch.NewUpdateAny([]byte("a.b"), int64(2))}
	sink := writer.NewBufferSink()
	err := patch.ApplyUpdates(src, sink, updates)
	require.ErrorIs(t, err, patch.ErrPathTypeMismatch)
}

func TestApplyUpdatesRootReplacement(t *testing.T) {
	src := encodeAny(t, map[string]interface{}{"a": int64(1)})
	updates := []*patch.Update{patch.NewUpdateAny(nil, int64(42))}
	sink := writer.NewBufferSink()
	require.NoError(t, patch.ApplyUpdates(src, sink, updates))

	v, err := reader.New(sink.Buf).Read()
	require.NoError(t, err)
	require.Equal(t, int64(42), v.Int64())
}

func TestApplyUpdatesDuplicateSourceKeysKeepsFirstMatchOnly(t *testing.T) {
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.StartObject())
	require.NoError(t, w.WriteBytes([]byte("a")))
	require.NoError(t, w.WriteInt(1))
	require.NoError(t, w.WriteBytes([]byte("a")))
	require.NoError(t, w.WriteInt(2))
	require.NoError(t, w.EndContainer())
	src := sink.Buf

	updates := []*patch.Update{patch.NewUpdateAny([]byte("a"), int64(99))}
	out := writer.NewBufferSink()
	require.NoError(t, patch.ApplyUpdates(src, out, updates))

	r := reader.New(out.Buf)
	_, err := r.Read()
	require.NoError(t, err)

	var values []int64
	for {
		_, val, ok, err := r.NextObjectEntry()
		require.NoError(t, err)
		if !ok {
			break
		}
		values = append(values, val.Int64())
	}
	require.Equal(t, []int64{99, 2}, values)
}

// typedArrayInObject builds {"nums": typed_array(u32){1,2,3}} -- a typed
// array can only appear nested inside an object or array root, since
// apply_updates requires an Object or Array root.
func typedArrayInObject(t *testing.T) []byte {
	t.Helper()
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.StartObject())
	require.NoError(t, w.WriteBytes([]byte("nums")))
	raw := wire.AppendUint32Array(nil, []uint32{1, 2, 3})
	require.NoError(t, w.WriteTypedArray(wire.ElemU32, 3, raw))
	require.NoError(t, w.EndContainer())
	return sink.Buf
}

func TestApplyUpdatesTypedArrayLeafPatch(t *testing.T) {
	src := typedArrayInObject(t)

	updates := []*patch.Update{patch.NewUpdateAny([]byte("nums[1]"), int64(77))}
	out := writer.NewBufferSink()
	require.NoError(t, patch.ApplyUpdates(src, out, updates))

	v, found := readPath(t, out.Buf, "nums")
	require.True(t, found)
	require.Equal(t, wire.TypedArray, v.Kind)
	require.Equal(t, []uint32{1, 77, 3}, wire.Uint32ArrayView(v.Raw, v.Count))
}

func TestApplyUpdatesTypedArrayIndexOutOfRange(t *testing.T) {
	src := typedArrayInObject(t)

	updates := []*patch.Update{patch.NewUpdateAny([]byte("nums[5]"), int64(1))}
	out := writer.NewBufferSink()
	err := patch.ApplyUpdates(src, out, updates)
	require.ErrorIs(t, err, patch.ErrIndexOutOfRange)
}

func TestApplyUpdatesTypedArrayFloatIntoIntegerElementRejected(t *testing.T) {
	src := typedArrayInObject(t)

	updates := []*patch.Update{patch.NewUpdateAny([]byte("nums[1]"), 3.5)}
	out := writer.NewBufferSink()
	err := patch.ApplyUpdates(src, out, updates)
	require.ErrorIs(t, err, patch.ErrPathTypeMismatch)
}

// TestApplyUpdatesTypedArrayDuplicateIndexLastWriteWins covers two updates
// targeting the same typed_array index: only the later update (by position
// in the updates slice) is encoded, and both are marked Applied.
func TestApplyUpdatesTypedArrayDuplicateIndexLastWriteWins(t *testing.T) {
	src := typedArrayInObject(t)

	first := patch.NewUpdateAny([]byte("nums[1]"), int64(11))
	second := patch.NewUpdateAny([]byte("nums[1]"), int64(22))
	updates := []*patch.Update{first, second}
	out := writer.NewBufferSink()
	require.NoError(t, patch.ApplyUpdates(src, out, updates))

	v, found := readPath(t, out.Buf, "nums")
	require.True(t, found)
	require.Equal(t, []uint32{1, 22, 3}, wire.Uint32ArrayView(v.Raw, v.Count))
	require.True(t, first.Applied)
	require.True(t, second.Applied)
}
