package writer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/reader"
	"github.com/tagwire/tagwire/wire"
	"github.com/tagwire/tagwire/writer"
)

func TestWriteUintCanonicalForm(t *testing.T) {
	tests := []struct {
		v        uint64
		wantKind wire.Kind
	}{
		{0, wire.SmallUint},
		{7, wire.SmallUint},
		{8, wire.VarIntUnsigned},
		{1 << 20, wire.VarIntUnsigned},
	}
	for _, test := range tests {
		sink := writer.NewBufferSink()
		w := writer.New(sink)
		require.NoError(t, w.WriteUint(test.v))

		v, err := reader.New(sink.Buf).Read()
		require.NoError(t, err)
		require.Equal(t, test.wantKind, v.Kind)
		require.Equal(t, test.v, v.Uint64())
	}
}

func TestWriteIntCanonicalForm(t *testing.T) {
	tests := []int64{0, 3, -3, 1000, -1000, 1<<63 - 1, -1 << 63}
	for _, v := range tests {
		sink := writer.NewBufferSink()
		w := writer.New(sink)
		require.NoError(t, w.WriteInt(v))

		got, err := reader.New(sink.Buf).Read()
		require.NoError(t, err)
		require.Equal(t, v, got.Int64())
	}
}

func TestWriteBytesSmallAndVarint(t *testing.T) {
	tests := [][]byte{
		[]byte(""),
		[]byte("short"),
		[]byte("this string is definitely longer than seven bytes"),
	}
	for _, raw := range tests {
		sink := writer.NewBufferSink()
		w := writer.New(sink)
		require.NoError(t, w.WriteBytes(raw))

		got, err := reader.New(sink.Buf).Read()
		require.NoError(t, err)
		require.Equal(t, raw, got.Raw)
	}
}

func TestWriteAnyDispatchesObjectsAndArrays(t *testing.T) {
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.WriteAny(map[string]interface{}{
		"a": int64(1),
		"b": []interface{}{"x", "y"},
	}))

	r := reader.New(sink.Buf)
	root, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wire.Object, root.Kind)

	seen := map[string]wire.Value{}
	for {
		key, val, ok, err := r.NextObjectEntry()
		require.NoError(t, err)
		if !ok {
			break
		}
		seen[string(key)] = val
	}
	require.Equal(t, int64(1), seen["a"].Int64())
	require.Equal(t, wire.Array, seen["b"].Kind)
}

func TestWriteTypedArrayRoundTrip(t *testing.T) {
	raw := wire.AppendUint32Array(nil, []uint32{1, 2, 3})
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.WriteTypedArray(wire.ElemU32, 3, raw))

	got, err := reader.New(sink.Buf).Read()
	require.NoError(t, err)
	require.Equal(t, wire.TypedArray, got.Kind)
	require.Equal(t, 3, got.Count)
	require.Equal(t, wire.ElemU32, got.Elem)
	require.Equal(t, raw, got.Raw)
}

func TestWriteTypedArrayLengthMismatch(t *testing.T) {
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	err := w.WriteTypedArray(wire.ElemU32, 3, []byte{1, 2, 3})
	require.Error(t, err)
}
