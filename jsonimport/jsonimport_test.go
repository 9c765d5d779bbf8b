package jsonimport_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/jsonimport"
	"github.com/tagwire/tagwire/reader"
	"github.com/tagwire/tagwire/wire"
	"github.com/tagwire/tagwire/writer"
)

func importJSON(t *testing.T, text string) []byte {
	t.Helper()
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, jsonimport.Import(w, []byte(text)))
	return sink.Buf
}

func TestImportScalars(t *testing.T) {
	tests := []struct {
		json string
		kind wire.Kind
	}{
		{"null", wire.Null},
		{"true", wire.Bool},
		{"42", wire.VarIntSignedPositive},
		{"-3", wire.SmallIntNegative},
		{"3.5", wire.F64},
		{`"hello"`, wire.SmallBytes},
	}
	for _, test := range tests {
		buf := importJSON(t, test.json)
		v, err := reader.New(buf).Read()
		require.NoError(t, err)
		require.Equal(t, test.kind, v.Kind)
	}
}

func TestImportFlatObject(t *testing.T) {
	buf := importJSON(t, `{"name":"John","age":10}`)

	r := reader.New(buf)
	root, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wire.Object, root.Kind)

	entries := map[string]wire.Value{}
	for {
		key, val, ok, err := r.NextObjectEntry()
		require.NoError(t, err)
		if !ok {
			break
		}
		entries[string(key)] = val
	}
	require.Equal(t, "John", string(entries["name"].Raw))
	require.Equal(t, int64(10), entries["age"].Int64())
}

func TestImportNestedObjectAndArray(t *testing.T) {
	buf := importJSON(t, `{"address":{"city":"Ajaccio"},"friends":["fred","jamie"]}`)

	v, found, err := reader.New(buf).ReadPath([]byte("address.city"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Ajaccio", string(v.Raw))

	v, found, err = reader.New(buf).ReadPath([]byte("friends[1]"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "jamie", string(v.Raw))
}

func TestImportTopLevelArray(t *testing.T) {
	buf := importJSON(t, `[1,2,3]`)
	r := reader.New(buf)
	root, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, wire.Array, root.Kind)

	var got []int64
	for {
		v, ok, err := r.NextArrayElement()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v.Int64())
	}
	require.Equal(t, []int64{1, 2, 3}, got)
}
