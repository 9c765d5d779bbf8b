package jsonproj_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/jsonproj"
	"github.com/tagwire/tagwire/reader"
	"github.com/tagwire/tagwire/wire"
	"github.com/tagwire/tagwire/writer"
)

func TestPrintFlatObject(t *testing.T) {
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.StartObject())
	require.NoError(t, w.WriteBytes([]byte("name")))
	require.NoError(t, w.WriteBytes([]byte("John")))
	require.NoError(t, w.WriteBytes([]byte("age")))
	require.NoError(t, w.WriteInt(10))
	require.NoError(t, w.EndContainer())

	var out bytes.Buffer
	require.NoError(t, jsonproj.Print(reader.New(sink.Buf), &out))
	require.Equal(t, "{\n  \"name\": \"John\",\n  \"age\": 10\n}", out.String())
}

func TestPrintArrayOfScalars(t *testing.T) {
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.WriteAny([]interface{}{int64(1), "two", true, nil}))

	var out bytes.Buffer
	require.NoError(t, jsonproj.Print(reader.New(sink.Buf), &out))
	require.Equal(t, "[\n  1,\n  \"two\",\n  true,\n  null\n]", out.String())
}

func TestPrintEscapesControlCharactersAndQuotes(t *testing.T) {
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.WriteBytes([]byte("line1\nline2\t\"quoted\"")))

	var out bytes.Buffer
	require.NoError(t, jsonproj.Print(reader.New(sink.Buf), &out))
	require.Equal(t, `"line1\nline2\t\"quoted\""`, out.String())
}

func TestPrintInvalidUTF8(t *testing.T) {
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.WriteBytes([]byte{0xff, 0xfe}))

	var out bytes.Buffer
	err := jsonproj.Print(reader.New(sink.Buf), &out)
	require.ErrorIs(t, err, jsonproj.ErrInvalidUTF8)
}

func TestPrintTypedArray(t *testing.T) {
	raw := wire.AppendUint16Array(nil, []uint16{1, 2, 300})
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.WriteTypedArray(wire.ElemU16, 3, raw))

	var out bytes.Buffer
	require.NoError(t, jsonproj.Print(reader.New(sink.Buf), &out))
	require.Equal(t, "[1, 2, 300]", out.String())
}

func TestPrintNonFiniteFloatRejected(t *testing.T) {
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	require.NoError(t, w.WriteF64(mathNaN()))

	var out bytes.Buffer
	err := jsonproj.Print(reader.New(sink.Buf), &out)
	require.ErrorIs(t, err, jsonproj.ErrNonFiniteFloat)
}

func mathNaN() float64 {
	var zero float64
	return zero / zero
}
