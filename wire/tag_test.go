package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/wire"
)

func TestEncodeDecodeTag(t *testing.T) {
	tests := []struct {
		kind wire.Kind
		data uint8
	}{
		{wire.Null, 0},
		{wire.Bool, 1},
		{wire.SmallUint, 7},
		{wire.Object, 0},
		{wire.TypedArray, 3},
	}
	for _, test := range tests {
		tag := wire.EncodeTag(test.kind, test.data)
		k, data := wire.DecodeTag(tag)
		require.Equal(t, test.kind, k)
		require.Equal(t, test.data, data)
	}
}

func TestVarintSize(t *testing.T) {
	tests := []struct {
		v    uint64
		want int
	}{
		{0, 1},
		{0xFF, 1},
		{0x100, 2},
		{0xFFFFFF, 3},
		{0xFFFFFFFF, 4},
		{1 << 40, 6},
		{1 << 63, 8},
	}
	for _, test := range tests {
		require.Equal(t, test.want, wire.VarintSize(test.v))
	}
}

func TestAppendDecodeVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 255, 256, 1 << 20, 1 << 40, 1<<63 - 1}
	for _, v := range values {
		n := wire.VarintSize(v)
		buf := wire.AppendVarint(nil, v)
		require.Len(t, buf, n)
		got := wire.DecodeVarint(buf, n)
		require.Equal(t, v, got)
	}
}
