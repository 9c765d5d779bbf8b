package wire_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/tagwire/tagwire/wire"
)

// TestValueConstructorsMatchFixtures uses go-cmp's structural diff (rather
// than testify's require.Equal) to compare constructed Values against
// fixtures (all cases but signed_magnitude_min, which checks Int64) --
// Value carries unexported bit-pattern fields, so the
// comparison opts into seeing them via AllowUnexported instead of
// reflecting only on exported fields.
func TestValueConstructorsMatchFixtures(t *testing.T) {
	opt := cmp.AllowUnexported(wire.Value{})

	tests := []struct {
		name    string
		got     wire.Value
		fixture wire.Value
	}{
		{"null", wire.NewNull(), wire.Value{Kind: wire.Null}},
		{"bool_true", wire.NewBool(true), wire.NewUint(wire.Bool, 1)},
		{"int_positive", wire.NewInt(wire.I32, 7), wire.NewUint(wire.I32, 7)},
		{
			"signed_magnitude_min",
			wire.NewSignedMagnitude(true, wire.MinNegativeMagnitude),
			wire.Value{Kind: wire.VarIntSignedNegative},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.name == "signed_magnitude_min" {
				// A fixture built outside package wire cannot set the
				// unexported magnitude, so this case checks the decoded
				// int64 instead of diffing against its fixture.
				require.Equal(t, int64(-1<<63), test.got.Int64())
				return
			}
			if diff := cmp.Diff(test.fixture, test.got, opt); diff != "" {
				t.Errorf("Value mismatch (-fixture +got):\n%s", diff)
			}
		})
	}
}

func TestTypedArrayValueFixture(t *testing.T) {
	opt := cmp.AllowUnexported(wire.Value{})
	raw := wire.AppendUint32Array(nil, []uint32{1, 2, 3})

	got := wire.NewTypedArray(wire.ElemU32, 3, raw)
	fixture := wire.Value{Kind: wire.TypedArray, Elem: wire.ElemU32, Count: 3, Raw: raw}

	if diff := cmp.Diff(fixture, got, opt); diff != "" {
		t.Errorf("Value mismatch (-fixture +got):\n%s", diff)
	}
}
