package writer

import (
	werrors "github.com/tagwire/tagwire/internal/errors"
	"github.com/tagwire/tagwire/wire"
)

func wireErrNotFixedUint(k wire.Kind) error {
	return werrors.Errorf("writer: %s is not a fixed-width unsigned kind", k)
}

func wireErrNotFixedInt(k wire.Kind) error {
	return werrors.Errorf("writer: %s is not a fixed-width signed kind", k)
}

func wireErrTypedArrayLength(count int, elem wire.ElemKind, gotLen int) error {
	return werrors.Errorf("writer: typed_array payload length %d does not match count %d * sizeof(%s)", gotLen, count, elem)
}
