package reader

import rerrors "github.com/tagwire/tagwire/internal/errors"

// Sentinel errors surfaced by Reader, matching spec §6's Reader error set.
// Wraps produced internally add context via Wrapf (an offset, a limit or a
// kind) and can still be compared against these with errors.Is;
// ErrUnexpectedEOF and ErrUnexpectedContainerEnd are returned unwrapped.
var (
	ErrUnexpectedEOF         = rerrors.New("reader: unexpected end of buffer")
	ErrInvalidTag            = rerrors.New("reader: invalid tag")
	ErrUnexpectedContainerEnd = rerrors.New("reader: unexpected container_end at depth 0")
	ErrMaxDepthExceeded      = rerrors.New("reader: max depth exceeded")
	ErrBytesTooLong          = rerrors.New("reader: bytes payload exceeds configured limit")
	ErrArrayTooLarge         = rerrors.New("reader: array exceeds configured element limit")
	ErrObjectTooLarge        = rerrors.New("reader: object exceeds configured entry limit")
)
