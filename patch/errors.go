package patch

import rerrors "github.com/tagwire/tagwire/internal/errors"

// Sentinel errors surfaced by ApplyUpdates, matching spec §6's Patch error
// set.
var (
	ErrInvalidRoot        = rerrors.New("patch: source root is not an object or array")
	ErrMalformedPath      = rerrors.New("patch: malformed update path")
	ErrPathTypeMismatch   = rerrors.New("patch: update path disagrees with the buffer's structure")
	ErrConflictingUpdates = rerrors.New("patch: conflicting leaf and child updates at the same path")
	ErrIndexOutOfRange    = rerrors.New("patch: array index out of range")
)
