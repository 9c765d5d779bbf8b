// Package errors centralizes tagwire's error handling conventions on top of
// github.com/cockroachdb/errors: every sentinel used by reader, path, patch
// and jsonproj is created here and compared with Is, and every wrap carries
// enough context (offset, path, limit) to diagnose a failure without
// retaining a stack trace on the hot decode path.
package errors

import (
	"github.com/cockroachdb/errors"
)

// New creates a new error from a message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf creates a new error from a format string.
func Errorf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// Wrap annotates err with msg. Returns nil if err is nil.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

// Wrapf annotates err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// AssertionFailedf reports an invariant violation that should be
// unreachable given the format's own guarantees (e.g. a container_end
// observed with an empty depth stack). Unlike the wire-level and policy
// errors surfaced by reader/path/patch, this always indicates a bug in
// tagwire itself rather than malformed input.
func AssertionFailedf(format string, args ...interface{}) error {
	return errors.AssertionFailedf(format, args...)
}
