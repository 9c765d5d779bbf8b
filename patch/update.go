package patch

import "github.com/tagwire/tagwire/writer"

// Update is a single path-addressed change submitted to ApplyUpdates, per
// spec §4.4's update descriptor. WriteFn turns a caller-owned value of
// arbitrary host type into wire bytes; ApplyUpdates never interprets the
// value itself, only the bytes WriteFn emits.
type Update struct {
	Path    []byte
	WriteFn func(*writer.Writer) error
	Applied bool
}

// NewUpdate builds an Update from a path and a write callback.
func NewUpdate(path []byte, writeFn func(*writer.Writer) error) *Update {
	return &Update{Path: path, WriteFn: writeFn}
}

// NewUpdateAny is the constructor sugar spec §7 calls Update::init: it
// monomorphizes WriteFn to call WriteAny(v) for a host value of any of the
// dynamic types WriteAny accepts.
func NewUpdateAny(path []byte, v interface{}) *Update {
	return &Update{Path: path, WriteFn: func(w *writer.Writer) error {
		return w.WriteAny(v)
	}}
}
