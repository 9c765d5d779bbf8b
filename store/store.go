// Package store is a minimal persistent document store: tagwire-encoded
// buffers keyed by a caller-supplied document id in a cockroachdb/pebble
// database. It exists to demonstrate patch.ApplyUpdates against buffers
// that outlive a single process, not to provide indexing, transactions or
// a query language -- genji's database/engine split a KV engine from
// document semantics the same way, and this follows that shape with a
// single package instead of a layered one.
package store

import (
	"context"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"golang.org/x/sync/errgroup"

	rerrors "github.com/tagwire/tagwire/internal/errors"
	"github.com/tagwire/tagwire/patch"
	"github.com/tagwire/tagwire/writer"
)

// ErrNotFound is returned by Get and Patch when no value is stored under
// the requested key.
var ErrNotFound = rerrors.New("store: key not found")

// Store is a document store backed by a single Pebble database. Values are
// tagwire-encoded byte strings; Store never interprets keys itself, so
// callers are free to use whatever id scheme fits their document model.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a Pebble database at path. Passing
// ":memory:" opens an in-memory database backed by pebble/vfs, useful for
// tests that want a real Pebble instance without touching disk.
func Open(path string) (*Store, error) {
	opts := &pebble.Options{}
	if path == ":memory:" {
		opts.FS = vfs.NewMem()
		path = ""
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, rerrors.Wrap(err, "store: opening database")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the tagwire-encoded buffer stored under key.
func (s *Store) Get(key []byte) ([]byte, error) {
	v, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, rerrors.Wrap(err, "store: get")
	}
	defer closer.Close()
	buf := make([]byte, len(v))
	copy(buf, v)
	return buf, nil
}

// Put stores buf, a tagwire-encoded document, under key, overwriting
// whatever was there before.
func (s *Store) Put(key, buf []byte) error {
	if err := s.db.Set(key, buf, pebble.Sync); err != nil {
		return rerrors.Wrap(err, "store: put")
	}
	return nil
}

// Encode runs build against a fresh Writer and stores the result under
// key, a convenience for callers that don't already have an encoded
// buffer in hand.
func (s *Store) Encode(key []byte, build func(w *writer.Writer) error) error {
	sink := writer.NewBufferSink()
	w := writer.New(sink)
	if err := build(w); err != nil {
		return err
	}
	return s.Put(key, sink.Buf)
}

// Patch reads the buffer stored under key, applies updates via
// patch.ApplyUpdates, and writes the result back under the same key. The
// read-modify-write is not atomic with respect to other writers of the
// same key; callers that need that guarantee should serialize their own
// access per key.
func (s *Store) Patch(key []byte, updates []*patch.Update) error {
	src, err := s.Get(key)
	if err != nil {
		return err
	}
	sink := writer.NewBufferSink()
	if err := patch.ApplyUpdates(src, sink, updates); err != nil {
		return err
	}
	return s.Put(key, sink.Buf)
}

// BatchUpdate is one key's worth of work for PatchBatch.
type BatchUpdate struct {
	Key     []byte
	Updates []*patch.Update
}

// PatchBatch applies a distinct set of updates to a distinct set of keys
// concurrently, using errgroup to collect the first error. The fan-out is
// not bounded: every entry runs in its own goroutine. Each key is independent -- there is no cross-key atomicity -- so
// this is safe exactly when the caller's BatchUpdate entries name disjoint
// keys.
func PatchBatch(ctx context.Context, s *Store, batch []BatchUpdate) error {
	g, _ := errgroup.WithContext(ctx)
	for _, b := range batch {
		b := b
		g.Go(func() error {
			return s.Patch(b.Key, b.Updates)
		})
	}
	return g.Wait()
}
