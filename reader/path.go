package reader

import (
	"bytes"

	"github.com/tagwire/tagwire/path"
	"github.com/tagwire/tagwire/wire"
)

// ReadPath resolves a single path against the document at the Reader's
// current position, restoring the cursor afterward so the Reader can be
// reused for another query or for normal iteration. found is false when
// the path doesn't structurally resolve (missing key, out-of-range index,
// navigating through a scalar, or a malformed path) rather than an error;
// err is reserved for genuine decode failures (EOF, invalid tag, limits).
//
// Resolving to a container returns a Value carrying only its Kind: read_path
// confirms existence and shape, it does not materialize nested content --
// use Read/NextObjectEntry/NextArrayElement for that.
func (r *Reader) ReadPath(p []byte) (wire.Value, bool, error) {
	savedPos, savedDepth, savedCounters := r.pos, r.depth, r.counters
	defer func() { r.pos, r.depth, r.counters = savedPos, savedDepth, savedCounters }()

	root, err := r.Read()
	if err != nil {
		return wire.Value{}, false, err
	}
	return r.resolvePath(root, p)
}

func (r *Reader) resolvePath(cur wire.Value, p []byte) (wire.Value, bool, error) {
	if len(p) == 0 {
		return cur, true, nil
	}
	seg, rest, ok := path.ParseSegment(p)
	if !ok {
		return wire.Value{}, false, nil
	}
	if cur.Kind != wire.Object && cur.Kind != wire.Array {
		return wire.Value{}, false, nil
	}
	if (cur.Kind == wire.Object) != (seg.Kind == path.SegmentKey) {
		return wire.Value{}, false, r.drainContainer(cur.Kind)
	}

	idx := uint64(0)
	for {
		var key []byte
		var val wire.Value
		var more bool
		var err error
		if cur.Kind == wire.Object {
			key, val, more, err = r.NextObjectEntry()
		} else {
			val, more, err = r.NextArrayElement()
		}
		if err != nil {
			return wire.Value{}, false, err
		}
		if !more {
			return wire.Value{}, false, nil
		}

		matched := false
		if cur.Kind == wire.Object {
			matched = bytes.Equal(key, seg.Key)
		} else {
			matched = idx == seg.Index
			idx++
		}
		if matched {
			found, ok, err := r.resolvePath(val, rest)
			if err != nil {
				return wire.Value{}, false, err
			}
			return found, ok, r.drainContainer(cur.Kind)
		}
		if err := r.skipEntryValue(val); err != nil {
			return wire.Value{}, false, err
		}
	}
}

func (r *Reader) skipEntryValue(v wire.Value) error {
	if v.Kind == wire.Object || v.Kind == wire.Array {
		return r.skipContainerBody(v.Kind)
	}
	return nil
}

// drainContainer consumes the remainder of the container whose open tag
// (kind) was already read, leaving the cursor past its container_end
// regardless of how much of its body was already visited. ReadPath/
// ReadPaths restore the cursor on return, so this only has to keep the
// Reader's internal bookkeeping (depth, counters) consistent mid-call.
func (r *Reader) drainContainer(kind wire.Kind) error {
	return r.skipContainerBody(kind)
}

// Query is one path to resolve via ReadPaths; Value/Found/Err are filled in
// by the call. Path is read-only to ReadPaths -- it is never mutated.
type Query struct {
	Path  []byte
	Value wire.Value
	Found bool
	Err   error
}

type queryState struct {
	q    *Query
	path []byte
}

// ReadPaths resolves every query against the document at the Reader's
// current position in a single forward pass, grouping queries that share a
// common prefix so a given sibling in the source is visited once no matter
// how many queries depend on it. The cursor is restored on return.
func (r *Reader) ReadPaths(queries []*Query) error {
	savedPos, savedDepth, savedCounters := r.pos, r.depth, r.counters
	defer func() { r.pos, r.depth, r.counters = savedPos, savedDepth, savedCounters }()

	root, err := r.Read()
	if err != nil {
		for _, q := range queries {
			q.Err = err
		}
		return err
	}

	states := make([]queryState, len(queries))
	for i, q := range queries {
		q.Value, q.Found, q.Err = wire.Value{}, false, nil
		states[i] = queryState{q: q, path: q.Path}
	}
	return r.resolveGroup(root, states)
}

// resolveGroup resolves every query in qs (each carrying its remaining path
// relative to cur) against cur in one traversal of cur's body when cur is a
// container.
func (r *Reader) resolveGroup(cur wire.Value, qs []queryState) error {
	type pending struct {
		q    *Query
		seg  path.Segment
		rest []byte
	}
	var segs []pending

	for _, st := range qs {
		if len(st.path) == 0 {
			st.q.Value, st.q.Found = cur, true
			continue
		}
		seg, rest, ok := path.ParseSegment(st.path)
		if !ok {
			continue
		}
		segs = append(segs, pending{st.q, seg, rest})
	}
	if len(segs) == 0 {
		if cur.Kind == wire.Object || cur.Kind == wire.Array {
			return r.drainContainer(cur.Kind)
		}
		return nil
	}
	if cur.Kind != wire.Object && cur.Kind != wire.Array {
		return nil
	}

	idx := uint64(0)
	for {
		var key []byte
		var val wire.Value
		var more bool
		var err error
		if cur.Kind == wire.Object {
			key, val, more, err = r.NextObjectEntry()
		} else {
			val, more, err = r.NextArrayElement()
		}
		if err != nil {
			return err
		}
		if !more {
			return nil
		}

		var sub []queryState
		for _, p := range segs {
			match := false
			if cur.Kind == wire.Object {
				match = p.seg.Kind == path.SegmentKey && bytes.Equal(key, p.seg.Key)
			} else {
				match = p.seg.Kind == path.SegmentIndex && p.seg.Index == idx
			}
			if match {
				sub = append(sub, queryState{p.q, p.rest})
			}
		}
		if cur.Kind == wire.Array {
			idx++
		}
		if len(sub) == 0 {
			if err := r.skipEntryValue(val); err != nil {
				return err
			}
			continue
		}
		if err := r.resolveGroup(val, sub); err != nil {
			return err
		}
	}
}
