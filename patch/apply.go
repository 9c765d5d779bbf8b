// Package patch implements apply_updates, the single-pass re-encoder of
// spec §4.4: it applies a batch of path-addressed updates against an
// existing encoded buffer, rewriting only the subtrees the updates touch
// and copying everything else through verbatim.
package patch

import (
	"bytes"

	rerrors "github.com/tagwire/tagwire/internal/errors"
	"github.com/tagwire/tagwire/path"
	"github.com/tagwire/tagwire/reader"
	"github.com/tagwire/tagwire/wire"
	"github.com/tagwire/tagwire/writer"
	"golang.org/x/exp/slices"
)

// pstate is one update together with the segment it must match at the
// container currently being traversed, and the path remaining after that
// segment.
type pstate struct {
	u    *Update
	seg  path.Segment
	rest []byte
}

// ApplyUpdates re-encodes src into sink, applying updates in place. It sorts
// updates by segment-wise path order (mutating the slice the caller passed
// in), validates every path up front, and then walks src with a Reader
// while emitting the patched form with a Writer, exactly as described by
// spec §4.4.
func ApplyUpdates(src []byte, sink writer.Sink, updates []*Update) error {
	for _, u := range updates {
		u.Applied = false
		if err := path.Validate(u.Path); err != nil {
			return ErrMalformedPath
		}
	}
	slices.SortFunc(updates, func(a, b *Update) int {
		switch {
		case path.Less(a.Path, b.Path):
			return -1
		case path.Less(b.Path, a.Path):
			return 1
		default:
			return 0
		}
	})

	emptyPaths := 0
	for _, u := range updates {
		if len(u.Path) == 0 {
			emptyPaths++
		}
	}
	if emptyPaths > 0 {
		if emptyPaths > 1 || len(updates) > 1 {
			return ErrConflictingUpdates
		}
		w := writer.New(sink)
		if err := updates[0].WriteFn(w); err != nil {
			return err
		}
		updates[0].Applied = true
		return reader.New(src).Skip()
	}

	r := reader.New(src)
	root, err := r.Read()
	if err != nil {
		return err
	}
	if root.Kind != wire.Object && root.Kind != wire.Array {
		return ErrInvalidRoot
	}

	states := make([]pstate, len(updates))
	for i, u := range updates {
		seg, rest, ok := path.ParseSegment(u.Path)
		if !ok {
			return ErrMalformedPath
		}
		states[i] = pstate{u, seg, rest}
	}

	w := writer.New(sink)
	return patchContainer(r, w, root.Kind, states)
}

func patchContainer(r *reader.Reader, w *writer.Writer, kind wire.Kind, states []pstate) error {
	if kind == wire.Object {
		return patchObject(r, w, states)
	}
	return patchArray(r, w, states)
}

func patchObject(r *reader.Reader, w *writer.Writer, states []pstate) error {
	if err := w.StartObject(); err != nil {
		return err
	}
	seen := make(map[string]bool)

	for {
		keyVal, err := r.Read()
		if err != nil {
			return err
		}
		if keyVal.Kind == wire.ContainerEnd {
			break
		}
		if !keyVal.Kind.IsBytesFamily() {
			return rerrors.Wrapf(reader.ErrInvalidTag, "object key has non-bytes kind %s", keyVal.Kind)
		}
		key := keyVal.Raw
		// A source object may (the Writer never produces this, but the
		// format doesn't forbid it) carry a duplicate key. Only the first
		// occurrence is eligible to match an update; later duplicates are
		// always copied verbatim, per spec.md §9.
		duplicate := seen[string(key)]
		seen[string(key)] = true

		var leafMatches []*pstate
		var child []pstate
		if !duplicate {
			for i := range states {
				st := &states[i]
				if st.seg.Kind != path.SegmentKey || !bytes.Equal(st.seg.Key, key) {
					continue
				}
				if len(st.rest) == 0 {
					leafMatches = append(leafMatches, st)
				} else {
					child = append(child, *st)
				}
			}
			if len(leafMatches) > 0 && len(child) > 0 {
				return ErrConflictingUpdates
			}
		}

		valStart := r.Pos()
		val, err := r.Read()
		if err != nil {
			return err
		}

		switch {
		case len(leafMatches) > 0:
			winner := leafMatches[len(leafMatches)-1]
			for _, lm := range leafMatches {
				lm.u.Applied = true
			}
			if err := w.WriteBytes(key); err != nil {
				return err
			}
			if err := winner.u.WriteFn(w); err != nil {
				return err
			}
			if err := r.FinishContainer(val.Kind); err != nil {
				return err
			}
		case len(child) > 0:
			if err := w.WriteBytes(key); err != nil {
				return err
			}
			if err := recurseInto(r, w, val, child); err != nil {
				return err
			}
		default:
			if err := r.FinishContainer(val.Kind); err != nil {
				return err
			}
			raw := r.Buf()[valStart:r.Pos()]
			if err := w.WriteBytes(key); err != nil {
				return err
			}
			if err := w.WriteRaw(raw); err != nil {
				return err
			}
		}
	}

	if err := emitUnseenObjectGroups(w, states, seen); err != nil {
		return err
	}
	return w.EndContainer()
}

func patchArray(r *reader.Reader, w *writer.Writer, states []pstate) error {
	if err := w.StartArray(); err != nil {
		return err
	}
	idx := uint64(0)

	for {
		valStart := r.Pos()
		val, err := r.Read()
		if err != nil {
			return err
		}
		if val.Kind == wire.ContainerEnd {
			break
		}

		var leafMatches []*pstate
		var child []pstate
		for i := range states {
			st := &states[i]
			if st.seg.Kind != path.SegmentIndex || st.seg.Index != idx {
				continue
			}
			if len(st.rest) == 0 {
				leafMatches = append(leafMatches, st)
			} else {
				child = append(child, *st)
			}
		}
		if len(leafMatches) > 0 && len(child) > 0 {
			return ErrConflictingUpdates
		}

		switch {
		case len(leafMatches) > 0:
			winner := leafMatches[len(leafMatches)-1]
			for _, lm := range leafMatches {
				lm.u.Applied = true
			}
			if err := winner.u.WriteFn(w); err != nil {
				return err
			}
			if err := r.FinishContainer(val.Kind); err != nil {
				return err
			}
		case len(child) > 0:
			if err := recurseInto(r, w, val, child); err != nil {
				return err
			}
		default:
			if err := r.FinishContainer(val.Kind); err != nil {
				return err
			}
			raw := r.Buf()[valStart:r.Pos()]
			if err := w.WriteRaw(raw); err != nil {
				return err
			}
		}
		idx++
	}

	if err := emitUnseenArrayGroup(w, states, idx); err != nil {
		return err
	}
	return w.EndContainer()
}

// recurseInto handles a matched child-update group one level down: the
// source value at this position must be an object, array, or typed_array,
// per spec §4.4 step 5.
func recurseInto(r *reader.Reader, w *writer.Writer, val wire.Value, child []pstate) error {
	switch val.Kind {
	case wire.Object, wire.Array:
		next := make([]pstate, len(child))
		for i, st := range child {
			seg, rest, ok := path.ParseSegment(st.rest)
			if !ok {
				return ErrMalformedPath
			}
			next[i] = pstate{st.u, seg, rest}
		}
		return patchContainer(r, w, val.Kind, next)
	case wire.TypedArray:
		return patchTypedArray(w, val, child)
	default:
		return ErrPathTypeMismatch
	}
}

// emitSynthesized writes the value for one key/index slot that has no
// source backing (an upsert): either the winning leaf's write_fn, or a
// nested container built entirely from the group's child updates.
func emitSynthesized(w *writer.Writer, leafMatches []*pstate, child []pstate) error {
	if len(leafMatches) > 0 && len(child) > 0 {
		return ErrConflictingUpdates
	}
	if len(leafMatches) > 0 {
		winner := leafMatches[len(leafMatches)-1]
		for _, lm := range leafMatches {
			lm.u.Applied = true
		}
		return winner.u.WriteFn(w)
	}

	next := make([]pstate, len(child))
	for i, st := range child {
		seg, rest, ok := path.ParseSegment(st.rest)
		if !ok {
			return ErrMalformedPath
		}
		next[i] = pstate{st.u, seg, rest}
	}
	kind := wire.Object
	if next[0].seg.Kind == path.SegmentIndex {
		kind = wire.Array
	}
	return buildContainerFromUpdates(w, kind, next)
}

// buildContainerFromUpdates synthesizes a whole container purely from
// updates, with no source Reader behind it -- used both for a fresh
// nested container inferred mid-upsert and recursively within one.
func buildContainerFromUpdates(w *writer.Writer, kind wire.Kind, states []pstate) error {
	if kind == wire.Object {
		return buildObjectFromUpdates(w, states)
	}
	return buildArrayFromUpdates(w, states)
}

func buildObjectFromUpdates(w *writer.Writer, states []pstate) error {
	if err := w.StartObject(); err != nil {
		return err
	}
	var order []string
	seen := map[string]bool{}
	for _, st := range states {
		if st.seg.Kind != path.SegmentKey {
			return ErrPathTypeMismatch
		}
		ks := string(st.seg.Key)
		if !seen[ks] {
			seen[ks] = true
			order = append(order, ks)
		}
	}
	for _, ks := range order {
		var leafMatches []*pstate
		var child []pstate
		for i := range states {
			st := &states[i]
			if string(st.seg.Key) != ks {
				continue
			}
			if len(st.rest) == 0 {
				leafMatches = append(leafMatches, st)
			} else {
				child = append(child, *st)
			}
		}
		if err := w.WriteBytes([]byte(ks)); err != nil {
			return err
		}
		if err := emitSynthesized(w, leafMatches, child); err != nil {
			return err
		}
	}
	return w.EndContainer()
}

func buildArrayFromUpdates(w *writer.Writer, states []pstate) error {
	if err := w.StartArray(); err != nil {
		return err
	}
	maxIdx := int64(-1)
	for _, st := range states {
		if st.seg.Kind != path.SegmentIndex {
			return ErrPathTypeMismatch
		}
		if int64(st.seg.Index) > maxIdx {
			maxIdx = int64(st.seg.Index)
		}
	}
	for idx := int64(0); idx <= maxIdx; idx++ {
		var leafMatches []*pstate
		var child []pstate
		for i := range states {
			st := &states[i]
			if int64(st.seg.Index) != idx {
				continue
			}
			if len(st.rest) == 0 {
				leafMatches = append(leafMatches, st)
			} else {
				child = append(child, *st)
			}
		}
		if len(leafMatches) == 0 && len(child) == 0 {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if err := emitSynthesized(w, leafMatches, child); err != nil {
			return err
		}
	}
	return w.EndContainer()
}

func emitUnseenObjectGroups(w *writer.Writer, states []pstate, seen map[string]bool) error {
	var order []string
	localSeen := map[string]bool{}
	for _, st := range states {
		if st.seg.Kind != path.SegmentKey {
			return ErrPathTypeMismatch
		}
		ks := string(st.seg.Key)
		if seen[ks] || localSeen[ks] {
			continue
		}
		localSeen[ks] = true
		order = append(order, ks)
	}
	for _, ks := range order {
		var leafMatches []*pstate
		var child []pstate
		for i := range states {
			st := &states[i]
			if st.seg.Kind != path.SegmentKey || string(st.seg.Key) != ks {
				continue
			}
			if len(st.rest) == 0 {
				leafMatches = append(leafMatches, st)
			} else {
				child = append(child, *st)
			}
		}
		if err := w.WriteBytes([]byte(ks)); err != nil {
			return err
		}
		if err := emitSynthesized(w, leafMatches, child); err != nil {
			return err
		}
	}
	return nil
}

func emitUnseenArrayGroup(w *writer.Writer, states []pstate, nextIdx uint64) error {
	maxIdx := int64(-1)
	for _, st := range states {
		if st.seg.Kind != path.SegmentIndex {
			return ErrPathTypeMismatch
		}
		if st.seg.Index < nextIdx {
			continue
		}
		if int64(st.seg.Index) > maxIdx {
			maxIdx = int64(st.seg.Index)
		}
	}
	if maxIdx < 0 {
		return nil
	}
	for idx := int64(nextIdx); idx <= maxIdx; idx++ {
		var leafMatches []*pstate
		var child []pstate
		for i := range states {
			st := &states[i]
			if st.seg.Kind != path.SegmentIndex || int64(st.seg.Index) != idx {
				continue
			}
			if len(st.rest) == 0 {
				leafMatches = append(leafMatches, st)
			} else {
				child = append(child, *st)
			}
		}
		if len(leafMatches) == 0 && len(child) == 0 {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if err := emitSynthesized(w, leafMatches, child); err != nil {
			return err
		}
	}
	return nil
}
