// Package path implements the JSON-pointer-like path grammar of spec §4.3:
// a '.'-separated sequence of key and bracketed-index segments used to
// address a value inside a document without decoding the whole thing.
package path

import (
	"bytes"
	"strconv"

	rerrors "github.com/tagwire/tagwire/internal/errors"
)

// SegmentKind distinguishes an object-key segment from an array-index one.
type SegmentKind int

const (
	SegmentKey SegmentKind = iota
	SegmentIndex
)

// Segment is one parsed step of a path: either a key (matched against
// object entry keys byte-for-byte) or a numeric index (matched against an
// array's 0-based position).
type Segment struct {
	Kind  SegmentKind
	Key   []byte
	Index uint64
}

var (
	// ErrMalformedPath is returned by Validate for a path that cannot be
	// parsed into a sequence of segments at all.
	ErrMalformedPath = rerrors.New("path: malformed path")
)

// ParseSegment splits the single next segment off the front of p, returning
// it, the remainder (ready for a recursive call), and whether parsing
// succeeded. An empty p has no next segment (ok is false), and neither has
// a bare key followed by a '[' that is never closed (ok is false for "a[").
//
// Grammar (spec §4.3):
//
//	path       := segment ('.'? segment)*   ('.' may be omitted before '[')
//	segment    := bare_key | quoted_key | '[' index ']' | '[' quoted_key ']'
//	bare_key   := [^.\[]+
//	quoted_key := '"' ... '"' | '\'' ... '\''   (backslash-escaped)
//	index      := [0-9]+
func ParseSegment(p []byte) (seg Segment, rest []byte, ok bool) {
	if len(p) == 0 {
		return Segment{}, nil, false
	}

	if p[0] == '[' {
		end := indexOfUnescaped(p[1:], ']')
		if end < 0 {
			return Segment{}, nil, false
		}
		inner := p[1 : 1+end]
		after := p[1+end+1:]
		after = trimLeadingDot(after)

		if len(inner) >= 2 && (inner[0] == '"' || inner[0] == '\'') {
			key, ok2 := unquote(inner)
			if !ok2 {
				return Segment{}, nil, false
			}
			return Segment{Kind: SegmentKey, Key: key}, after, true
		}

		idx, err := strconv.ParseUint(string(inner), 10, 64)
		if err != nil {
			return Segment{}, nil, false
		}
		return Segment{Kind: SegmentIndex, Index: idx}, after, true
	}

	if p[0] == '"' || p[0] == '\'' {
		end := indexOfClosingQuote(p, p[0])
		if end < 0 {
			return Segment{}, nil, false
		}
		key, ok2 := unquote(p[:end+1])
		if !ok2 {
			return Segment{}, nil, false
		}
		after := trimLeadingDot(p[end+1:])
		return Segment{Kind: SegmentKey, Key: key}, after, true
	}

	end := 0
	for end < len(p) && p[end] != '.' && p[end] != '[' {
		end++
	}
	if end == 0 {
		return Segment{}, nil, false
	}
	if end < len(p) && p[end] == '[' && bytes.IndexByte(p[end+1:], ']') < 0 {
		return Segment{}, nil, false
	}
	after := trimLeadingDot(p[end:])
	return Segment{Kind: SegmentKey, Key: p[:end]}, after, true
}

func trimLeadingDot(p []byte) []byte {
	if len(p) > 0 && p[0] == '.' {
		return p[1:]
	}
	return p
}

func indexOfUnescaped(p []byte, c byte) int {
	for i := 0; i < len(p); i++ {
		if p[i] == c {
			return i
		}
	}
	return -1
}

func indexOfClosingQuote(p []byte, q byte) int {
	for i := 1; i < len(p); i++ {
		if p[i] == '\\' {
			i++
			continue
		}
		if p[i] == q {
			return i
		}
	}
	return -1
}

func unquote(p []byte) ([]byte, bool) {
	if len(p) < 2 || p[0] != p[len(p)-1] {
		return nil, false
	}
	q := p[0]
	body := p[1 : len(p)-1]
	if bytes.IndexByte(body, '\\') == -1 {
		return body, true
	}
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == q || body[i+1] == '\\') {
			out = append(out, body[i+1])
			i++
			continue
		}
		out = append(out, body[i])
	}
	return out, true
}

// Validate reports whether p parses completely into a well-formed segment
// sequence, consuming it to the end with no leftover garbage.
func Validate(p []byte) error {
	for len(p) > 0 {
		_, rest, ok := ParseSegment(p)
		if !ok {
			return ErrMalformedPath
		}
		if len(rest) >= len(p) {
			return ErrMalformedPath
		}
		p = rest
	}
	return nil
}

// Segments parses p fully into its segment sequence.
func Segments(p []byte) ([]Segment, error) {
	var out []Segment
	for len(p) > 0 {
		seg, rest, ok := ParseSegment(p)
		if !ok || len(rest) >= len(p) {
			return nil, ErrMalformedPath
		}
		out = append(out, seg)
		p = rest
	}
	return out, nil
}
