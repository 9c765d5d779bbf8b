package main

import (
	"bytes"
	"os"

	"github.com/urfave/cli/v2"

	rerrors "github.com/tagwire/tagwire/internal/errors"
	"github.com/tagwire/tagwire/jsonproj"
	"github.com/tagwire/tagwire/path"
	"github.com/tagwire/tagwire/reader"
	"github.com/tagwire/tagwire/wire"
)

var getCommand = &cli.Command{
	Name:      "get",
	Usage:     "resolve a path against a tagwire binary document and print it as JSON",
	UsageText: "tagwire get <path> [file.tw]",
	Action: func(c *cli.Context) error {
		if c.Args().Len() < 1 {
			return rerrors.New("tagwire get: missing path argument")
		}
		p := []byte(c.Args().Get(0))
		data, err := readInput(c.Args().Get(1))
		if err != nil {
			return err
		}

		span, found, err := resolveSpan(data, p)
		if err != nil {
			return err
		}
		if !found {
			return rerrors.Errorf("tagwire get: path %q not found", p)
		}

		var out bytes.Buffer
		if err := jsonproj.Print(reader.New(data[span.start:span.end]), &out); err != nil {
			return err
		}
		out.WriteByte('\n')
		_, err = os.Stdout.Write(out.Bytes())
		return err
	},
}

type byteSpan struct{ start, end int }

// resolveSpan walks data the same way patch's single-pass traversal does --
// reading keys and values directly rather than through NextObjectEntry/
// NextArrayElement -- so it can capture the exact byte range a path
// resolves to and hand it to jsonproj without rebuilding the value.
func resolveSpan(data []byte, p []byte) (byteSpan, bool, error) {
	r := reader.New(data)
	root, err := r.Read()
	if err != nil {
		return byteSpan{}, false, err
	}
	if len(p) == 0 {
		end, err := containerEnd(r, root)
		if err != nil {
			return byteSpan{}, false, err
		}
		return byteSpan{0, end}, true, nil
	}
	return resolveSpanIn(r, root, p)
}

// containerEnd returns the position just past v's value: for a scalar,
// the cursor is already there; for a container whose open tag was just
// read, it drains the body first.
func containerEnd(r *reader.Reader, v wire.Value) (int, error) {
	if v.Kind == wire.Object || v.Kind == wire.Array {
		if err := r.FinishContainer(v.Kind); err != nil {
			return 0, err
		}
	}
	return r.Pos(), nil
}

func resolveSpanIn(r *reader.Reader, cur wire.Value, p []byte) (byteSpan, bool, error) {
	seg, rest, ok := path.ParseSegment(p)
	if !ok {
		return byteSpan{}, false, nil
	}
	if cur.Kind != wire.Object && cur.Kind != wire.Array {
		return byteSpan{}, false, nil
	}
	if (cur.Kind == wire.Object) != (seg.Kind == path.SegmentKey) {
		return byteSpan{}, false, r.FinishContainer(cur.Kind)
	}

	idx := uint64(0)
	for {
		var key []byte
		if cur.Kind == wire.Object {
			k, err := r.Read()
			if err != nil {
				return byteSpan{}, false, err
			}
			if k.Kind == wire.ContainerEnd {
				return byteSpan{}, false, nil
			}
			key = k.Raw
		}

		valStart := r.Pos()
		val, err := r.Read()
		if err != nil {
			return byteSpan{}, false, err
		}
		if cur.Kind == wire.Array && val.Kind == wire.ContainerEnd {
			return byteSpan{}, false, nil
		}

		matched := false
		if cur.Kind == wire.Object {
			matched = bytes.Equal(key, seg.Key)
		} else {
			matched = idx == seg.Index
			idx++
		}

		if matched {
			if len(rest) == 0 {
				end, err := containerEnd(r, val)
				if err != nil {
					return byteSpan{}, false, err
				}
				if err := r.FinishContainer(cur.Kind); err != nil {
					return byteSpan{}, false, err
				}
				return byteSpan{valStart, end}, true, nil
			}
			span, found, err := resolveSpanIn(r, val, rest)
			if err != nil {
				return byteSpan{}, false, err
			}
			if err := r.FinishContainer(cur.Kind); err != nil {
				return byteSpan{}, false, err
			}
			return span, found, nil
		}

		if val.Kind == wire.Object || val.Kind == wire.Array {
			if err := r.FinishContainer(val.Kind); err != nil {
				return byteSpan{}, false, err
			}
		}
	}
}
