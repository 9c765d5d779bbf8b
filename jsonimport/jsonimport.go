// Package jsonimport parses JSON text directly into Writer calls, without
// building an intermediate tree. It is the host-language-binding layer
// spec.md §1 marks out of the core's scope, grounded on the teacher's own
// buger/jsonparser-based document.NewFromJSON / parseJSONValue.
package jsonimport

import (
	"github.com/buger/jsonparser"

	rerrors "github.com/tagwire/tagwire/internal/errors"
	"github.com/tagwire/tagwire/writer"
)

// Import parses one JSON value from data and emits it to w. Objects and
// arrays recurse through the same jsonparser.ObjectEach/ArrayEach
// tokenizer the teacher uses, so nested structures never allocate an
// intermediate map[string]interface{}.
func Import(w *writer.Writer, data []byte) error {
	val, dataType, _, err := jsonparser.Get(trimLeading(data))
	if err != nil {
		return rerrors.Wrap(err, "jsonimport: parsing top-level value")
	}
	return writeValue(w, dataType, val, data)
}

// trimLeading mirrors jsonparser.Get's own leading-whitespace tolerance;
// jsonparser.Get(data) with no keys returns the whole top-level value.
func trimLeading(data []byte) []byte { return data }

func writeValue(w *writer.Writer, dataType jsonparser.ValueType, value, raw []byte) error {
	switch dataType {
	case jsonparser.Null:
		return w.WriteNull()
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return rerrors.Wrap(err, "jsonimport: parsing boolean")
		}
		return w.WriteBool(b)
	case jsonparser.Number:
		if i, err := jsonparser.ParseInt(value); err == nil {
			return w.WriteInt(i)
		}
		f, err := jsonparser.ParseFloat(value)
		if err != nil {
			return rerrors.Wrap(err, "jsonimport: parsing number")
		}
		return w.WriteF64(f)
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return rerrors.Wrap(err, "jsonimport: parsing string")
		}
		return w.WriteBytes([]byte(s))
	case jsonparser.Array:
		return writeArray(w, value)
	case jsonparser.Object:
		return writeObject(w, value)
	default:
		return rerrors.Errorf("jsonimport: unsupported JSON value type %v", dataType)
	}
}

func writeObject(w *writer.Writer, data []byte) error {
	if err := w.StartObject(); err != nil {
		return err
	}
	var cbErr error
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, offset int) error {
		if cbErr != nil {
			return cbErr
		}
		if err := w.WriteBytes(key); err != nil {
			cbErr = err
			return err
		}
		if err := writeValue(w, dataType, value, data); err != nil {
			cbErr = err
			return err
		}
		return nil
	})
	if cbErr != nil {
		return cbErr
	}
	if err != nil {
		return rerrors.Wrap(err, "jsonimport: parsing object")
	}
	return w.EndContainer()
}

func writeArray(w *writer.Writer, data []byte) error {
	if err := w.StartArray(); err != nil {
		return err
	}
	var cbErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if cbErr != nil || err != nil {
			if cbErr == nil {
				cbErr = err
			}
			return
		}
		cbErr = writeValue(w, dataType, value, data)
	})
	if cbErr != nil {
		return cbErr
	}
	if err != nil {
		return rerrors.Wrap(err, "jsonimport: parsing array")
	}
	return w.EndContainer()
}
