package writer

import werrors "github.com/tagwire/tagwire/internal/errors"

// WriteAny is the host-side polymorphic entry point: it inspects the
// dynamic type of v and dispatches to the narrowest canonical kind, per
// spec §4.4's write_any. Integers prefer the inline small form when they
// fit, then the narrowest varint; byte strings prefer small_bytes then
// var_int_bytes. Maps and slices recurse into objects and arrays so that
// host aggregates (e.g. values freshly parsed from JSON) can be written in
// one call.
func (w *Writer) WriteAny(v interface{}) error {
	switch x := v.(type) {
	case nil:
		return w.WriteNull()
	case bool:
		return w.WriteBool(x)
	case string:
		return w.WriteBytes([]byte(x))
	case []byte:
		return w.WriteBytes(x)
	case int:
		return w.WriteInt(int64(x))
	case int8:
		return w.WriteInt(int64(x))
	case int16:
		return w.WriteInt(int64(x))
	case int32:
		return w.WriteInt(int64(x))
	case int64:
		return w.WriteInt(x)
	case uint:
		return w.WriteUint(uint64(x))
	case uint8:
		return w.WriteUint(uint64(x))
	case uint16:
		return w.WriteUint(uint64(x))
	case uint32:
		return w.WriteUint(uint64(x))
	case uint64:
		return w.WriteUint(x)
	case float32:
		return w.WriteF64(float64(x))
	case float64:
		return w.WriteF64(x)
	case map[string]interface{}:
		return w.writeAnyObject(x)
	case []interface{}:
		return w.writeAnyArray(x)
	default:
		return werrors.Errorf("writer: WriteAny: unsupported host type %T", v)
	}
}

func (w *Writer) writeAnyObject(m map[string]interface{}) error {
	if err := w.StartObject(); err != nil {
		return err
	}
	for k, v := range m {
		if err := w.WriteBytes([]byte(k)); err != nil {
			return err
		}
		if err := w.WriteAny(v); err != nil {
			return err
		}
	}
	return w.EndContainer()
}

func (w *Writer) writeAnyArray(a []interface{}) error {
	if err := w.StartArray(); err != nil {
		return err
	}
	for _, v := range a {
		if err := w.WriteAny(v); err != nil {
			return err
		}
	}
	return w.EndContainer()
}
