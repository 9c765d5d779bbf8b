// Package jsonproj implements the JSON projection described in spec §4.5: a
// pretty-printer that reads an encoded buffer with a Reader and writes JSON
// text to a sink, without ever materializing an intermediate tree.
package jsonproj

import (
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	rerrors "github.com/tagwire/tagwire/internal/errors"
	"github.com/tagwire/tagwire/reader"
	"github.com/tagwire/tagwire/wire"
)

var (
	// ErrInvalidUTF8 is returned when a bytes-family payload destined for a
	// JSON string is not valid UTF-8.
	ErrInvalidUTF8 = rerrors.New("jsonproj: bytes payload is not valid UTF-8")
	// ErrNonFiniteFloat is returned when a float value is NaN or +/-Inf;
	// JSON has no literal for either.
	ErrNonFiniteFloat = rerrors.New("jsonproj: non-finite float has no JSON representation")
)

// Print reads one value from r and writes its JSON text form to out,
// indented with two spaces per nesting level.
func Print(r *reader.Reader, out io.Writer) error {
	v, err := r.Read()
	if err != nil {
		return err
	}
	p := &printer{r: r, out: out}
	return p.value(v, 0)
}

type printer struct {
	r   *reader.Reader
	out io.Writer
}

func (p *printer) writeString(s string) error {
	_, err := io.WriteString(p.out, s)
	return err
}

func (p *printer) indent(depth int) error {
	for i := 0; i < depth; i++ {
		if err := p.writeString("  "); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) value(v wire.Value, depth int) error {
	switch v.Kind {
	case wire.Object:
		return p.object(depth)
	case wire.Array:
		return p.array(depth)
	case wire.Null:
		return p.writeString("null")
	case wire.Bool:
		if v.Bool() {
			return p.writeString("true")
		}
		return p.writeString("false")
	case wire.U8, wire.U16, wire.U32, wire.U64, wire.SmallUint, wire.VarIntUnsigned:
		return p.writeString(strconv.FormatUint(v.Uint64(), 10))
	case wire.I8, wire.I16, wire.I32, wire.I64, wire.SmallIntPositive, wire.SmallIntNegative,
		wire.VarIntSignedPositive, wire.VarIntSignedNegative:
		return p.writeString(strconv.FormatInt(v.Int64(), 10))
	case wire.F16, wire.F32:
		return p.float(float64(v.Float32()))
	case wire.F64:
		return p.float(v.Float64())
	case wire.Bytes, wire.VarIntBytes, wire.SmallBytes:
		return p.jsonString(v.Raw)
	case wire.TypedArray:
		return p.typedArray(v)
	default:
		return rerrors.Errorf("jsonproj: unexpected kind %s at top of value", v.Kind)
	}
}

func (p *printer) float(f float64) error {
	if !isFinite(f) {
		return ErrNonFiniteFloat
	}
	return p.writeString(strconv.FormatFloat(f, 'g', -1, 64))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (p *printer) object(depth int) error {
	if err := p.writeString("{"); err != nil {
		return err
	}
	first := true
	for {
		key, val, ok, err := p.r.NextObjectEntry()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if !first {
			if err := p.writeString(","); err != nil {
				return err
			}
		}
		first = false
		if err := p.writeString("\n"); err != nil {
			return err
		}
		if err := p.indent(depth + 1); err != nil {
			return err
		}
		if err := p.jsonString(key); err != nil {
			return err
		}
		if err := p.writeString(": "); err != nil {
			return err
		}
		if err := p.value(val, depth+1); err != nil {
			return err
		}
	}
	if !first {
		if err := p.writeString("\n"); err != nil {
			return err
		}
		if err := p.indent(depth); err != nil {
			return err
		}
	}
	return p.writeString("}")
}

func (p *printer) array(depth int) error {
	if err := p.writeString("["); err != nil {
		return err
	}
	first := true
	for {
		val, ok, err := p.r.NextArrayElement()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if !first {
			if err := p.writeString(","); err != nil {
				return err
			}
		}
		first = false
		if err := p.writeString("\n"); err != nil {
			return err
		}
		if err := p.indent(depth + 1); err != nil {
			return err
		}
		if err := p.value(val, depth+1); err != nil {
			return err
		}
	}
	if !first {
		if err := p.writeString("\n"); err != nil {
			return err
		}
		if err := p.indent(depth); err != nil {
			return err
		}
	}
	return p.writeString("]")
}

func (p *printer) typedArray(v wire.Value) error {
	if err := p.writeString("["); err != nil {
		return err
	}
	for i := 0; i < v.Count; i++ {
		if i > 0 {
			if err := p.writeString(", "); err != nil {
				return err
			}
		}
		s, err := elemLiteral(v, i)
		if err != nil {
			return err
		}
		if err := p.writeString(s); err != nil {
			return err
		}
	}
	return p.writeString("]")
}

func elemLiteral(v wire.Value, i int) (string, error) {
	size := v.Elem.Size()
	raw := v.Raw[i*size : (i+1)*size]
	switch v.Elem {
	case wire.ElemU8:
		return strconv.FormatUint(uint64(raw[0]), 10), nil
	case wire.ElemI8:
		return strconv.FormatInt(int64(int8(raw[0])), 10), nil
	case wire.ElemU16:
		return strconv.FormatUint(uint64(le16(raw)), 10), nil
	case wire.ElemI16:
		return strconv.FormatInt(int64(int16(le16(raw))), 10), nil
	case wire.ElemU32:
		return strconv.FormatUint(uint64(le32(raw)), 10), nil
	case wire.ElemI32:
		return strconv.FormatInt(int64(int32(le32(raw))), 10), nil
	case wire.ElemU64:
		return strconv.FormatUint(le64(raw), 10), nil
	case wire.ElemI64:
		return strconv.FormatInt(int64(le64(raw)), 10), nil
	case wire.ElemF16:
		f := wire.Float16ToFloat32(uint16(le16(raw)))
		if !isFinite(float64(f)) {
			return "", ErrNonFiniteFloat
		}
		return strconv.FormatFloat(float64(f), 'g', -1, 32), nil
	case wire.ElemF32:
		bits := le32(raw)
		f := float32FromBits(bits)
		if !isFinite(float64(f)) {
			return "", ErrNonFiniteFloat
		}
		return strconv.FormatFloat(float64(f), 'g', -1, 32), nil
	case wire.ElemF64:
		bits := le64(raw)
		f := float64FromBits(bits)
		if !isFinite(f) {
			return "", ErrNonFiniteFloat
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	default:
		return "", rerrors.Errorf("jsonproj: unknown typed_array element kind %s", v.Elem)
	}
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func le64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// jsonString writes raw, UTF-8 validated, as a double-quoted JSON string
// literal with control characters escaped.
func (p *printer) jsonString(raw []byte) error {
	if !utf8.Valid(raw) {
		return ErrInvalidUTF8
	}
	if err := p.writeString(`"`); err != nil {
		return err
	}
	start := 0
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if start < i {
			if err := p.writeString(string(raw[start:i])); err != nil {
				return err
			}
		}
		switch c {
		case '"':
			if err := p.writeString(`\"`); err != nil {
				return err
			}
		case '\\':
			if err := p.writeString(`\\`); err != nil {
				return err
			}
		case '\b':
			if err := p.writeString(`\b`); err != nil {
				return err
			}
		case '\t':
			if err := p.writeString(`\t`); err != nil {
				return err
			}
		case '\n':
			if err := p.writeString(`\n`); err != nil {
				return err
			}
		case '\f':
			if err := p.writeString(`\f`); err != nil {
				return err
			}
		case '\r':
			if err := p.writeString(`\r`); err != nil {
				return err
			}
		default:
			if err := p.writeString(`\u00` + hexByte(c)); err != nil {
				return err
			}
		}
		start = i + 1
	}
	if start < len(raw) {
		if err := p.writeString(string(raw[start:])); err != nil {
			return err
		}
	}
	return p.writeString(`"`)
}

const hexDigits = "0123456789abcdef"

func hexByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xF]})
}

func float32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }

func float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }
