package jsonrow

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
)

// Encoder converts structured records conforming to a row schema into
// JSON documents. It is stateless after construction and safe for
// concurrent use.
type Encoder struct {
	rowType *Type
	opts    Options
	root    encodeFn
}

// encodeFn emits a record value into the output buffer.
type encodeFn func(e *emitter, v *Value) error

type emitter struct {
	buf bytes.Buffer
}

// NewEncoder builds an encoder for the given row schema. The converter
// chain is composed once and reused across calls.
func NewEncoder(rowType *Type, opts Options) (*Encoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := rowType.validate(); err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	if rowType.Kind != KindRow {
		return nil, &ConfigError{Message: "encoder schema must be a ROW type"}
	}
	root, err := newEncodeConverter(rowType, opts)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	return &Encoder{rowType: rowType, opts: opts, root: root}, nil
}

// Encode walks the record against the row schema and returns one JSON
// document as UTF-8 text. Fields are emitted in declared order, never
// reordered. A value that does not conform to its declared type yields
// an EncodeTypeError.
func (enc *Encoder) Encode(record *Value) ([]byte, error) {
	if record.IsNull() {
		return nil, encodeErrorf("cannot encode null record")
	}
	e := &emitter{}
	if err := enc.root(e, record); err != nil {
		return nil, err
	}
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	return out, nil
}

// ============================================================
// Converter construction
// ============================================================

func newEncodeConverter(t *Type, opts Options) (encodeFn, error) {
	inner, err := encodeConverterFor(t, opts)
	if err != nil {
		return nil, err
	}
	nullable := t.Nullable
	kind := t.Kind
	return func(e *emitter, v *Value) error {
		if v.IsNull() {
			if !nullable {
				return encodeErrorf("null value for non-nullable type %s", kind)
			}
			e.buf.WriteString("null")
			return nil
		}
		return inner(e, v)
	}, nil
}

func encodeConverterFor(t *Type, opts Options) (encodeFn, error) {
	switch t.Kind {
	case KindBoolean:
		return func(e *emitter, v *Value) error {
			b, err := v.AsBool()
			if err != nil {
				return encodeErrorf("BOOLEAN field holds %s value", v.Kind())
			}
			e.buf.WriteString(strconv.FormatBool(b))
			return nil
		}, nil

	case KindInt, KindBigInt:
		kind := t.Kind
		return func(e *emitter, v *Value) error {
			i, err := v.AsInt()
			if err != nil {
				return encodeErrorf("%s field holds %s value", kind, v.Kind())
			}
			if kind == KindInt && (i > math.MaxInt32 || i < math.MinInt32) {
				return encodeErrorf("value %d overflows INT", i)
			}
			e.buf.WriteString(strconv.FormatInt(i, 10))
			return nil
		}, nil

	case KindFloat, KindDouble:
		bitSize := 64
		if t.Kind == KindFloat {
			bitSize = 32
		}
		kind := t.Kind
		return func(e *emitter, v *Value) error {
			f, err := v.AsFloat()
			if err != nil {
				return encodeErrorf("%s field holds %s value", kind, v.Kind())
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return encodeErrorf("%s value is not a finite number", kind)
			}
			e.buf.WriteString(strconv.FormatFloat(f, 'g', -1, bitSize))
			return nil
		}, nil

	case KindString:
		return func(e *emitter, v *Value) error {
			s, err := v.AsStr()
			if err != nil {
				return encodeErrorf("STRING field holds %s value", v.Kind())
			}
			appendJSONString(&e.buf, s)
			return nil
		}, nil

	case KindBinary:
		return func(e *emitter, v *Value) error {
			b, err := v.AsBytes()
			if err != nil {
				return encodeErrorf("BYTES field holds %s value", v.Kind())
			}
			appendJSONString(&e.buf, base64.StdEncoding.EncodeToString(b))
			return nil
		}, nil

	case KindDecimal:
		prec, scale := t.Precision, t.Scale
		plain := opts.DecimalAsPlainNumber
		return func(e *emitter, v *Value) error {
			d, err := v.AsDec()
			if err != nil {
				return encodeErrorf("DECIMAL field holds %s value", v.Kind())
			}
			if _, err := fitDecimal(d, prec, scale); err != nil {
				return encodeErrorf("decimal value '%s' does not fit DECIMAL(%d, %d)", d.String(), prec, scale)
			}
			text := d.StringFixed(int32(scale))
			if plain {
				e.buf.WriteString(text)
			} else {
				appendJSONString(&e.buf, text)
			}
			return nil
		}, nil

	case KindDate, KindTime, KindTimestamp, KindTimestampLTZ:
		kind, format := t.Kind, opts.TimestampFormat
		return func(e *emitter, v *Value) error {
			m, err := v.AsMoment()
			if err != nil {
				return encodeErrorf("%s field holds %s value", kind, v.Kind())
			}
			appendJSONString(&e.buf, formatTemporal(kind, format, m))
			return nil
		}, nil

	case KindArray:
		elemFn, err := newEncodeConverter(t.Elem, opts)
		if err != nil {
			return nil, err
		}
		return func(e *emitter, v *Value) error {
			elems, err := v.AsArray()
			if err != nil {
				return encodeErrorf("ARRAY field holds %s value", v.Kind())
			}
			e.buf.WriteByte('[')
			for i, elem := range elems {
				if i > 0 {
					e.buf.WriteByte(',')
				}
				if err := elemFn(e, elem); err != nil {
					return err
				}
			}
			e.buf.WriteByte(']')
			return nil
		}, nil

	case KindMap:
		keyType := t.Key
		valFn, err := newEncodeConverter(t.Value, opts)
		if err != nil {
			return nil, err
		}
		mode := opts.MapNullKeyMode
		literal := opts.MapNullKeyLiteral
		format := opts.TimestampFormat
		return func(e *emitter, v *Value) error {
			entries, err := v.AsMap()
			if err != nil {
				return encodeErrorf("MAP field holds %s value", v.Kind())
			}
			e.buf.WriteByte('{')
			first := true
			for _, entry := range entries {
				var keyText string
				if entry.Key.IsNull() {
					switch mode {
					case MapNullKeyModeLiteral:
						keyText = literal
					case MapNullKeyModeDrop:
						continue
					default: // FAIL
						return encodeErrorf(
							"JSON format doesn't support to map nullable keys, you can drop or replace them via %s",
							OptMapNullKeyMode)
					}
				} else {
					keyText, err = encodeKeyText(keyType, format, entry.Key)
					if err != nil {
						return err
					}
				}
				if !first {
					e.buf.WriteByte(',')
				}
				first = false
				appendJSONString(&e.buf, keyText)
				e.buf.WriteByte(':')
				if err := valFn(e, entry.Value); err != nil {
					return err
				}
			}
			e.buf.WriteByte('}')
			return nil
		}, nil

	case KindRow:
		fns := make([]encodeFn, len(t.Fields))
		for i, f := range t.Fields {
			fn, err := newEncodeConverter(f.Type, opts)
			if err != nil {
				return nil, err
			}
			fns[i] = fn
		}
		fields := t.Fields
		ignoreNull := opts.IgnoreNullFields
		return func(e *emitter, v *Value) error {
			vals, err := v.AsRow()
			if err != nil {
				return encodeErrorf("ROW field holds %s value", v.Kind())
			}
			if len(vals) != len(fields) {
				return encodeErrorf("record arity %d does not match schema arity %d", len(vals), len(fields))
			}
			e.buf.WriteByte('{')
			first := true
			for i, f := range fields {
				if vals[i].IsNull() && ignoreNull {
					continue
				}
				if !first {
					e.buf.WriteByte(',')
				}
				first = false
				appendJSONString(&e.buf, f.Name)
				e.buf.WriteByte(':')
				if err := fns[i](e, vals[i]); err != nil {
					return err
				}
			}
			e.buf.WriteByte('}')
			return nil
		}, nil

	default:
		return nil, fmt.Errorf("unsupported schema type kind %d", t.Kind)
	}
}

// encodeKeyText stringifies a non-null map key per its value type.
func encodeKeyText(t *Type, format TimestampFormat, key *Value) (string, error) {
	switch t.Kind {
	case KindBoolean:
		b, err := key.AsBool()
		if err != nil {
			return "", encodeErrorf("BOOLEAN map key holds %s value", key.Kind())
		}
		return strconv.FormatBool(b), nil
	case KindInt, KindBigInt:
		i, err := key.AsInt()
		if err != nil {
			return "", encodeErrorf("%s map key holds %s value", t.Kind, key.Kind())
		}
		return strconv.FormatInt(i, 10), nil
	case KindFloat, KindDouble:
		f, err := key.AsFloat()
		if err != nil {
			return "", encodeErrorf("%s map key holds %s value", t.Kind, key.Kind())
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case KindString:
		s, err := key.AsStr()
		if err != nil {
			return "", encodeErrorf("STRING map key holds %s value", key.Kind())
		}
		return s, nil
	case KindBinary:
		b, err := key.AsBytes()
		if err != nil {
			return "", encodeErrorf("BYTES map key holds %s value", key.Kind())
		}
		return base64.StdEncoding.EncodeToString(b), nil
	case KindDecimal:
		d, err := key.AsDec()
		if err != nil {
			return "", encodeErrorf("DECIMAL map key holds %s value", key.Kind())
		}
		return d.StringFixed(int32(t.Scale)), nil
	case KindDate, KindTime, KindTimestamp, KindTimestampLTZ:
		m, err := key.AsMoment()
		if err != nil {
			return "", encodeErrorf("%s map key holds %s value", t.Kind, key.Kind())
		}
		return formatTemporal(t.Kind, format, m), nil
	default:
		return "", encodeErrorf("type %s cannot be used as a map key", t.Kind)
	}
}

// appendJSONString writes a quoted, escaped JSON string.
func appendJSONString(buf *bytes.Buffer, s string) {
	const hexDigits = "0123456789abcdef"
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			buf.WriteString(`\"`)
		case c == '\\':
			buf.WriteString(`\\`)
		case c == '\n':
			buf.WriteString(`\n`)
		case c == '\r':
			buf.WriteString(`\r`)
		case c == '\t':
			buf.WriteString(`\t`)
		case c < 0x20:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0xf])
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}
