package jsonrow

import (
	"fmt"

	"github.com/buger/jsonparser"
)

// StreamDecoder materializes records by driving the pull token reader
// directly against the schema shape, without building an intermediate
// node tree. Selected via decode.json-parser.enabled. Its observable
// behavior matches the tree decoder for all policy-permitted inputs;
// scalar text goes through the same shared helpers, so both strategies
// accept the same coercions.
type StreamDecoder struct {
	rowType *Type
	opts    Options
	root    *streamRow
}

// streamFn materializes a value from one raw token span.
type streamFn func(raw []byte, vt jsonparser.ValueType) (*Value, error)

// streamRow is the compiled shape of a row object: field converters
// indexed by position plus the name lookup used during the walk.
type streamRow struct {
	fields        []RowField
	index         map[string]int
	fns           []streamFn
	failOnMissing bool
}

func newStreamDecoder(rowType *Type, opts Options) (*StreamDecoder, error) {
	row, err := compileStreamRow(rowType, opts)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	return &StreamDecoder{rowType: rowType, opts: opts, root: row}, nil
}

// Decode implements Decoder.
func (d *StreamDecoder) Decode(data []byte) (*Value, error) {
	raw, vt, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, decodeOutcome(d.opts, &ParseError{Message: "malformed JSON document", Cause: err})
	}
	if vt == jsonparser.Null {
		if d.rowType.Nullable {
			return Null(), nil
		}
		return nil, decodeOutcome(d.opts, parseErrorf("null value for non-nullable type %s", d.rowType.Kind))
	}
	if vt != jsonparser.Object {
		return nil, decodeOutcome(d.opts, parseErrorf("cannot convert %s value to ROW", streamKindName(vt)))
	}
	v, err := d.root.decode(raw)
	if err != nil {
		return nil, decodeOutcome(d.opts, err)
	}
	return v, nil
}

// ============================================================
// Row walking
// ============================================================

func compileStreamRow(t *Type, opts Options) (*streamRow, error) {
	row := &streamRow{
		fields:        t.Fields,
		index:         make(map[string]int, len(t.Fields)),
		fns:           make([]streamFn, len(t.Fields)),
		failOnMissing: opts.FailOnMissingField,
	}
	for i, f := range t.Fields {
		fn, err := newStreamConverter(f.Type, opts)
		if err != nil {
			return nil, err
		}
		row.index[f.Name] = i
		row.fns[i] = fn
	}
	return row, nil
}

// rawSpan is one captured token span. Conversion is deferred until the
// object walk completes so duplicate keys resolve last-write-wins
// before any occurrence is converted, matching the tree decoder.
type rawSpan struct {
	raw []byte
	vt  jsonparser.ValueType
	set bool
}

func (r *streamRow) decode(raw []byte) (*Value, error) {
	spans := make([]rawSpan, len(r.fields))
	err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, vt jsonparser.ValueType, offset int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return &ParseError{Message: "malformed object key", Cause: err}
		}
		i, ok := r.index[name]
		if !ok {
			// Unknown keys are ignored.
			return nil
		}
		spans[i] = rawSpan{raw: value, vt: vt, set: true}
		return nil
	})
	if err != nil {
		if isDecodeError(err) {
			return nil, err
		}
		return nil, &ParseError{Message: "malformed object", Cause: err}
	}
	out := make([]*Value, len(r.fields))
	for i, f := range r.fields {
		if !spans[i].set {
			if r.failOnMissing {
				return nil, &MissingFieldError{Field: f.Name}
			}
			out[i] = Null()
			continue
		}
		v, err := r.fns[i](spans[i].raw, spans[i].vt)
		if err != nil {
			return nil, decorateFieldError(f.Name, err)
		}
		out[i] = v
	}
	return Row(out...), nil
}

// ============================================================
// Converter construction
// ============================================================

func newStreamConverter(t *Type, opts Options) (streamFn, error) {
	inner, err := streamConverterFor(t, opts)
	if err != nil {
		return nil, err
	}
	nullable := t.Nullable
	kind := t.Kind
	return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
		if vt == jsonparser.Null {
			if nullable {
				return Null(), nil
			}
			return nil, parseErrorf("null value for non-nullable type %s", kind)
		}
		return inner(raw, vt)
	}, nil
}

func streamConverterFor(t *Type, opts Options) (streamFn, error) {
	switch t.Kind {
	case KindBoolean:
		return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
			switch vt {
			case jsonparser.Boolean:
				b, err := jsonparser.ParseBoolean(raw)
				if err != nil {
					return nil, &ParseError{Message: "malformed boolean literal", Cause: err}
				}
				return Bool(b), nil
			case jsonparser.String:
				s, err := unescapeStream(raw)
				if err != nil {
					return nil, err
				}
				return decodeBoolText(s)
			default:
				return nil, parseErrorf("cannot convert %s value to BOOLEAN", streamKindName(vt))
			}
		}, nil

	case KindInt, KindBigInt:
		kind := t.Kind
		return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
			text, err := streamScalarText(raw, vt, kind)
			if err != nil {
				return nil, err
			}
			return decodeIntText(kind, text)
		}, nil

	case KindFloat, KindDouble:
		kind := t.Kind
		return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
			text, err := streamScalarText(raw, vt, kind)
			if err != nil {
				return nil, err
			}
			return decodeFloatText(text)
		}, nil

	case KindString:
		return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
			switch vt {
			case jsonparser.String:
				s, err := unescapeStream(raw)
				if err != nil {
					return nil, err
				}
				return Str(s), nil
			case jsonparser.Number:
				return Str(string(raw)), nil
			case jsonparser.Boolean:
				return Str(string(raw)), nil
			default:
				return nil, parseErrorf("cannot convert %s value to STRING", streamKindName(vt))
			}
		}, nil

	case KindBinary:
		return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
			if vt != jsonparser.String {
				return nil, parseErrorf("cannot convert %s value to BYTES", streamKindName(vt))
			}
			s, err := unescapeStream(raw)
			if err != nil {
				return nil, err
			}
			return decodeBinaryText(s)
		}, nil

	case KindDecimal:
		prec, scale := t.Precision, t.Scale
		return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
			text, err := streamScalarText(raw, vt, KindDecimal)
			if err != nil {
				return nil, err
			}
			return decodeDecimalText(text, prec, scale)
		}, nil

	case KindDate, KindTime, KindTimestamp, KindTimestampLTZ:
		kind, format := t.Kind, opts.TimestampFormat
		return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
			if vt != jsonparser.String {
				return nil, parseErrorf("cannot convert %s value to %s", streamKindName(vt), kind)
			}
			s, err := unescapeStream(raw)
			if err != nil {
				return nil, err
			}
			m, err := parseTemporal(kind, format, s)
			if err != nil {
				return nil, err
			}
			return Moment(m), nil
		}, nil

	case KindArray:
		elemFn, err := newStreamConverter(t.Elem, opts)
		if err != nil {
			return nil, err
		}
		return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
			if vt != jsonparser.Array {
				return nil, parseErrorf("cannot convert %s value to ARRAY", streamKindName(vt))
			}
			var elems []*Value
			var elemErr error
			_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
				if elemErr != nil {
					return
				}
				if err != nil {
					elemErr = &ParseError{Message: "malformed array element", Cause: err}
					return
				}
				v, err := elemFn(value, dataType)
				if err != nil {
					elemErr = err
					return
				}
				elems = append(elems, v)
			})
			if err != nil {
				return nil, &ParseError{Message: "malformed array", Cause: err}
			}
			if elemErr != nil {
				return nil, elemErr
			}
			return Array(elems...), nil
		}, nil

	case KindMap:
		keyType := t.Key
		keyFormat := opts.TimestampFormat
		valFn, err := newStreamConverter(t.Value, opts)
		if err != nil {
			return nil, err
		}
		return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
			if vt != jsonparser.Object {
				return nil, parseErrorf("cannot convert %s value to MAP", streamKindName(vt))
			}
			// Capture spans first; duplicate keys overwrite in place so
			// only the surviving occurrence is converted.
			var spans []keyedSpan
			seen := make(map[string]int)
			err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
				keyText, err := jsonparser.ParseString(key)
				if err != nil {
					return &ParseError{Message: "malformed object key", Cause: err}
				}
				if i, dup := seen[keyText]; dup {
					spans[i] = keyedSpan{key: keyText, raw: value, vt: dataType}
					return nil
				}
				seen[keyText] = len(spans)
				spans = append(spans, keyedSpan{key: keyText, raw: value, vt: dataType})
				return nil
			})
			if err != nil {
				if isDecodeError(err) {
					return nil, err
				}
				return nil, &ParseError{Message: "malformed object", Cause: err}
			}
			entries := make([]MapEntry, 0, len(spans))
			for _, sp := range spans {
				k, err := decodeScalarText(keyType, keyFormat, sp.key)
				if err != nil {
					return nil, err
				}
				v, err := valFn(sp.raw, sp.vt)
				if err != nil {
					return nil, err
				}
				entries = append(entries, MapEntry{Key: k, Value: v})
			}
			return MapVal(entries...), nil
		}, nil

	case KindRow:
		row, err := compileStreamRow(t, opts)
		if err != nil {
			return nil, err
		}
		return func(raw []byte, vt jsonparser.ValueType) (*Value, error) {
			if vt != jsonparser.Object {
				return nil, parseErrorf("cannot convert %s value to ROW", streamKindName(vt))
			}
			return row.decode(raw)
		}, nil

	default:
		return nil, fmt.Errorf("unsupported schema type kind %d", t.Kind)
	}
}

// keyedSpan is one captured map entry span, converted after the walk.
type keyedSpan struct {
	key string
	raw []byte
	vt  jsonparser.ValueType
}

// streamScalarText mirrors scalarText for raw token spans.
func streamScalarText(raw []byte, vt jsonparser.ValueType, target TypeKind) (string, error) {
	switch vt {
	case jsonparser.Number:
		return string(raw), nil
	case jsonparser.String:
		return unescapeStream(raw)
	default:
		return "", parseErrorf("cannot convert %s value to %s", streamKindName(vt), target)
	}
}

func unescapeStream(raw []byte) (string, error) {
	s, err := jsonparser.ParseString(raw)
	if err != nil {
		return "", &ParseError{Message: "malformed string literal", Cause: err}
	}
	return s, nil
}

// streamKindName names jsonparser value types the same way the tree
// decoder names node kinds, so both strategies surface identical
// mismatch messages.
func streamKindName(vt jsonparser.ValueType) string {
	switch vt {
	case jsonparser.Null:
		return "null"
	case jsonparser.Boolean:
		return "boolean"
	case jsonparser.Number:
		return "number"
	case jsonparser.String:
		return "string"
	case jsonparser.Array:
		return "array"
	case jsonparser.Object:
		return "object"
	default:
		return "unknown"
	}
}

func isDecodeError(err error) bool {
	switch err.(type) {
	case *ParseError, *MissingFieldError:
		return true
	default:
		return false
	}
}
