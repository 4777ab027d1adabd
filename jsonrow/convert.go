package jsonrow

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// The converter registry: for a given schema type, a deterministic
// conversion function, composed recursively at codec construction and
// reused across all calls. Decode converters walk the intermediate
// node tree; the streaming decoder builds parallel closures over raw
// token bytes, but all scalar text handling goes through the shared
// helpers below so the two strategies accept identical coercions.

// decodeFn materializes a record value from a JSON node.
type decodeFn func(n *jsonNode) (*Value, error)

// newTreeConverter builds the decode converter for a schema type.
func newTreeConverter(t *Type, opts Options) (decodeFn, error) {
	inner, err := treeConverterFor(t, opts)
	if err != nil {
		return nil, err
	}
	return wrapNullable(t, inner), nil
}

// wrapNullable applies the null policy: JSON null decodes to a null
// value only when the target type is nullable.
func wrapNullable(t *Type, fn decodeFn) decodeFn {
	return func(n *jsonNode) (*Value, error) {
		if n == nil || n.kind == nodeNull {
			if t.Nullable {
				return Null(), nil
			}
			return nil, parseErrorf("null value for non-nullable type %s", t.Kind)
		}
		return fn(n)
	}
}

func treeConverterFor(t *Type, opts Options) (decodeFn, error) {
	switch t.Kind {
	case KindBoolean:
		return decodeTreeBool, nil
	case KindInt, KindBigInt:
		kind := t.Kind
		return func(n *jsonNode) (*Value, error) {
			text, err := scalarText(n, kind)
			if err != nil {
				return nil, err
			}
			return decodeIntText(kind, text)
		}, nil
	case KindFloat, KindDouble:
		kind := t.Kind
		return func(n *jsonNode) (*Value, error) {
			text, err := scalarText(n, kind)
			if err != nil {
				return nil, err
			}
			return decodeFloatText(text)
		}, nil
	case KindString:
		return decodeTreeString, nil
	case KindBinary:
		return func(n *jsonNode) (*Value, error) {
			if n.kind != nodeString {
				return nil, parseErrorf("cannot convert %s value to %s", n.kind, t.Kind)
			}
			return decodeBinaryText(n.strVal)
		}, nil
	case KindDecimal:
		prec, scale := t.Precision, t.Scale
		return func(n *jsonNode) (*Value, error) {
			text, err := scalarText(n, KindDecimal)
			if err != nil {
				return nil, err
			}
			return decodeDecimalText(text, prec, scale)
		}, nil
	case KindDate, KindTime, KindTimestamp, KindTimestampLTZ:
		kind, format := t.Kind, opts.TimestampFormat
		return func(n *jsonNode) (*Value, error) {
			if n.kind != nodeString {
				return nil, parseErrorf("cannot convert %s value to %s", n.kind, kind)
			}
			m, err := parseTemporal(kind, format, n.strVal)
			if err != nil {
				return nil, err
			}
			return Moment(m), nil
		}, nil
	case KindArray:
		elemFn, err := newTreeConverter(t.Elem, opts)
		if err != nil {
			return nil, err
		}
		return func(n *jsonNode) (*Value, error) {
			if n.kind != nodeArray {
				return nil, parseErrorf("cannot convert %s value to ARRAY", n.kind)
			}
			elems := make([]*Value, len(n.elems))
			for i, e := range n.elems {
				v, err := elemFn(e)
				if err != nil {
					return nil, err
				}
				elems[i] = v
			}
			return Array(elems...), nil
		}, nil
	case KindMap:
		keyType := t.Key
		keyFormat := opts.TimestampFormat
		valFn, err := newTreeConverter(t.Value, opts)
		if err != nil {
			return nil, err
		}
		return func(n *jsonNode) (*Value, error) {
			if n.kind != nodeObject {
				return nil, parseErrorf("cannot convert %s value to MAP", n.kind)
			}
			entries := make([]MapEntry, 0, len(n.fields))
			for _, f := range n.fields {
				key, err := decodeScalarText(keyType, keyFormat, f.key)
				if err != nil {
					return nil, err
				}
				val, err := valFn(f.val)
				if err != nil {
					return nil, err
				}
				entries = append(entries, MapEntry{Key: key, Value: val})
			}
			return MapVal(entries...), nil
		}, nil
	case KindRow:
		fns := make([]decodeFn, len(t.Fields))
		for i, f := range t.Fields {
			fn, err := newTreeConverter(f.Type, opts)
			if err != nil {
				return nil, err
			}
			fns[i] = fn
		}
		fields := t.Fields
		failOnMissing := opts.FailOnMissingField
		return func(n *jsonNode) (*Value, error) {
			if n.kind != nodeObject {
				return nil, parseErrorf("cannot convert %s value to ROW", n.kind)
			}
			out := make([]*Value, len(fields))
			for i, f := range fields {
				child := n.get(f.Name)
				if child == nil {
					if failOnMissing {
						return nil, &MissingFieldError{Field: f.Name}
					}
					// Absent optional field: default via null.
					out[i] = Null()
					continue
				}
				v, err := fns[i](child)
				if err != nil {
					return nil, decorateFieldError(f.Name, err)
				}
				out[i] = v
			}
			return Row(out...), nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported schema type kind %d", t.Kind)
	}
}

func decodeTreeBool(n *jsonNode) (*Value, error) {
	switch n.kind {
	case nodeBool:
		return Bool(n.boolVal), nil
	case nodeString:
		return decodeBoolText(n.strVal)
	default:
		return nil, parseErrorf("cannot convert %s value to BOOLEAN", n.kind)
	}
}

func decodeTreeString(n *jsonNode) (*Value, error) {
	switch n.kind {
	case nodeString:
		return Str(n.strVal), nil
	case nodeNumber:
		return Str(n.lexeme), nil
	case nodeBool:
		return Str(strconv.FormatBool(n.boolVal)), nil
	default:
		return nil, parseErrorf("cannot convert %s value to STRING", n.kind)
	}
}

// scalarText extracts the numeric/string lexeme for numeric targets.
// Numeric strings are an accepted coercion in both decode strategies.
func scalarText(n *jsonNode, target TypeKind) (string, error) {
	switch n.kind {
	case nodeNumber:
		return n.lexeme, nil
	case nodeString:
		return n.strVal, nil
	default:
		return "", parseErrorf("cannot convert %s value to %s", n.kind, target)
	}
}

func decorateFieldError(field string, err error) error {
	switch e := err.(type) {
	case *MissingFieldError:
		return err
	case *ParseError:
		// Flatten into one ParseError so the package prefix renders
		// once in the message chain.
		return &ParseError{Message: fmt.Sprintf("field '%s': %s", field, e.Message), Cause: e.Cause}
	default:
		return err
	}
}

// ============================================================
// Shared scalar decoding
// ============================================================
//
// Every textual-to-value conversion lives here so the tree and
// streaming decoders cannot drift apart.

func decodeBoolText(s string) (*Value, error) {
	switch {
	case strings.EqualFold(s, "true"):
		return Bool(true), nil
	case strings.EqualFold(s, "false"):
		return Bool(false), nil
	default:
		return nil, parseErrorf("malformed boolean literal '%s'", s)
	}
}

func decodeIntText(kind TypeKind, s string) (*Value, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, &ParseError{Message: "malformed integer literal '" + s + "'", Cause: err}
	}
	if kind == KindInt && (i > math.MaxInt32 || i < math.MinInt32) {
		return nil, parseErrorf("integer literal '%s' overflows INT", s)
	}
	return Int(i), nil
}

func decodeFloatText(s string) (*Value, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &ParseError{Message: "malformed number literal '" + s + "'", Cause: err}
	}
	return Float(f), nil
}

func decodeBinaryText(s string) (*Value, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &ParseError{Message: "malformed base64 literal", Cause: err}
	}
	return Bytes(b), nil
}

// decodeDecimalText parses either representation (number literal or
// quoted string) and fails if the literal does not fit the declared
// precision/scale.
func decodeDecimalText(s string, precision, scale int) (*Value, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &ParseError{Message: "malformed decimal literal '" + s + "'", Cause: err}
	}
	fitted, err := fitDecimal(d, precision, scale)
	if err != nil {
		return nil, err
	}
	return Dec(fitted), nil
}

// fitDecimal rounds to the declared scale and rejects values whose
// integral part exceeds precision-scale digits.
func fitDecimal(d decimal.Decimal, precision, scale int) (decimal.Decimal, error) {
	r := d.Round(int32(scale))
	limit := decimal.New(1, int32(precision-scale))
	if r.Abs().Cmp(limit) >= 0 {
		return decimal.Decimal{}, parseErrorf(
			"decimal literal '%s' does not fit DECIMAL(%d, %d)", d.String(), precision, scale)
	}
	return r, nil
}

// decodeScalarText reconstructs a scalar value of the given type from
// the text of a JSON object key. Both decode strategies route typed
// map keys through here.
func decodeScalarText(t *Type, format TimestampFormat, s string) (*Value, error) {
	switch t.Kind {
	case KindBoolean:
		return decodeBoolText(s)
	case KindInt, KindBigInt:
		return decodeIntText(t.Kind, s)
	case KindFloat, KindDouble:
		return decodeFloatText(s)
	case KindString:
		return Str(s), nil
	case KindBinary:
		return decodeBinaryText(s)
	case KindDecimal:
		return decodeDecimalText(s, t.Precision, t.Scale)
	case KindDate, KindTime, KindTimestamp, KindTimestampLTZ:
		m, err := parseTemporal(t.Kind, format, s)
		if err != nil {
			return nil, err
		}
		return Moment(m), nil
	default:
		return nil, parseErrorf("type %s cannot be decoded from key text", t.Kind)
	}
}
