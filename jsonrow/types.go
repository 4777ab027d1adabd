package jsonrow

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeKind enumerates schema type kinds.
type TypeKind uint8

const (
	KindBoolean TypeKind = iota
	KindInt
	KindBigInt
	KindFloat
	KindDouble
	KindString
	KindBinary
	KindDecimal
	KindDate
	KindTime
	KindTimestamp    // local date-time, no zone
	KindTimestampLTZ // instant, zone-adjusted text
	KindArray
	KindMap
	KindRow
)

// String returns the kind name.
func (k TypeKind) String() string {
	switch k {
	case KindBoolean:
		return "BOOLEAN"
	case KindInt:
		return "INT"
	case KindBigInt:
		return "BIGINT"
	case KindFloat:
		return "FLOAT"
	case KindDouble:
		return "DOUBLE"
	case KindString:
		return "STRING"
	case KindBinary:
		return "BYTES"
	case KindDecimal:
		return "DECIMAL"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindTimestampLTZ:
		return "TIMESTAMP_LTZ"
	case KindArray:
		return "ARRAY"
	case KindMap:
		return "MAP"
	case KindRow:
		return "ROW"
	default:
		return "UNKNOWN"
	}
}

// Type is one node of an immutable schema tree. A Type is fully
// resolved before codec construction; the codec never infers types.
type Type struct {
	Kind     TypeKind
	Nullable bool

	// Decimal parameters (Kind == KindDecimal)
	Precision int
	Scale     int

	// Container types
	Elem   *Type      // Kind == KindArray
	Key    *Type      // Kind == KindMap
	Value  *Type      // Kind == KindMap
	Fields []RowField // Kind == KindRow
}

// RowField is one named, typed field of a row schema.
type RowField struct {
	Name string
	Type *Type
}

// ============================================================
// Constructors
// ============================================================

// BooleanType returns a non-nullable BOOLEAN type.
func BooleanType() *Type { return &Type{Kind: KindBoolean} }

// IntType returns a non-nullable 32-bit integer type.
func IntType() *Type { return &Type{Kind: KindInt} }

// BigIntType returns a non-nullable 64-bit integer type.
func BigIntType() *Type { return &Type{Kind: KindBigInt} }

// FloatType returns a non-nullable 32-bit float type.
func FloatType() *Type { return &Type{Kind: KindFloat} }

// DoubleType returns a non-nullable 64-bit float type.
func DoubleType() *Type { return &Type{Kind: KindDouble} }

// StringType returns a non-nullable STRING type.
func StringType() *Type { return &Type{Kind: KindString} }

// BinaryType returns a non-nullable BYTES type.
func BinaryType() *Type { return &Type{Kind: KindBinary} }

// DecimalType returns a non-nullable DECIMAL(precision, scale) type.
func DecimalType(precision, scale int) *Type {
	return &Type{Kind: KindDecimal, Precision: precision, Scale: scale}
}

// DateType returns a non-nullable DATE type.
func DateType() *Type { return &Type{Kind: KindDate} }

// TimeType returns a non-nullable TIME type.
func TimeType() *Type { return &Type{Kind: KindTime} }

// TimestampType returns a non-nullable local TIMESTAMP type.
func TimestampType() *Type { return &Type{Kind: KindTimestamp} }

// TimestampLTZType returns a non-nullable instant TIMESTAMP_LTZ type.
func TimestampLTZType() *Type { return &Type{Kind: KindTimestampLTZ} }

// ArrayOf returns a non-nullable ARRAY type with the given element type.
func ArrayOf(elem *Type) *Type { return &Type{Kind: KindArray, Elem: elem} }

// MapOf returns a non-nullable MAP type with the given key and value types.
func MapOf(key, value *Type) *Type {
	return &Type{Kind: KindMap, Key: key, Value: value}
}

// RowOf returns a non-nullable ROW type with the given fields in order.
func RowOf(fields ...RowField) *Type {
	return &Type{Kind: KindRow, Fields: fields}
}

// Field builds a row field.
func Field(name string, t *Type) RowField {
	return RowField{Name: name, Type: t}
}

// AsNullable returns a nullable copy of the type. The receiver is not
// modified.
func (t *Type) AsNullable() *Type {
	c := *t
	c.Nullable = true
	return &c
}

// ============================================================
// Rendering
// ============================================================

// String renders the type in the compact type-string grammar accepted
// by ParseType. Nullable types carry no suffix; non-nullable types are
// suffixed with NOT NULL, matching the grammar's nullable default.
func (t *Type) String() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t *Type) writeTo(sb *strings.Builder) {
	switch t.Kind {
	case KindDecimal:
		sb.WriteString("DECIMAL(")
		sb.WriteString(strconv.Itoa(t.Precision))
		sb.WriteString(", ")
		sb.WriteString(strconv.Itoa(t.Scale))
		sb.WriteString(")")
	case KindArray:
		sb.WriteString("ARRAY<")
		t.Elem.writeTo(sb)
		sb.WriteString(">")
	case KindMap:
		sb.WriteString("MAP<")
		t.Key.writeTo(sb)
		sb.WriteString(", ")
		t.Value.writeTo(sb)
		sb.WriteString(">")
	case KindRow:
		sb.WriteString("ROW<")
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(" ")
			f.Type.writeTo(sb)
		}
		sb.WriteString(">")
	default:
		sb.WriteString(t.Kind.String())
	}
	if !t.Nullable {
		sb.WriteString(" NOT NULL")
	}
}

// ============================================================
// Validation
// ============================================================

// validate checks that the schema tree is well formed. Callers wrap
// the result in a ConfigError at codec construction.
func (t *Type) validate() error {
	if t == nil {
		return fmt.Errorf("schema type is nil")
	}
	switch t.Kind {
	case KindDecimal:
		if t.Precision < 1 {
			return fmt.Errorf("decimal precision must be >= 1, got %d", t.Precision)
		}
		if t.Scale < 0 || t.Scale > t.Precision {
			return fmt.Errorf("decimal scale must be in [0, %d], got %d", t.Precision, t.Scale)
		}
	case KindArray:
		if t.Elem == nil {
			return fmt.Errorf("array type has no element type")
		}
		return t.Elem.validate()
	case KindMap:
		if t.Key == nil || t.Value == nil {
			return fmt.Errorf("map type has no key or value type")
		}
		if err := t.Key.validate(); err != nil {
			return err
		}
		return t.Value.validate()
	case KindRow:
		seen := make(map[string]struct{}, len(t.Fields))
		for _, f := range t.Fields {
			if f.Name == "" {
				return fmt.Errorf("row field has empty name")
			}
			if _, dup := seen[f.Name]; dup {
				return fmt.Errorf("row has duplicate field '%s'", f.Name)
			}
			seen[f.Name] = struct{}{}
			if err := f.Type.validate(); err != nil {
				return fmt.Errorf("field '%s': %w", f.Name, err)
			}
		}
	}
	return nil
}
