package jsonrow

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ValueKind enumerates record value kinds.
type ValueKind uint8

const (
	ValNull ValueKind = iota
	ValBool
	ValInt
	ValFloat
	ValString
	ValBytes
	ValDecimal
	ValTime // date, time-of-day, and timestamps all carry a time.Time
	ValArray
	ValMap
	ValRow
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case ValNull:
		return "null"
	case ValBool:
		return "bool"
	case ValInt:
		return "int"
	case ValFloat:
		return "float"
	case ValString:
		return "string"
	case ValBytes:
		return "bytes"
	case ValDecimal:
		return "decimal"
	case ValTime:
		return "time"
	case ValArray:
		return "array"
	case ValMap:
		return "map"
	case ValRow:
		return "row"
	default:
		return "unknown"
	}
}

// Value is one structured record value. A record conforming to a row
// schema is a Value of kind row whose fields are accessed by position.
type Value struct {
	kind ValueKind

	// Scalar slots (only one valid based on kind)
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string
	bytesVal []byte
	decVal   decimal.Decimal
	timeVal  time.Time

	// Container slots
	elems   []*Value   // kind == ValArray
	entries []MapEntry // kind == ValMap
	fields  []*Value   // kind == ValRow, positional
}

// MapEntry is one key-value pair of a map value. Keys are typed values
// of the map's key type; they are stringified only at the JSON wire.
type MapEntry struct {
	Key   *Value
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: ValNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: ValBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: ValInt, intVal: v}
}

// Float creates a floating-point value.
func Float(v float64) *Value {
	return &Value{kind: ValFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: ValString, strVal: v}
}

// Bytes creates a binary value.
func Bytes(v []byte) *Value {
	return &Value{kind: ValBytes, bytesVal: v}
}

// Dec creates an exact decimal value.
func Dec(v decimal.Decimal) *Value {
	return &Value{kind: ValDecimal, decVal: v}
}

// DecString creates an exact decimal value from its string form.
// Panics on malformed input; intended for literals in tests and setup.
func DecString(s string) *Value {
	return Dec(decimal.RequireFromString(s))
}

// Moment creates a temporal value (date, time-of-day, or timestamp,
// depending on the schema slot it fills).
func Moment(v time.Time) *Value {
	return &Value{kind: ValTime, timeVal: v}
}

// Array creates an array value.
func Array(elems ...*Value) *Value {
	return &Value{kind: ValArray, elems: elems}
}

// MapVal creates a map value from entries.
func MapVal(entries ...MapEntry) *Value {
	return &Value{kind: ValMap, entries: entries}
}

// Entry builds a map entry.
func Entry(key, value *Value) MapEntry {
	return MapEntry{Key: key, Value: value}
}

// Row creates a row value with positional fields.
func Row(fields ...*Value) *Value {
	return &Value{kind: ValRow, fields: fields}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() ValueKind {
	if v == nil {
		return ValNull
	}
	return v.kind
}

// IsNull reports whether this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == ValNull
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil || v.kind != ValBool {
		return false, fmt.Errorf("jsonrow: expected bool, got %s", v.Kind())
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if v == nil || v.kind != ValInt {
		return 0, fmt.Errorf("jsonrow: expected int, got %s", v.Kind())
	}
	return v.intVal, nil
}

// AsFloat returns the floating-point value.
func (v *Value) AsFloat() (float64, error) {
	if v == nil || v.kind != ValFloat {
		return 0, fmt.Errorf("jsonrow: expected float, got %s", v.Kind())
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if v == nil || v.kind != ValString {
		return "", fmt.Errorf("jsonrow: expected string, got %s", v.Kind())
	}
	return v.strVal, nil
}

// AsBytes returns the binary value.
func (v *Value) AsBytes() ([]byte, error) {
	if v == nil || v.kind != ValBytes {
		return nil, fmt.Errorf("jsonrow: expected bytes, got %s", v.Kind())
	}
	return v.bytesVal, nil
}

// AsDec returns the decimal value.
func (v *Value) AsDec() (decimal.Decimal, error) {
	if v == nil || v.kind != ValDecimal {
		return decimal.Decimal{}, fmt.Errorf("jsonrow: expected decimal, got %s", v.Kind())
	}
	return v.decVal, nil
}

// AsMoment returns the temporal value.
func (v *Value) AsMoment() (time.Time, error) {
	if v == nil || v.kind != ValTime {
		return time.Time{}, fmt.Errorf("jsonrow: expected time, got %s", v.Kind())
	}
	return v.timeVal, nil
}

// AsArray returns the array elements.
func (v *Value) AsArray() ([]*Value, error) {
	if v == nil || v.kind != ValArray {
		return nil, fmt.Errorf("jsonrow: expected array, got %s", v.Kind())
	}
	return v.elems, nil
}

// AsMap returns the map entries.
func (v *Value) AsMap() ([]MapEntry, error) {
	if v == nil || v.kind != ValMap {
		return nil, fmt.Errorf("jsonrow: expected map, got %s", v.Kind())
	}
	return v.entries, nil
}

// AsRow returns the positional row fields.
func (v *Value) AsRow() ([]*Value, error) {
	if v == nil || v.kind != ValRow {
		return nil, fmt.Errorf("jsonrow: expected row, got %s", v.Kind())
	}
	return v.fields, nil
}

// FieldAt returns the i-th field of a row.
func (v *Value) FieldAt(i int) (*Value, error) {
	if v == nil || v.kind != ValRow {
		return nil, fmt.Errorf("jsonrow: not a row")
	}
	if i < 0 || i >= len(v.fields) {
		return nil, fmt.Errorf("jsonrow: field index %d out of bounds (arity=%d)", i, len(v.fields))
	}
	return v.fields[i], nil
}

// Len returns the length of an array, map, or row.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case ValArray:
		return len(v.elems)
	case ValMap:
		return len(v.entries)
	case ValRow:
		return len(v.fields)
	default:
		return 0
	}
}

// ============================================================
// Equality
// ============================================================

// Equal reports deep logical equality. Decimals compare by numeric
// value, temporals by time.Equal, maps order-insensitively.
func (v *Value) Equal(other *Value) bool {
	if v.IsNull() || other.IsNull() {
		return v.IsNull() && other.IsNull()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValBool:
		return v.boolVal == other.boolVal
	case ValInt:
		return v.intVal == other.intVal
	case ValFloat:
		return v.floatVal == other.floatVal
	case ValString:
		return v.strVal == other.strVal
	case ValBytes:
		return bytes.Equal(v.bytesVal, other.bytesVal)
	case ValDecimal:
		return v.decVal.Equal(other.decVal)
	case ValTime:
		return v.timeVal.Equal(other.timeVal)
	case ValArray:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	case ValMap:
		if len(v.entries) != len(other.entries) {
			return false
		}
		for _, e := range v.entries {
			oe, ok := other.lookupEntry(e.Key)
			if !ok || !e.Value.Equal(oe.Value) {
				return false
			}
		}
		return true
	case ValRow:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for i := range v.fields {
			if !v.fields[i].Equal(other.fields[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v *Value) lookupEntry(key *Value) (MapEntry, bool) {
	for _, e := range v.entries {
		if e.Key.Equal(key) {
			return e, true
		}
	}
	return MapEntry{}, false
}

// String renders a debug form of the value.
func (v *Value) String() string {
	if v.IsNull() {
		return "null"
	}
	switch v.kind {
	case ValBool:
		return fmt.Sprintf("bool(%v)", v.boolVal)
	case ValInt:
		return fmt.Sprintf("int(%d)", v.intVal)
	case ValFloat:
		return fmt.Sprintf("float(%v)", v.floatVal)
	case ValString:
		return fmt.Sprintf("string(%q)", v.strVal)
	case ValBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bytesVal))
	case ValDecimal:
		return fmt.Sprintf("decimal(%s)", v.decVal.String())
	case ValTime:
		return fmt.Sprintf("time(%s)", v.timeVal.Format(time.RFC3339Nano))
	case ValArray:
		return fmt.Sprintf("array(len=%d)", len(v.elems))
	case ValMap:
		return fmt.Sprintf("map(len=%d)", len(v.entries))
	case ValRow:
		return fmt.Sprintf("row(arity=%d)", len(v.fields))
	default:
		return "unknown"
	}
}
