package jsonrow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqualScalars(t *testing.T) {
	assert.True(t, Bool(true).Equal(Bool(true)))
	assert.False(t, Bool(true).Equal(Bool(false)))
	assert.False(t, Int(1).Equal(Float(1)))
	assert.True(t, Null().Equal(Null()))
	assert.False(t, Null().Equal(Int(0)))

	var nilVal *Value
	assert.True(t, nilVal.Equal(Null()))
}

func TestValueEqualDecimalIgnoresScale(t *testing.T) {
	assert.True(t, DecString("12.34").Equal(DecString("12.3400")))
	assert.False(t, DecString("12.34").Equal(DecString("12.35")))
}

func TestValueEqualTemporalComparesInstants(t *testing.T) {
	utc := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	zoned := utc.In(time.FixedZone("X", 3*3600))
	assert.True(t, Moment(utc).Equal(Moment(zoned)))
}

func TestValueEqualMapOrderInsensitive(t *testing.T) {
	a := MapVal(Entry(Str("x"), Int(1)), Entry(Str("y"), Int(2)))
	b := MapVal(Entry(Str("y"), Int(2)), Entry(Str("x"), Int(1)))
	assert.True(t, a.Equal(b))

	c := MapVal(Entry(Str("x"), Int(1)))
	assert.False(t, a.Equal(c))
}

func TestValueEqualNestedContainers(t *testing.T) {
	a := Row(Array(Int(1), Null()), Str("s"))
	b := Row(Array(Int(1), Null()), Str("s"))
	c := Row(Array(Int(1), Int(2)), Str("s"))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestValueAccessorsRejectWrongKind(t *testing.T) {
	v := Str("text")

	_, err := v.AsInt()
	assert.Error(t, err)
	_, err = v.AsBool()
	assert.Error(t, err)
	_, err = v.AsArray()
	assert.Error(t, err)

	s, err := v.AsStr()
	require.NoError(t, err)
	assert.Equal(t, "text", s)
}

func TestRowFieldAt(t *testing.T) {
	r := Row(Int(1), Str("two"))

	f, err := r.FieldAt(1)
	require.NoError(t, err)
	assert.True(t, Str("two").Equal(f))

	_, err = r.FieldAt(2)
	assert.Error(t, err)
	_, err = Str("nope").FieldAt(0)
	assert.Error(t, err)
}
