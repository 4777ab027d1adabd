package jsonrow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decoderVariants builds one decoder per strategy. Every decode test
// runs against both; their observable behavior must not drift.
func decoderVariants(t *testing.T, schema *Type, opts Options) map[string]Decoder {
	t.Helper()
	variants := make(map[string]Decoder, 2)

	opts.UseStreamingDecoder = false
	tree, err := NewDecoder(schema, opts)
	require.NoError(t, err)
	variants["tree"] = tree

	opts.UseStreamingDecoder = true
	stream, err := NewDecoder(schema, opts)
	require.NoError(t, err)
	variants["stream"] = stream

	return variants
}

func TestDecodeCoercions(t *testing.T) {
	schema := RowOf(
		Field("i", IntType().AsNullable()),
		Field("l", BigIntType().AsNullable()),
		Field("d", DoubleType().AsNullable()),
		Field("dec", DecimalType(10, 2).AsNullable()),
		Field("flag", BooleanType().AsNullable()),
		Field("s1", StringType().AsNullable()),
		Field("s2", StringType().AsNullable()),
	)
	doc := `{"i":"123","l":"-9876543210","d":"1.5","dec":"12.3","flag":"TRUE","s1":12.5,"s2":false}`
	want := Row(
		Int(123),
		Int(-9876543210),
		Float(1.5),
		DecString("12.30"),
		Bool(true),
		Str("12.5"),
		Str("false"),
	)

	for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			got, err := dec.Decode([]byte(doc))
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
}

func TestDecodeRejectsContainerCoercion(t *testing.T) {
	cases := []struct {
		name   string
		schema *Type
		doc    string
	}{
		{"array to int", RowOf(Field("i", IntType().AsNullable())), `{"i":[1]}`},
		{"object to string", RowOf(Field("s", StringType().AsNullable())), `{"s":{"a":1}}`},
		{"number to boolean", RowOf(Field("b", BooleanType().AsNullable())), `{"b":1}`},
		{"number to timestamp", RowOf(Field("ts", TimestampType().AsNullable())), `{"ts":1724666000}`},
		{"string to array", RowOf(Field("a", ArrayOf(BigIntType().AsNullable()).AsNullable())), `{"a":"1,2"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for name, dec := range decoderVariants(t, tc.schema, DefaultOptions()) {
				t.Run(name, func(t *testing.T) {
					_, err := dec.Decode([]byte(tc.doc))
					var parseErr *ParseError
					require.ErrorAs(t, err, &parseErr)
				})
			}
		})
	}
}

func TestDecodeIntOverflow(t *testing.T) {
	schema := RowOf(Field("i", IntType().AsNullable()))

	for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			_, err := dec.Decode([]byte(`{"i":2147483648}`))
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)

			got, err := dec.Decode([]byte(`{"i":2147483647}`))
			require.NoError(t, err)
			assert.True(t, Row(Int(2147483647)).Equal(got))
		})
	}
}

func TestDecodeMissingFieldDefaultsToNull(t *testing.T) {
	schema := RowOf(
		Field("present", BigIntType().AsNullable()),
		Field("absent", StringType().AsNullable()),
	)

	for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			got, err := dec.Decode([]byte(`{"present":1}`))
			require.NoError(t, err)
			assert.True(t, Row(Int(1), Null()).Equal(got))
		})
	}
}

func TestDecodeMissingFieldStrict(t *testing.T) {
	schema := RowOf(
		Field("present", BigIntType().AsNullable()),
		Field("absent", StringType().AsNullable()),
	)
	opts := DefaultOptions()
	opts.FailOnMissingField = true

	for name, dec := range decoderVariants(t, schema, opts) {
		t.Run(name, func(t *testing.T) {
			_, err := dec.Decode([]byte(`{"present":1}`))
			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, "absent", missing.Field)
			assert.Equal(t, "jsonrow: could not find field with name 'absent'", err.Error())

			got, err := dec.Decode([]byte(`{"present":1,"absent":"x"}`))
			require.NoError(t, err)
			assert.True(t, Row(Int(1), Str("x")).Equal(got))
		})
	}
}

func TestDecodeNullForNonNullable(t *testing.T) {
	schema := RowOf(Field("s", StringType()))

	for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			_, err := dec.Decode([]byte(`{"s":null}`))
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	schema := RowOf(Field("id", BigIntType().AsNullable()))

	for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			got, err := dec.Decode([]byte(`{"extra":{"deep":[true]},"id":9,"more":"x"}`))
			require.NoError(t, err)
			assert.True(t, Row(Int(9)).Equal(got))
		})
	}
}

func TestDecodeDuplicateKeysLastWins(t *testing.T) {
	schema := RowOf(
		Field("a", IntType().AsNullable()),
		Field("m", MapOf(StringType(), IntType().AsNullable()).AsNullable()),
	)

	for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			want := Row(Int(2), MapVal(Entry(Str("k"), Int(2))))

			got, err := dec.Decode([]byte(`{"a":1,"a":2,"m":{"k":1,"k":2}}`))
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)

			// An overwritten occurrence never reaches conversion, even
			// when it would not coerce to the field type.
			got, err = dec.Decode([]byte(`{"a":"bad","a":2,"m":{"k":"bad","k":2}}`))
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
}

func TestDecodeTopLevelMustBeObject(t *testing.T) {
	schema := RowOf(Field("a", BigIntType().AsNullable()))

	for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			for _, doc := range []string{`[1,2]`, `"text"`, `42`, `true`} {
				_, err := dec.Decode([]byte(doc))
				var parseErr *ParseError
				assert.ErrorAs(t, err, &parseErr, "doc %s", doc)
			}
		})
	}
}

func TestDecodeTopLevelNull(t *testing.T) {
	nullable := RowOf(Field("a", BigIntType().AsNullable())).AsNullable()
	strict := RowOf(Field("a", BigIntType().AsNullable()))

	for name, dec := range decoderVariants(t, nullable, DefaultOptions()) {
		t.Run(name+"/nullable", func(t *testing.T) {
			got, err := dec.Decode([]byte(`null`))
			require.NoError(t, err)
			assert.True(t, got.IsNull())
		})
	}
	for name, dec := range decoderVariants(t, strict, DefaultOptions()) {
		t.Run(name+"/non-nullable", func(t *testing.T) {
			_, err := dec.Decode([]byte(`null`))
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestDecodeTimestampFormats(t *testing.T) {
	schema := RowOf(
		Field("ts", TimestampType().AsNullable()),
		Field("ltz", TimestampLTZType().AsNullable()),
	)
	wantTS := time.Date(2026, 8, 26, 10, 11, 12, 0, time.UTC)

	t.Run("SQL", func(t *testing.T) {
		for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
			t.Run(name, func(t *testing.T) {
				got, err := dec.Decode([]byte(`{"ts":"2026-08-26 10:11:12","ltz":"2026-08-26 10:11:12Z"}`))
				require.NoError(t, err)
				assert.True(t, Row(Moment(wantTS), Moment(wantTS)).Equal(got))

				// ISO text under the SQL profile is malformed.
				_, err = dec.Decode([]byte(`{"ts":"2026-08-26T10:11:12","ltz":null}`))
				var parseErr *ParseError
				require.ErrorAs(t, err, &parseErr)
			})
		}
	})

	t.Run("ISO-8601", func(t *testing.T) {
		opts := DefaultOptions()
		opts.TimestampFormat = TimestampFormatISO8601
		for name, dec := range decoderVariants(t, schema, opts) {
			t.Run(name, func(t *testing.T) {
				got, err := dec.Decode([]byte(`{"ts":"2026-08-26T10:11:12","ltz":"2026-08-26T10:11:12Z"}`))
				require.NoError(t, err)
				assert.True(t, Row(Moment(wantTS), Moment(wantTS)).Equal(got))

				_, err = dec.Decode([]byte(`{"ts":"2026-08-26 10:11:12","ltz":null}`))
				var parseErr *ParseError
				require.ErrorAs(t, err, &parseErr)
			})
		}
	})
}

func TestDecodeLTZOffsetNormalization(t *testing.T) {
	schema := RowOf(Field("ltz", TimestampLTZType().AsNullable()))
	want := time.Date(2026, 8, 26, 8, 11, 12, 0, time.UTC)

	for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			got, err := dec.Decode([]byte(`{"ltz":"2026-08-26 10:11:12+02:00"}`))
			require.NoError(t, err)
			field, err := got.FieldAt(0)
			require.NoError(t, err)
			m, err := field.AsMoment()
			require.NoError(t, err)
			assert.True(t, want.Equal(m), "got %s", m)
		})
	}
}

func TestDecodeIgnoreParseErrorsSkips(t *testing.T) {
	schema := RowOf(Field("i", IntType().AsNullable()))
	opts := DefaultOptions()
	opts.IgnoreParseErrors = true

	skippable := []string{
		`{oops`,
		`{"i":[1]}`,
		`{"i":"abc"}`,
		`{"i":99999999999}`,
		`[1]`,
	}

	for name, dec := range decoderVariants(t, schema, opts) {
		t.Run(name, func(t *testing.T) {
			for _, doc := range skippable {
				got, err := dec.Decode([]byte(doc))
				assert.NoError(t, err, "doc %s", doc)
				assert.Nil(t, got, "doc %s", doc)
			}

			// Clean records still come through.
			got, err := dec.Decode([]byte(`{"i":5}`))
			require.NoError(t, err)
			assert.True(t, Row(Int(5)).Equal(got))
		})
	}
}

func TestDecodeFieldErrorNamesField(t *testing.T) {
	schema := RowOf(Field("amount", DecimalType(4, 2).AsNullable()))

	for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			_, err := dec.Decode([]byte(`{"amount":"123.45"}`))
			require.Error(t, err)
			assert.Equal(t,
				"jsonrow: field 'amount': decimal literal '123.45' does not fit DECIMAL(4, 2)",
				err.Error())
		})
	}
}

func TestDecodeNestedRowsAndArrays(t *testing.T) {
	schema := RowOf(
		Field("rows", ArrayOf(RowOf(
			Field("k", StringType().AsNullable()),
			Field("v", BigIntType().AsNullable()),
		).AsNullable()).AsNullable()),
	)
	doc := `{"rows":[{"k":"a","v":1},null,{"v":2}]}`
	want := Row(Array(
		Row(Str("a"), Int(1)),
		Null(),
		Row(Null(), Int(2)),
	))

	for name, dec := range decoderVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			got, err := dec.Decode([]byte(doc))
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
}
