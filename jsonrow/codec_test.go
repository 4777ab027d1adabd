package jsonrow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// codecVariants builds one codec per decode strategy so every test
// exercises both.
func codecVariants(t *testing.T, schema *Type, opts Options) map[string]*Codec {
	t.Helper()
	variants := make(map[string]*Codec, 2)

	opts.UseStreamingDecoder = false
	tree, err := New(schema, opts)
	require.NoError(t, err)
	variants["tree"] = tree

	opts.UseStreamingDecoder = true
	stream, err := New(schema, opts)
	require.NoError(t, err)
	variants["stream"] = stream

	return variants
}

func TestCodecRoundTripAllTypes(t *testing.T) {
	schema := RowOf(
		Field("b", BooleanType().AsNullable()),
		Field("i", IntType().AsNullable()),
		Field("l", BigIntType().AsNullable()),
		Field("f", FloatType().AsNullable()),
		Field("d", DoubleType().AsNullable()),
		Field("s", StringType().AsNullable()),
		Field("bin", BinaryType().AsNullable()),
		Field("dec", DecimalType(10, 2).AsNullable()),
		Field("day", DateType().AsNullable()),
		Field("clock", TimeType().AsNullable()),
		Field("ts", TimestampType().AsNullable()),
		Field("ltz", TimestampLTZType().AsNullable()),
		Field("arr", ArrayOf(BigIntType().AsNullable()).AsNullable()),
		Field("m", MapOf(StringType(), BigIntType().AsNullable()).AsNullable()),
		Field("nested", RowOf(Field("x", StringType().AsNullable())).AsNullable()),
	)

	record := Row(
		Bool(true),
		Int(42),
		Int(1<<40),
		Float(0.25),
		Float(2.5),
		Str("héllo \"quoted\"\n"),
		Bytes([]byte{1, 2, 3}),
		DecString("12.34"),
		Moment(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)),
		Moment(time.Date(0, time.January, 1, 10, 11, 12, 500000000, time.UTC)),
		Moment(time.Date(2026, 8, 26, 10, 11, 12, 123000000, time.UTC)),
		Moment(time.Date(2026, 8, 26, 10, 11, 12, 0, time.UTC)),
		Array(Int(1), Int(2), Null()),
		MapVal(Entry(Str("a"), Int(1)), Entry(Str("b"), Null())),
		Row(Str("deep")),
	)

	for _, format := range []TimestampFormat{TimestampFormatSQL, TimestampFormatISO8601} {
		t.Run(string(format), func(t *testing.T) {
			opts := DefaultOptions()
			opts.TimestampFormat = format
			for name, codec := range codecVariants(t, schema, opts) {
				t.Run(name, func(t *testing.T) {
					data, err := codec.Encode(record)
					require.NoError(t, err)

					decoded, err := codec.Decode(data)
					require.NoError(t, err)
					require.NotNil(t, decoded)
					assert.True(t, record.Equal(decoded),
						"round trip mismatch:\n json: %s\n got:  %s", data, decoded)
				})
			}
		})
	}
}

func TestCodecRoundTripNullFields(t *testing.T) {
	schema := RowOf(
		Field("id", BigIntType()),
		Field("note", StringType().AsNullable()),
	)
	record := Row(Int(7), Null())

	for name, codec := range codecVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			data, err := codec.Encode(record)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":7,"note":null}`, string(data))

			decoded, err := codec.Decode(data)
			require.NoError(t, err)
			assert.True(t, record.Equal(decoded))
		})
	}
}

func TestCodecRoundTripTypedMapKeys(t *testing.T) {
	schema := RowOf(
		Field("byDay", MapOf(DateType(), BigIntType().AsNullable()).AsNullable()),
		Field("byNum", MapOf(IntType(), StringType().AsNullable()).AsNullable()),
	)
	record := Row(
		MapVal(
			Entry(Moment(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)), Int(10)),
			Entry(Moment(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)), Int(20)),
		),
		MapVal(Entry(Int(5), Str("five"))),
	)

	for name, codec := range codecVariants(t, schema, DefaultOptions()) {
		t.Run(name, func(t *testing.T) {
			data, err := codec.Encode(record)
			require.NoError(t, err)
			assert.JSONEq(t, `{"byDay":{"2026-08-25":10,"2026-08-26":20},"byNum":{"5":"five"}}`, string(data))

			decoded, err := codec.Decode(data)
			require.NoError(t, err)
			assert.True(t, record.Equal(decoded))
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	schema := RowOf(Field("amount", DecimalType(10, 2).AsNullable()))

	codec, err := NewFromConfig(schema, map[string]string{
		OptDecimalAsPlain: "true",
	})
	require.NoError(t, err)

	data, err := codec.Encode(Row(DecString("3.5")))
	require.NoError(t, err)
	assert.Equal(t, `{"amount":3.50}`, string(data))

	_, err = NewFromConfig(schema, map[string]string{
		OptIgnoreParseErrors: "maybe",
	})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewRejectsNonRowSchema(t *testing.T) {
	var cfgErr *ConfigError

	_, err := NewEncoder(StringType(), DefaultOptions())
	require.ErrorAs(t, err, &cfgErr)

	_, err = NewDecoder(ArrayOf(BigIntType()), DefaultOptions())
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewRejectsMalformedSchema(t *testing.T) {
	cases := []*Type{
		RowOf(Field("", StringType())),
		RowOf(Field("a", StringType()), Field("a", BigIntType())),
		RowOf(Field("d", DecimalType(0, 0))),
		RowOf(Field("d", DecimalType(5, 9))),
		RowOf(Field("arr", &Type{Kind: KindArray})),
	}

	for i, schema := range cases {
		_, err := New(schema, DefaultOptions())
		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr, "case %d", i)
	}
}
