// Package jsonrow implements a schema-driven codec between structured
// rows and JSON text.
//
// A row schema is an immutable tree of typed field descriptors
// (primitives, exact decimals, temporals, binary, arrays, maps, nested
// rows). The codec converts conforming records to JSON documents and
// back; it never infers types from the JSON itself.
//
// # Data Model
//
// Scalars: null, boolean, int, bigint, float, double, string, bytes,
// decimal(p,s), date, time, timestamp, timestamp_ltz
// Containers: array<T>, map<K,V>, row(named fields)
//
// # Decode Strategies
//
// Two interchangeable decoders share one contract:
//   - Tree: parses the document into an intermediate node tree, then
//     walks it against the schema. Tolerant of field reordering and
//     optional fields.
//   - Streaming: drives a pull token reader directly against the
//     schema shape, skipping the intermediate tree. Lower allocation
//     overhead on hot paths.
//
// Both accept the same scalar coercions (e.g. a numeric string for a
// numeric field) and produce logically equal records for the same
// input.
//
// # Configuration
//
// Behavior is fixed at construction from an Options bundle:
// missing-field strictness, parse-error skipping (mutually exclusive
// with the former), SQL vs ISO-8601 temporal text, null map-key
// handling, decimal encoding shape, null-field omission, and decoder
// selection. See Options and OptionsFromMap.
//
// # Example
//
//	rt := RowOf(
//	    Field("id", BigIntType()),
//	    Field("name", StringType().AsNullable()),
//	    Field("score", DecimalType(10, 2)),
//	)
//	codec, err := New(rt, DefaultOptions())
//	if err != nil { ... }
//	rec, err := codec.Decode([]byte(`{"id":7,"name":"ada","score":"99.50"}`))
//	out, err := codec.Encode(rec)
//
// A codec is stateless after construction and safe for concurrent use.
package jsonrow
