package jsonrow

import "errors"

// Decoder materializes structured records from JSON documents.
//
// Decode consumes one document and returns the record, or (nil, nil)
// when the record was skipped under ignore-parse-errors, or an error.
// Implementations are stateless after construction and safe for
// concurrent use.
type Decoder interface {
	Decode(data []byte) (*Value, error)
}

// NewDecoder builds the decoder selected by the options: the streaming
// decoder when decode.json-parser.enabled is set, the tree decoder
// otherwise. The strategy is fixed once at construction; there is no
// per-call branching.
func NewDecoder(rowType *Type, opts Options) (Decoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := rowType.validate(); err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	if rowType.Kind != KindRow {
		return nil, &ConfigError{Message: "decoder schema must be a ROW type"}
	}
	if opts.UseStreamingDecoder {
		return newStreamDecoder(rowType, opts)
	}
	return newTreeDecoder(rowType, opts)
}

// TreeDecoder parses the document into an intermediate node tree and
// walks it against the row schema. Tolerant of field reordering,
// unknown object keys, and absent optional fields.
type TreeDecoder struct {
	rowType *Type
	opts    Options
	root    decodeFn
}

func newTreeDecoder(rowType *Type, opts Options) (*TreeDecoder, error) {
	root, err := newTreeConverter(rowType, opts)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	return &TreeDecoder{rowType: rowType, opts: opts, root: root}, nil
}

// Decode implements Decoder.
func (d *TreeDecoder) Decode(data []byte) (*Value, error) {
	node, err := parseTree(data)
	if err != nil {
		return nil, decodeOutcome(d.opts, err)
	}
	v, err := d.root(node)
	if err != nil {
		return nil, decodeOutcome(d.opts, err)
	}
	return v, nil
}

// decodeOutcome applies the skip-vs-fail policy shared by both decode
// strategies: under ignore-parse-errors a ParseError is swallowed and
// the caller receives no record for the input. Missing-field
// strictness and parse-error skipping are mutually exclusive by
// construction, so a MissingFieldError always propagates when it
// fires.
func decodeOutcome(opts Options, err error) error {
	if opts.IgnoreParseErrors {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil
		}
	}
	return err
}
