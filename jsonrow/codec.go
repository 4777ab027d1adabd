package jsonrow

// Codec pairs an encoder and a decoder over one row schema and one
// configuration bundle. Both are derived once at construction; the
// codec holds no other state and is safe for unsynchronized concurrent
// use.
type Codec struct {
	encoder *Encoder
	decoder Decoder
}

// New builds a codec for a fully resolved row schema. The options are
// validated (including the fail-on-missing-field / ignore-parse-errors
// mutual exclusion) before any converter is composed.
func New(rowType *Type, opts Options) (*Codec, error) {
	enc, err := NewEncoder(rowType, opts)
	if err != nil {
		return nil, err
	}
	dec, err := NewDecoder(rowType, opts)
	if err != nil {
		return nil, err
	}
	return &Codec{encoder: enc, decoder: dec}, nil
}

// NewFromConfig builds a codec from the string-keyed configuration
// bundle handed over by the surrounding connector layer.
func NewFromConfig(rowType *Type, config map[string]string) (*Codec, error) {
	opts, err := OptionsFromMap(config)
	if err != nil {
		return nil, err
	}
	return New(rowType, opts)
}

// Encode converts one record into one JSON document.
func (c *Codec) Encode(record *Value) ([]byte, error) {
	return c.encoder.Encode(record)
}

// Decode converts one JSON document into one record. Under
// ignore-parse-errors an unparsable document yields (nil, nil).
func (c *Codec) Decode(data []byte) (*Value, error) {
	return c.decoder.Decode(data)
}

// Decoder exposes the selected decode strategy.
func (c *Codec) Decoder() Decoder {
	return c.decoder
}

// Encoder exposes the underlying encoder.
func (c *Codec) Encoder() *Encoder {
	return c.encoder
}
