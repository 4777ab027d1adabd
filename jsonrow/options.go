package jsonrow

import (
	"fmt"
	"strings"
)

// TimestampFormat selects the temporal text profile.
type TimestampFormat string

const (
	// TimestampFormatSQL is the fixed "yyyy-MM-dd HH:mm:ss[.fraction]"
	// profile.
	TimestampFormatSQL TimestampFormat = "SQL"

	// TimestampFormatISO8601 is the date-and-time profile with a 'T'
	// separator and optional Z/offset.
	TimestampFormatISO8601 TimestampFormat = "ISO-8601"
)

// MapNullKeyMode selects null map-key handling on encode.
type MapNullKeyMode string

const (
	// MapNullKeyModeLiteral substitutes the configured literal string.
	MapNullKeyModeLiteral MapNullKeyMode = "LITERAL"

	// MapNullKeyModeFail raises an encode error.
	MapNullKeyModeFail MapNullKeyMode = "FAIL"

	// MapNullKeyModeDrop omits the entry.
	MapNullKeyModeDrop MapNullKeyMode = "DROP"
)

// Option keys consumed from the string-keyed configuration bundle.
const (
	OptFailOnMissingField  = "fail-on-missing-field"
	OptIgnoreParseErrors   = "ignore-parse-errors"
	OptTimestampFormat     = "timestamp-format.standard"
	OptMapNullKeyMode      = "map-null-key.mode"
	OptMapNullKeyLiteral   = "map-null-key.literal"
	OptDecimalAsPlain      = "encode.decimal-as-plain-number"
	OptIgnoreNullFields    = "encode.ignore-null-fields"
	OptUseStreamingDecoder = "decode.json-parser.enabled"
)

// Options is the validated set of behavioral switches, fixed for the
// codec's lifetime.
type Options struct {
	// FailOnMissingField makes decoding fail when a row field is
	// absent from the JSON object. Mutually exclusive with
	// IgnoreParseErrors.
	FailOnMissingField bool

	// IgnoreParseErrors skips records whose text or values cannot be
	// parsed instead of propagating the error.
	IgnoreParseErrors bool

	// TimestampFormat is the temporal text profile. Case-sensitive.
	TimestampFormat TimestampFormat

	// MapNullKeyMode is the null map-key policy on encode.
	MapNullKeyMode MapNullKeyMode

	// MapNullKeyLiteral is the substitution key when MapNullKeyMode is
	// LITERAL.
	MapNullKeyLiteral string

	// DecimalAsPlainNumber encodes decimals as JSON number literals
	// instead of strings.
	DecimalAsPlainNumber bool

	// IgnoreNullFields omits null row fields on encode instead of
	// emitting JSON null.
	IgnoreNullFields bool

	// UseStreamingDecoder selects the streaming decoder over the tree
	// decoder.
	UseStreamingDecoder bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		TimestampFormat:   TimestampFormatSQL,
		MapNullKeyMode:    MapNullKeyModeFail,
		MapNullKeyLiteral: "null",
	}
}

// OptionsFromMap parses the string-keyed configuration bundle on top
// of the defaults. Boolean values accept only true/false
// (case-insensitive); enum values are matched case-sensitively.
// Unknown keys are ignored; the surrounding layer owns the namespace.
func OptionsFromMap(config map[string]string) (Options, error) {
	opts := DefaultOptions()

	var err error
	if raw, ok := config[OptFailOnMissingField]; ok {
		if opts.FailOnMissingField, err = parseBoolOption(OptFailOnMissingField, raw); err != nil {
			return opts, err
		}
	}
	if raw, ok := config[OptIgnoreParseErrors]; ok {
		if opts.IgnoreParseErrors, err = parseBoolOption(OptIgnoreParseErrors, raw); err != nil {
			return opts, err
		}
	}
	if raw, ok := config[OptTimestampFormat]; ok {
		opts.TimestampFormat = TimestampFormat(raw)
	}
	if raw, ok := config[OptMapNullKeyMode]; ok {
		opts.MapNullKeyMode = MapNullKeyMode(raw)
	}
	if raw, ok := config[OptMapNullKeyLiteral]; ok {
		opts.MapNullKeyLiteral = raw
	}
	if raw, ok := config[OptDecimalAsPlain]; ok {
		if opts.DecimalAsPlainNumber, err = parseBoolOption(OptDecimalAsPlain, raw); err != nil {
			return opts, err
		}
	}
	if raw, ok := config[OptIgnoreNullFields]; ok {
		if opts.IgnoreNullFields, err = parseBoolOption(OptIgnoreNullFields, raw); err != nil {
			return opts, err
		}
	}
	if raw, ok := config[OptUseStreamingDecoder]; ok {
		if opts.UseStreamingDecoder, err = parseBoolOption(OptUseStreamingDecoder, raw); err != nil {
			return opts, err
		}
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// Validate checks enum membership and the mutual-exclusion invariant.
// Codec constructors call it, so hand-built Options are rejected the
// same way as parsed ones.
func (o Options) Validate() error {
	if o.FailOnMissingField && o.IgnoreParseErrors {
		return &ConfigError{Message: fmt.Sprintf(
			"%s and %s shouldn't both be true", OptFailOnMissingField, OptIgnoreParseErrors)}
	}
	switch o.TimestampFormat {
	case TimestampFormatSQL, TimestampFormatISO8601:
	default:
		return &ConfigError{Message: fmt.Sprintf(
			"unsupported value '%s' for %s, supported values are [%s, %s]",
			o.TimestampFormat, OptTimestampFormat, TimestampFormatSQL, TimestampFormatISO8601)}
	}
	switch o.MapNullKeyMode {
	case MapNullKeyModeLiteral, MapNullKeyModeFail, MapNullKeyModeDrop:
	default:
		return &ConfigError{Message: fmt.Sprintf(
			"unsupported value '%s' for %s, supported values are [%s, %s, %s]",
			o.MapNullKeyMode, OptMapNullKeyMode,
			MapNullKeyModeLiteral, MapNullKeyModeFail, MapNullKeyModeDrop)}
	}
	return nil
}

// parseBoolOption accepts only the literals true/false, case
// insensitively. Anything else is a configuration error naming the
// key, the value, and the accepted literals.
func parseBoolOption(key, raw string) (bool, error) {
	switch {
	case strings.EqualFold(raw, "true"):
		return true, nil
	case strings.EqualFold(raw, "false"):
		return false, nil
	default:
		return false, &ConfigError{Message: fmt.Sprintf(
			"unrecognized option for boolean %s: %s, expected either true or false (case insensitive)",
			key, raw)}
	}
}
