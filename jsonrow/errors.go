package jsonrow

import "fmt"

// ConfigError reports an invalid or contradictory option combination,
// detected at codec construction. It is always fatal to construction.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "jsonrow: " + e.Message
}

// MissingFieldError reports a required row field absent from the JSON
// object while fail-on-missing-field is active.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("jsonrow: could not find field with name '%s'", e.Field)
}

// ParseError reports malformed JSON text or a value that cannot be
// coerced to its declared type. With ignore-parse-errors active the
// decoder recovers by skipping the record instead of surfacing it.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("jsonrow: %s: %v", e.Message, e.Cause)
	}
	return "jsonrow: " + e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// EncodeTypeError reports a record value that does not conform to its
// declared schema type. This indicates a broken contract in the
// caller, not bad external data, and is never suppressed.
type EncodeTypeError struct {
	Message string
}

func (e *EncodeTypeError) Error() string {
	return "jsonrow: " + e.Message
}

func parseErrorf(format string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

func encodeErrorf(format string, args ...interface{}) *EncodeTypeError {
	return &EncodeTypeError{Message: fmt.Sprintf(format, args...)}
}
