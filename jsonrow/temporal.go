package jsonrow

import (
	"time"
)

// Temporal text layouts. Fractional seconds are optional on input and
// trimmed of trailing zeros on output (Go ".999..." layout semantics).
const (
	layoutDate = "2006-01-02"
	layoutTime = "15:04:05.999999999"

	layoutTimestampSQL = "2006-01-02 15:04:05.999999999"
	layoutTimestampISO = "2006-01-02T15:04:05.999999999"

	layoutInstantSQL = "2006-01-02 15:04:05.999999999Z07:00"
	layoutInstantISO = "2006-01-02T15:04:05.999999999Z07:00"
)

// temporalLayout resolves the single layout for a temporal kind under
// a timestamp format. Local timestamps carry no zone; instants carry a
// Z or numeric offset and are normalized to UTC on encode.
func temporalLayout(kind TypeKind, format TimestampFormat) string {
	switch kind {
	case KindDate:
		return layoutDate
	case KindTime:
		return layoutTime
	case KindTimestamp:
		if format == TimestampFormatISO8601 {
			return layoutTimestampISO
		}
		return layoutTimestampSQL
	case KindTimestampLTZ:
		if format == TimestampFormatISO8601 {
			return layoutInstantISO
		}
		return layoutInstantSQL
	default:
		return ""
	}
}

func parseTemporal(kind TypeKind, format TimestampFormat, s string) (time.Time, error) {
	t, err := time.Parse(temporalLayout(kind, format), s)
	if err != nil {
		return time.Time{}, &ParseError{
			Message: "malformed " + kind.String() + " literal '" + s + "'",
			Cause:   err,
		}
	}
	return t, nil
}

func formatTemporal(kind TypeKind, format TimestampFormat, t time.Time) string {
	if kind == KindTimestampLTZ {
		t = t.UTC()
	}
	return t.Format(temporalLayout(kind, format))
}
