package devlink

import (
	"encoding/json"
	"time"
)

// Instant is a millisecond instant since epoch. Documents in the store carry
// timestamps in three historical shapes (a seconds-wrapper object, an ISO-8601
// string, or a raw epoch-millisecond number); Instant absorbs all of them at
// the store boundary so the rest of the system only ever sees one form.
type Instant int64

// InstantOf converts a time.Time to an Instant.
func InstantOf(t time.Time) Instant {
	return Instant(t.UnixMilli())
}

// IsZero reports whether the instant carries no timestamp.
func (i Instant) IsZero() bool {
	return i == 0
}

// Time returns the instant as a time.Time in UTC.
func (i Instant) Time() time.Time {
	return time.UnixMilli(int64(i)).UTC()
}

func (i Instant) MarshalJSON() ([]byte, error) {
	if i == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(i.Time().Format(time.RFC3339Nano))
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*i = 0
		return nil
	}
	*i = Instant(NormalizeMillis(v))
	return nil
}

// NormalizeMillis converts a timestamp of unknown shape into milliseconds
// since epoch. Supported shapes, in precedence order: time.Time, an object
// with an integer "seconds" field, an ISO-8601 string, a raw number of
// epoch milliseconds. Anything else, including nil and malformed values,
// normalizes to 0. Never panics.
func NormalizeMillis(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case time.Time:
		if t.IsZero() {
			return 0
		}
		return t.UnixMilli()
	case map[string]any:
		if secs, ok := t["seconds"]; ok {
			return numberToInt64(secs) * 1000
		}
		return 0
	case string:
		if t == "" {
			return 0
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UnixMilli()
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.UnixMilli()
		}
		return 0
	case json.Number:
		return numberToInt64(t)
	case float64, int, int64:
		return numberToInt64(t)
	default:
		return 0
	}
}

func numberToInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0
			}
			return int64(f)
		}
		return i
	default:
		return 0
	}
}
