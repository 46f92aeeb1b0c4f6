package series

import (
	"strconv"
	"strings"
	"time"
)

// coerce converts a raw stored value into T, tolerating representation
// drift: integer columns are convertible to floating point and back where
// lossless; bool is never coerced to a number (spec.md §4.1 "bool→numeric
// is rejected"); string-formatted dates are parsed permissively.
func coerce[T any](raw any) (T, bool) {
	var zero T

	if v, ok := raw.(T); ok {
		return v, true
	}

	switch any(zero).(type) {
	case float64:
		f, ok := toFloat64(raw)
		if !ok {
			return zero, false
		}
		return any(f).(T), true
	case int64:
		i, ok := toInt64(raw)
		if !ok {
			return zero, false
		}
		return any(i).(T), true
	case time.Time:
		d, ok := toDate(raw)
		if !ok {
			return zero, false
		}
		return any(d).(T), true
	}

	return zero, false
}

func toFloat64(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		return 0, false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case bool:
		return 0, false
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// toDate parses the permissive formats spec.md §4.1 requires:
// YYYYMMDD, YYYY-MM-DD, and ISO-8601 extended/basic forms.
func toDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		layouts := []string{
			"20060102",
			"2006-01-02",
			time.RFC3339,
			"20060102T150405Z0700",
			"2006-01-02T15:04:05Z07:00",
		}
		for _, layout := range layouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
