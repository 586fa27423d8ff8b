package utils

import (
	"fmt"
	"strconv"
	"time"
)

// FormatNumber renders a float without trailing zeros ("40", "12.5")
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Stringify turns a loosely typed record value into display text.
// nil yields the empty string.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return FormatNumber(val)
	case float32:
		return FormatNumber(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ToFloat converts numeric-ish values; ok is false when v is not a number
func ToFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case []byte:
		f, err := strconv.ParseFloat(string(val), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	}
	return 0, false
}

// ToInt64 converts integer-ish values scanned from SQL drivers
func ToInt64(v any) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case float64:
		return int64(val)
	case []byte:
		n, _ := strconv.ParseInt(string(val), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	case bool:
		if val {
			return 1
		}
	}
	return 0
}

// ToBool reads TINYINT/INTEGER booleans from either MySQL or SQLite rows
func ToBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return ToInt64(v) != 0
}

// NowMillis returns the current unix time in milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// FromMillis converts stored unix milliseconds to time.Time
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
