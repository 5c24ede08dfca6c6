package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float coerces a decoded JSON value to a finite float64. Numbers,
// json.Number and numeric strings (surrounding whitespace ignored) are
// accepted; anything else, including NaN and infinities, is rejected. The
// whole string must be a number: "22 kW" is rejected, not read as 22.
func Float(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NonNegativeInt coerces v like Float, floors it, and rejects negatives.
func NonNegativeInt(v any) (int, bool) {
	f, ok := Float(v)
	if !ok || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(math.Floor(f)), true
}

// String renders scalar identifiers and labels. Strings are trimmed, numbers
// are printed without a trailing fraction, and nil or composite values yield "".
func String(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
