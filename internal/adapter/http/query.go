package http

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// query parses numeric query parameters, keeping the first error.
type query struct {
	values url.Values
	err    error
}

func newQuery(values url.Values) *query {
	return &query{values: values}
}

// float returns the parameter value, or fallback when it is absent or empty.
// A value that does not parse, is not finite, or fails check records an error.
func (q *query) float(key string, fallback float64, check func(float64) bool) float64 {
	raw := strings.TrimSpace(q.values.Get(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || !check(v) {
		if q.err == nil {
			q.err = fmt.Errorf("invalid %s %q", key, raw)
		}
		return fallback
	}
	return v
}

func positive(v float64) bool { return v > 0 }
func nonNegative(v float64) bool { return v >= 0 }
func unitInterval(v float64) bool { return v >= 0 && v <= 1 }
