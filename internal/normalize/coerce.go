package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// toFloat coerces a decoded JSON value to a finite float64. Numbers and numeric
// strings are accepted; anything else reports ok=false.
func toFloat(v any) (float64, bool) {
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
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
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

// number returns the coerced value of the first key holding a non-zero number,
// or 0 when none does.
func number(fields map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if f, ok := toFloat(fields[k]); ok && f != 0 {
			return f
		}
	}
	return 0
}

// present returns the coerced value of the first key holding any number, zero
// included. ok is false when no key holds a number.
func present(fields map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := toFloat(fields[k]); ok {
			return f, true
		}
	}
	return 0, false
}

// nonNegative clamps negative amounts to zero.
func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

// text returns the first non-empty string among keys. Numeric ids are
// formatted without exponent.
func text(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// flag reads a boolean that upstream may send as a bool or as "true"/"1".
func flag(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true") || v == "1"
	case float64:
		return v == 1
	case json.Number:
		return v.String() == "1"
	}
	return false
}

// stringList decodes a list that may arrive as a JSON array or as a JSON array
// encoded into a string ("[\"Yes\",\"No\"]").
func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			default:
				b, _ := json.Marshal(s)
				out = append(out, strings.Trim(string(b), `"`))
			}
		}
		return out
	case string:
		var decoded []any
		if err := json.Unmarshal([]byte(l), &decoded); err != nil {
			return nil
		}
		return stringList(decoded)
	}
	return nil
}

// priceList decodes a parallel price array. Unparseable entries become 0 so
// indices stay aligned with the outcome names.
func priceList(v any) []float64 {
	raw := stringList(v)
	if raw == nil {
		return nil
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		out[i], _ = toFloat(s)
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate accepts the timestamp layouts seen across both sources.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// clampPercent rounds p to an integer percentage within [0,100].
func clampPercent(p float64) int {
	r := int(math.Round(p))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
