package espn

import (
	"math"
	"strconv"
	"strings"
)

// Total map-walking helpers. A missing or mistyped key always yields the
// zero value so extractors can degrade instead of failing.

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func extractMap(m map[string]interface{}, key string) map[string]interface{} {
	return asMap(m[key])
}

func extractArray(m map[string]interface{}, key string) []interface{} {
	if arrVal, ok := m[key].([]interface{}); ok {
		return arrVal
	}
	return []interface{}{}
}

// extractFirstArray returns the first non-empty array among keys.
func extractFirstArray(m map[string]interface{}, keys ...string) []interface{} {
	for _, key := range keys {
		if arr := extractArray(m, key); len(arr) > 0 {
			return arr
		}
	}
	return []interface{}{}
}

func extractString(m map[string]interface{}, key string) string {
	if str, ok := m[key].(string); ok {
		return str
	}
	return ""
}

// extractID accepts both string and numeric identifiers.
func extractID(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func extractBool(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// dig follows nested object keys.
func dig(m map[string]interface{}, keys ...string) map[string]interface{} {
	cur := m
	for _, key := range keys {
		cur = extractMap(cur, key)
	}
	return cur
}

// firstObject returns arr[0] as an object.
func firstObject(arr []interface{}) map[string]interface{} {
	if len(arr) == 0 {
		return map[string]interface{}{}
	}
	return asMap(arr[0])
}

func fallbackString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// toNumber mirrors a lenient numeric read: numbers pass through, strings are
// stripped to digits, '.', '-' and parsed by longest valid prefix.
func toNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, !math.IsNaN(val) && !math.IsInf(val, 0)
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		return parseLenientFloat(val)
	default:
		return 0, false
	}
}

// parseLenientFloat strips everything but digits, '.' and '-', then reads
// the longest leading number, the way a display string like "31.5 pts" is
// meant to be read. Values outside float64 range are rejected.
func parseLenientFloat(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)

	prefix := leadingNumber(cleaned)
	if prefix == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// leadingNumber returns the longest prefix of s of the form -?digits[.digits].
func leadingNumber(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	end := i
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > i+1 {
			end = j
		}
	}
	if end == intStart {
		return ""
	}
	return s[:end]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
