package listquery

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

// MatchesFilter reports whether the record's field equals the raw query value.
// Strings compare exactly; numbers and booleans compare after parsing the
// query value into the record's type. A missing field never matches.
func MatchesFilter(rec domain.Record, field, raw string) bool {
	actual, exists := rec.Lookup(field)
	if !exists {
		return false
	}
	return ValueMatches(actual, raw)
}

// ValueMatches compares a stored value to a raw query string
func ValueMatches(actual interface{}, raw string) bool {
	switch v := actual.(type) {
	case nil:
		return false
	case string:
		return v == raw
	case bool:
		b, err := strconv.ParseBool(raw)
		return err == nil && b == v
	case []interface{}:
		for _, item := range v {
			if ValueMatches(item, raw) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range v {
			if item == raw {
				return true
			}
		}
		return false
	}

	if num, ok := ToFloat64(actual); ok {
		expected, err := strconv.ParseFloat(raw, 64)
		return err == nil && expected == num
	}

	return fmt.Sprint(actual) == raw
}

// MatchesSearch reports whether needle (already lowercased) is a substring of
// any of the given string fields, case-insensitively
func MatchesSearch(rec domain.Record, fields []string, needle string) bool {
	for _, field := range fields {
		v, ok := rec.Lookup(field)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// WithinRange reports whether the record timestamp lies inside the inclusive
// bounds. Records without a parseable timestamp are outside any bound.
func WithinRange(rec domain.Record, field string, start, end *time.Time) bool {
	if start == nil && end == nil {
		return true
	}
	ts, ok := rec.Time(field)
	if !ok {
		return false
	}
	if start != nil && ts.Before(*start) {
		return false
	}
	if end != nil && ts.After(*end) {
		return false
	}
	return true
}

// ToFloat64 converts various numeric types to float64 for comparison
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
